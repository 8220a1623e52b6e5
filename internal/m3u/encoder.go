package m3u

import (
	"fmt"
	"io"
	"strings"

	"github.com/alorle/playlist-manager/internal/channel"
)

const (
	headerLine      = "#EXTM3U"
	entryMarker     = "#EXTINF:"
	unknownDuration = "-1"
)

type encoder struct {
	items []channel.Channel
}

// NewEncoder creates an encoder for the given channels in playlist order.
func NewEncoder(channels []channel.Channel) *encoder {
	return &encoder{items: channels}
}

// AddChannel appends a channel to the end of the playlist.
func (e *encoder) AddChannel(ch channel.Channel) {
	e.items = append(e.items, ch)
}

// Encode writes the playlist header followed by one metadata/URL pair per channel.
// Group and logo are interpolated verbatim; quotes are not escaped.
func (e *encoder) Encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n", headerLine); err != nil {
		return err
	}

	for _, ch := range e.items {
		if _, err := fmt.Fprintf(w, "%s%s group-title=\"%s\" tvg-logo=\"%s\",%s\n%s\n",
			entryMarker, unknownDuration, ch.Group, ch.Logo, ch.Name, ch.URL); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes channels to w in M3U format.
func Encode(w io.Writer, channels []channel.Channel) error {
	return NewEncoder(channels).Encode(w)
}

// Serialize returns channels as M3U text.
func Serialize(channels []channel.Channel) string {
	var b strings.Builder
	// strings.Builder never returns a write error
	_ = Encode(&b, channels)
	return b.String()
}
