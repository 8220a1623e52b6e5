package m3u

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for export formats other than m3u and m3u8.
var ErrUnknownFormat = errors.New("unknown playlist format")

// Format is the file extension variant of an exported playlist.
// Both variants carry identical content.
type Format string

const (
	FormatM3U  Format = "m3u"
	FormatM3U8 Format = "m3u8"
)

// ExportBaseName is the file name, without extension, of exported playlists.
const ExportBaseName = "playlist"

// ParseFormat converts a string to a Format. An empty string means m3u.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatM3U:
		return FormatM3U, nil
	case FormatM3U8:
		return FormatM3U8, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FileName returns the download file name for the format.
func (f Format) FileName() string {
	return ExportBaseName + "." + string(f)
}

// ContentType returns the MIME type used when serving the format.
func (f Format) ContentType() string {
	if f == FormatM3U8 {
		return "application/vnd.apple.mpegurl"
	}
	return "audio/x-mpegurl"
}
