package m3u

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/alorle/playlist-manager/internal/channel"
)

var (
	reGroup = regexp.MustCompile(`group-title="([^"]*)"`)
	reLogo  = regexp.MustCompile(`tvg-logo="([^"]*)"`)
)

// maxLineSize bounds a single line. Longer lines are dropped; some providers
// emit EXTINF lines carrying inline base64 logos.
const maxLineSize = 1024 * 1024

// pending holds the metadata of an entry waiting for its URL line.
type pending struct {
	name  string
	group string
	logo  string
}

// Parse reads M3U text and returns the channels it describes, in file order.
// source and tag are stamped on every channel. Parsing is lenient: lines it
// does not understand are skipped, a line longer than maxLineSize is dropped
// together with any entry it belonged to, and a URL line without preceding
// metadata never produces a channel. The only error returned comes from
// reading r, in which case the channels parsed up to that point are returned
// with it.
func Parse(r io.Reader, source, tag string) ([]channel.Channel, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	channels := []channel.Channel{}
	var cur *pending

	for {
		raw, oversized, err := readLine(br)
		if err != nil && err != io.EOF {
			return channels, err
		}
		if oversized {
			cur = nil
		} else {
			line := strings.TrimSpace(raw)
			switch {
			case strings.HasPrefix(line, entryMarker):
				cur = parseInfo(strings.TrimPrefix(line, entryMarker))
			case line == "" || strings.HasPrefix(line, "#"):
			default:
				if cur != nil {
					channels = append(channels, channel.New(cur.name, cur.group, cur.logo, line, source, tag))
					cur = nil
				}
			}
		}
		if err == io.EOF {
			return channels, nil
		}
	}
}

// readLine returns the next line without its terminator. When the line
// exceeds maxLineSize the rest of it is consumed and oversized is set.
// io.EOF is returned together with the final line.
func readLine(br *bufio.Reader) (line string, oversized bool, err error) {
	var sb strings.Builder
	for {
		chunk, isPrefix, rerr := br.ReadLine()
		if rerr != nil {
			return sb.String(), oversized, rerr
		}
		if !oversized {
			if sb.Len()+len(chunk) > maxLineSize {
				oversized = true
				sb.Reset()
			} else {
				sb.Write(chunk)
			}
		}
		if !isPrefix {
			return sb.String(), oversized, nil
		}
	}
}

func parseInfo(info string) *pending {
	name := info
	if i := strings.LastIndex(info, ","); i >= 0 {
		name = info[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	p := &pending{name: name, group: channel.DefaultGroup}
	if m := reGroup.FindStringSubmatch(info); m != nil {
		p.group = m[1]
	}
	if m := reLogo.FindStringSubmatch(info); m != nil {
		p.logo = m[1]
	}
	return p
}
