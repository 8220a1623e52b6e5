package m3u

import (
	"net/url"
	"path"
	"strings"
)

// DefaultURLName is used when a URL has no usable last path segment.
const DefaultURLName = "url-import"

// TagFromName derives a channel tag from a file name by dropping its extension.
func TagFromName(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 || strings.ContainsAny(name[i+1:], "/.") {
		return name
	}
	return name[:i]
}

// NameFromURL returns the last path segment of rawURL, used as the source name
// of a URL import.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil && u.Path != "" {
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
		return DefaultURLName
	}

	trimmed := strings.TrimRight(rawURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return DefaultURLName
	}
	return trimmed
}
