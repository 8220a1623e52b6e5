// Package view derives the filtered read-side projection of a playlist.
// Nothing in this package mutates its input.
package view

import (
	"slices"
	"strings"

	"github.com/alorle/playlist-manager/internal/channel"
)

// Filters are combined with logical AND. Text filters are case-insensitive
// substring matches; an empty text filter matches everything.
type Filters struct {
	Search         string `json:"search"`
	Group          string `json:"group"`
	Tag            string `json:"tag"`
	Source         string `json:"source"`
	DuplicatesOnly bool   `json:"duplicates_only"`
}

// Project returns the channels matching filters, in their original order.
// With DuplicatesOnly, a URL counts as duplicated when it occurs at least
// twice in the whole input, regardless of the other filters.
func Project(channels []channel.Channel, f Filters) []channel.Channel {
	search := strings.ToLower(f.Search)
	group := strings.ToLower(f.Group)
	tag := strings.ToLower(f.Tag)
	source := strings.ToLower(f.Source)

	var urlCounts map[string]int
	if f.DuplicatesOnly {
		urlCounts = make(map[string]int, len(channels))
		for _, ch := range channels {
			urlCounts[ch.URL]++
		}
	}

	out := []channel.Channel{}
	for _, ch := range channels {
		if !contains(ch.Name, search) ||
			!contains(ch.Group, group) ||
			!contains(ch.Tag, tag) ||
			!contains(ch.Source, source) {
			continue
		}
		if f.DuplicatesOnly && urlCounts[ch.URL] < 2 {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func contains(value, lowerNeedle string) bool {
	if lowerNeedle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), lowerNeedle)
}

// IDs returns the ids of channels in order.
func IDs(channels []channel.Channel) []string {
	ids := make([]string, len(channels))
	for i, ch := range channels {
		ids[i] = ch.ID
	}
	return ids
}

// SelectedIDs returns the ids of the selected channels in order.
func SelectedIDs(channels []channel.Channel) []string {
	ids := []string{}
	for _, ch := range channels {
		if ch.Selected {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// Options lists the distinct values available for the text filters.
type Options struct {
	Groups  []string `json:"groups"`
	Tags    []string `json:"tags"`
	Sources []string `json:"sources"`
}

// BuildOptions collects the sorted distinct groups, tags and sources.
func BuildOptions(channels []channel.Channel) Options {
	return Options{
		Groups:  distinct(channels, func(ch channel.Channel) string { return ch.Group }),
		Tags:    distinct(channels, func(ch channel.Channel) string { return ch.Tag }),
		Sources: distinct(channels, func(ch channel.Channel) string { return ch.Source }),
	}
}

func distinct(channels []channel.Channel, key func(channel.Channel) string) []string {
	set := make(map[string]struct{})
	for _, ch := range channels {
		set[key(ch)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Stats summarises a projection.
type Stats struct {
	Visible  int `json:"visible"`
	Selected int `json:"selected"`
	Online   int `json:"online"`
	Offline  int `json:"offline"`
	Unknown  int `json:"unknown"`
}

// Summarise counts visible, selected and per-status channels.
func Summarise(channels []channel.Channel) Stats {
	st := Stats{Visible: len(channels)}
	for _, ch := range channels {
		if ch.Selected {
			st.Selected++
		}
		switch ch.Status {
		case channel.StatusOnline:
			st.Online++
		case channel.StatusOffline:
			st.Offline++
		default:
			st.Unknown++
		}
	}
	return st
}
