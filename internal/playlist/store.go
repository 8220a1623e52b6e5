package playlist

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alorle/playlist-manager/internal/channel"
)

// ErrInvalidDirection is returned for sort directions other than asc and desc.
var ErrInvalidDirection = errors.New("invalid sort direction")

// Direction is the order applied by SortBy.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection converts a string to a Direction. An empty string means asc.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Snapshot is a copy of the store's channel sequence.
type Snapshot []channel.Channel

// Store owns the ordered channel sequence. Order is significant: it is both
// the display order and the export order.
//
// Store is not safe for concurrent use; callers serialise access.
type Store struct {
	channels []channel.Channel
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{channels: []channel.Channel{}}
}

// Len returns the number of channels.
func (s *Store) Len() int {
	return len(s.channels)
}

// All returns a copy of the channel sequence.
func (s *Store) All() []channel.Channel {
	return slices.Clone(s.channels)
}

// Get returns the channel with the given id.
func (s *Store) Get(id string) (channel.Channel, error) {
	i := s.index(id)
	if i < 0 {
		return channel.Channel{}, channel.ErrChannelNotFound
	}
	return s.channels[i], nil
}

// Selected returns the selected channels in store order, whether or not a
// filter currently hides them.
func (s *Store) Selected() []channel.Channel {
	var out []channel.Channel
	for _, ch := range s.channels {
		if ch.Selected {
			out = append(out, ch)
		}
	}
	return out
}

// Sources returns the distinct sources in order of first appearance.
func (s *Store) Sources() []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, ch := range s.channels {
		if !seen[ch.Source] {
			seen[ch.Source] = true
			sources = append(sources, ch.Source)
		}
	}
	return sources
}

// Snapshot returns a copy of the current sequence for the undo history.
func (s *Store) Snapshot() Snapshot {
	return Snapshot(slices.Clone(s.channels))
}

// Append adds channels at the end, keeping their order.
func (s *Store) Append(channels ...channel.Channel) {
	s.channels = append(s.channels, channels...)
}

// ReplaceAll installs channels as the whole sequence.
func (s *Store) ReplaceAll(channels []channel.Channel) {
	s.channels = slices.Clone(channels)
	if s.channels == nil {
		s.channels = []channel.Channel{}
	}
}

// Clear removes every channel.
func (s *Store) Clear() {
	s.channels = []channel.Channel{}
}

// UpdateField sets one field of the channel with the given id.
// A missing id is a no-op; an invalid field or value is reported and nothing changes.
func (s *Store) UpdateField(id string, field channel.Field, value string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	ch := s.channels[i]
	if err := ch.Set(field, value); err != nil {
		return err
	}
	s.channels[i] = ch
	return nil
}

// SetStatus records a probe outcome. A missing id is a no-op.
func (s *Store) SetStatus(id string, status channel.Status) {
	if i := s.index(id); i >= 0 {
		s.channels[i].Status = status
	}
}

// ToggleSelected flips the selection flag of one channel.
func (s *Store) ToggleSelected(id string) {
	if i := s.index(id); i >= 0 {
		s.channels[i].Selected = !s.channels[i].Selected
	}
}

// SetSelected sets the selection flag of every channel whose id is in ids.
func (s *Store) SetSelected(ids []string, value bool) {
	s.SelectWhere(ids, func(channel.Channel) bool { return true }, value)
}

// SelectWhere sets the selection flag of the channels in ids that match keep.
// Channels outside ids are untouched.
func (s *Store) SelectWhere(ids []string, keep func(channel.Channel) bool, value bool) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range s.channels {
		if _, ok := set[s.channels[i].ID]; ok && keep(s.channels[i]) {
			s.channels[i].Selected = value
		}
	}
}

// Transform replaces every channel whose id is in ids with fn applied to it
// and returns how many channels were rewritten. fn cannot change the ID.
func (s *Store) Transform(ids []string, fn func(channel.Channel) channel.Channel) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	n := 0
	for i, ch := range s.channels {
		if _, ok := set[ch.ID]; !ok {
			continue
		}
		next := fn(ch)
		next.ID = ch.ID
		s.channels[i] = next
		n++
	}
	return n
}

// DeleteWhere removes every channel matching pred and returns how many were removed.
func (s *Store) DeleteWhere(pred func(channel.Channel) bool) int {
	before := len(s.channels)
	s.channels = slices.DeleteFunc(s.channels, pred)
	return before - len(s.channels)
}

// Move removes the source channel and reinserts it immediately before the
// target channel. No-op if either id is missing or both are equal.
func (s *Store) Move(sourceID, targetID string) bool {
	if sourceID == targetID {
		return false
	}
	src, dst := s.index(sourceID), s.index(targetID)
	if src < 0 || dst < 0 {
		return false
	}

	moved := s.channels[src]
	s.channels = slices.Delete(s.channels, src, src+1)
	s.channels = slices.Insert(s.channels, s.index(targetID), moved)
	return true
}

// SortBy reorders the store by the lower-cased value of field.
// Equal keys keep their relative order.
func (s *Store) SortBy(field channel.Field, dir Direction) error {
	if _, err := (channel.Channel{}).Value(field); err != nil {
		return err
	}
	if dir != Asc && dir != Desc {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	slices.SortStableFunc(s.channels, func(a, b channel.Channel) int {
		va, _ := a.Value(field)
		vb, _ := b.Value(field)
		c := cmp.Compare(strings.ToLower(va), strings.ToLower(vb))
		if dir == Desc {
			return -c
		}
		return c
	})
	return nil
}

// DedupeByURL keeps the first channel of every URL in current order and
// removes later ones. Returns how many channels were removed.
func (s *Store) DedupeByURL() int {
	seen := make(map[string]struct{}, len(s.channels))
	return s.DeleteWhere(func(ch channel.Channel) bool {
		if _, ok := seen[ch.URL]; ok {
			return true
		}
		seen[ch.URL] = struct{}{}
		return false
	})
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.channels, func(ch channel.Channel) bool {
		return ch.ID == id
	})
}
