package playlist

import (
	"slices"
	"testing"

	"github.com/alorle/playlist-manager/internal/channel"
)

func TestHistory_PushPop(t *testing.T) {
	h := NewHistory(3)

	if _, ok := h.Pop(); ok {
		t.Fatal("Pop() on empty history should fail")
	}

	for _, n := range []string{"a", "b"} {
		h.Push(Snapshot{newTestChannel(n, n)})
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	s, ok := h.Pop()
	if !ok || s[0].Name != "b" {
		t.Errorf("Pop() = %v, %v, want snapshot b", s, ok)
	}
	s, ok = h.Pop()
	if !ok || s[0].Name != "a" {
		t.Errorf("Pop() = %v, %v, want snapshot a", s, ok)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_DiscardsOldest(t *testing.T) {
	h := NewHistory(DefaultHistoryCapacity)

	for i := 0; i < 11; i++ {
		h.Push(Snapshot{newTestChannel(string(rune('a'+i)), "u")})
	}
	if h.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", h.Len())
	}

	var popped []string
	for {
		s, ok := h.Pop()
		if !ok {
			break
		}
		popped = append(popped, s[0].Name)
	}

	want := []string{"k", "j", "i", "h", "g", "f", "e", "d", "c", "b"}
	if !slices.Equal(popped, want) {
		t.Errorf("popped = %v, want %v", popped, want)
	}
}

func TestHistory_WrapAroundAfterPop(t *testing.T) {
	h := NewHistory(2)
	h.Push(Snapshot{newTestChannel("a", "u")})
	h.Push(Snapshot{newTestChannel("b", "u")})
	h.Push(Snapshot{newTestChannel("c", "u")})
	h.Pop()
	h.Push(Snapshot{newTestChannel("d", "u")})

	s, _ := h.Pop()
	if s[0].Name != "d" {
		t.Errorf("Pop() = %q, want d", s[0].Name)
	}
	s, _ = h.Pop()
	if s[0].Name != "b" {
		t.Errorf("Pop() = %q, want b", s[0].Name)
	}
}

func TestHistory_DefaultCapacity(t *testing.T) {
	if got := NewHistory(0).Cap(); got != DefaultHistoryCapacity {
		t.Errorf("Cap() = %d, want %d", got, DefaultHistoryCapacity)
	}

	h := NewHistory(2)
	h.Push(Snapshot{})
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() after Clear() = %d", h.Len())
	}
}

func TestEditor_UndoRestoresExactPriorSequence(t *testing.T) {
	e := NewEditor(DefaultHistoryCapacity)
	e.Store.Append(newTestChannel("A", "http://x"), newTestChannel("B", "http://y"), newTestChannel("C", "http://x"))
	e.Store.ToggleSelected(e.Store.All()[1].ID)
	before := e.Store.All()

	e.Checkpoint()
	e.Store.DedupeByURL()
	_ = e.Store.SortBy(channel.FieldName, Desc)
	_ = e.Store.UpdateField(before[0].ID, channel.FieldName, "renamed")

	if !e.Undo() {
		t.Fatal("Undo() = false, want true")
	}
	if !slices.Equal(before, e.Store.All()) {
		t.Errorf("after Undo() store = %v, want %v", e.Store.All(), before)
	}

	if e.Undo() {
		t.Error("second Undo() = true on empty history")
	}
	if !slices.Equal(before, e.Store.All()) {
		t.Error("no-op Undo() changed the store")
	}
}

func TestEditor_SnapshotIsIsolated(t *testing.T) {
	e := NewEditor(DefaultHistoryCapacity)
	e.Store.Append(newTestChannel("A", "u"))
	id := e.Store.All()[0].ID

	e.Checkpoint()
	_ = e.Store.UpdateField(id, channel.FieldName, "changed")
	e.Undo()

	got, _ := e.Store.Get(id)
	if got.Name != "A" {
		t.Errorf("Name = %q, want A", got.Name)
	}
}
