package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alorle/playlist-manager/internal/bulk"
	"github.com/alorle/playlist-manager/internal/channel"
	"github.com/alorle/playlist-manager/internal/m3u"
	"github.com/alorle/playlist-manager/internal/metrics"
	"github.com/alorle/playlist-manager/internal/playlist"
	"github.com/alorle/playlist-manager/internal/port/driven"
	"github.com/alorle/playlist-manager/internal/probe"
	"github.com/alorle/playlist-manager/internal/view"
)

// Application errors
var (
	ErrNothingToExport   = errors.New("no channels to export")
	ErrInvalidExportMode = errors.New("invalid export mode")
	ErrEmptyLocation     = errors.New("import location cannot be empty")
	ErrUnsortableField   = errors.New("field cannot be sorted")
)

// Import kinds used for logging and metrics.
const (
	importKindFile   = "file"
	importKindUpload = "upload"
	importKindURL    = "url"
)

// ExportMode selects which channels are exported.
type ExportMode string

const (
	ExportAll      ExportMode = "all"
	ExportSelected ExportMode = "selected"
)

// ParseExportMode converts a string to an ExportMode. An empty string means all.
func ParseExportMode(s string) (ExportMode, error) {
	switch ExportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportAll:
		return ExportAll, nil
	case ExportSelected:
		return ExportSelected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidExportMode, s)
}

// SortState records the last sort applied to the playlist.
type SortState struct {
	Field     channel.Field      `json:"field,omitempty"`
	Direction playlist.Direction `json:"direction,omitempty"`
}

// WorkspaceView is the read-side state of the workspace.
type WorkspaceView struct {
	Channels   []channel.Channel
	Filters    view.Filters
	Stats      view.Stats
	Total      int
	Sort       SortState
	HistoryLen int
}

// ImportedSource describes one playlist added by an import.
type ImportedSource struct {
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	Channels int    `json:"channels"`
	Stale    bool   `json:"stale"`
}

// ImportFailure describes one location that could not be imported.
type ImportFailure struct {
	Location string `json:"location"`
	Error    string `json:"error"`
}

// ImportResult reports the outcome of an import action.
type ImportResult struct {
	Sources  []ImportedSource `json:"sources"`
	Failures []ImportFailure  `json:"failures,omitempty"`
	Channels int              `json:"channels"`
}

// ExportFile is a rendered playlist ready for download.
type ExportFile struct {
	Name        string
	ContentType string
	Content     string
	Channels    int
}

// WorkspaceService owns the working playlist, its undo history, the active
// filters and the sort state. All mutations are serialised by one mutex;
// source reads happen outside of it.
type WorkspaceService struct {
	mu      sync.Mutex
	editor  *playlist.Editor
	filters view.Filters
	sort    SortState

	files  driven.SourceReader
	remote driven.SourceReader
	logger *slog.Logger
}

// NewWorkspaceService creates a workspace with an empty playlist.
// files reads local paths, remote reads URLs; either may be nil when the
// corresponding import is not offered.
func NewWorkspaceService(files, remote driven.SourceReader, historySize int, logger *slog.Logger) *WorkspaceService {
	return &WorkspaceService{
		editor: playlist.NewEditor(historySize),
		files:  files,
		remote: remote,
		logger: logger,
	}
}

// View returns the projection of the playlist under the active filters.
func (s *WorkspaceService) View() WorkspaceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// SetFilters replaces the active filters and returns the new projection.
func (s *WorkspaceService) SetFilters(f view.Filters) WorkspaceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	return s.viewLocked()
}

// Options lists the distinct groups, tags and sources of the whole playlist.
func (s *WorkspaceService) Options() view.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.BuildOptions(s.editor.Store.All())
}

// Sources lists the distinct sources in order of first import.
func (s *WorkspaceService) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Store.Sources()
}

// HistoryLen returns the number of available undo steps.
func (s *WorkspaceService) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.History.Len()
}

// ImportFiles reads local playlists and appends their channels in the given
// order. Each file becomes its own source and tag. Unreadable files are
// reported in the result; if none could be read the store is untouched and
// an error is returned. One undo step covers the whole action.
func (s *WorkspaceService) ImportFiles(ctx context.Context, paths []string) (ImportResult, error) {
	if s.files == nil {
		return ImportResult{}, fmt.Errorf("%w: file import is not available", driven.ErrSourceUnavailable)
	}
	if len(paths) == 0 {
		return ImportResult{}, ErrEmptyLocation
	}

	var sources []driven.Source
	var failures []ImportFailure
	for _, path := range paths {
		src, err := s.files.Read(ctx, path)
		if err != nil {
			s.logger.Warn("failed to read playlist file", "path", path, "error", err)
			metrics.RecordImportFailure(importKindFile)
			failures = append(failures, ImportFailure{Location: path, Error: err.Error()})
			continue
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 {
		return ImportResult{Failures: failures}, fmt.Errorf("%w: none of %d files could be read",
			driven.ErrSourceUnavailable, len(paths))
	}

	result, err := s.importSources(importKindFile, sources)
	result.Failures = failures
	return result, err
}

// ImportContent appends already loaded playlists, such as uploaded files.
// One undo step covers the whole action.
func (s *WorkspaceService) ImportContent(uploads ...driven.Source) (ImportResult, error) {
	if len(uploads) == 0 {
		return ImportResult{}, ErrEmptyLocation
	}
	return s.importSources(importKindUpload, uploads)
}

// ImportURL downloads one playlist and appends its channels.
// A failed download leaves both the store and the history unchanged.
func (s *WorkspaceService) ImportURL(ctx context.Context, url string) (ImportResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return ImportResult{}, ErrEmptyLocation
	}
	if s.remote == nil {
		return ImportResult{}, fmt.Errorf("%w: url import is not available", driven.ErrSourceUnavailable)
	}

	src, err := s.remote.Read(ctx, url)
	if err != nil {
		s.logger.Error("failed to import playlist url", "url", url, "error", err)
		metrics.RecordImportFailure(importKindURL)
		return ImportResult{}, err
	}

	return s.importSources(importKindURL, []driven.Source{src})
}

// importSources parses every source before taking the lock, then appends
// all channels after a single snapshot.
func (s *WorkspaceService) importSources(kind string, sources []driven.Source) (ImportResult, error) {
	result := ImportResult{Sources: make([]ImportedSource, 0, len(sources))}
	var parsed []channel.Channel

	for _, src := range sources {
		tag := m3u.TagFromName(src.Name)
		channels, err := m3u.Parse(strings.NewReader(src.Content), src.Name, tag)
		if err != nil {
			metrics.RecordImportFailure(kind)
			return ImportResult{}, fmt.Errorf("failed to parse %s: %w", src.Name, err)
		}
		parsed = append(parsed, channels...)
		result.Sources = append(result.Sources, ImportedSource{
			Name:     src.Name,
			Tag:      tag,
			Channels: len(channels),
			Stale:    src.Stale,
		})
		metrics.RecordImport(kind, len(channels))
		s.logger.Info("imported playlist",
			"kind", kind,
			"source", src.Name,
			"channels", len(channels),
			"stale", src.Stale,
		)
	}
	result.Channels = len(parsed)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.Checkpoint()
	s.editor.Store.Append(parsed...)
	s.observeLocked()

	return result, nil
}

// Clear removes every channel.
func (s *WorkspaceService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.Checkpoint()
	s.editor.Store.Clear()
	s.observeLocked()
}

// BeginEdit records an undo step before a channel's fields are edited.
// Call it once per edit session, not once per change.
func (s *WorkspaceService) BeginEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.editor.Store.Get(id); err != nil {
		return err
	}
	s.editor.Checkpoint()
	s.observeLocked()
	return nil
}

// UpdateField sets one field of a channel. It never records an undo step;
// see BeginEdit.
func (s *WorkspaceService) UpdateField(id, field, value string) (channel.Channel, error) {
	f, err := channel.ParseField(field)
	if err != nil {
		return channel.Channel{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.editor.Store.Get(id); err != nil {
		return channel.Channel{}, err
	}
	if err := s.editor.Store.UpdateField(id, f, value); err != nil {
		return channel.Channel{}, err
	}
	return s.editor.Store.Get(id)
}

// ToggleSelect flips the selection flag of one channel.
func (s *WorkspaceService) ToggleSelect(id string) (channel.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.editor.Store.Get(id); err != nil {
		return channel.Channel{}, err
	}
	s.editor.Store.ToggleSelected(id)
	return s.editor.Store.Get(id)
}

// SelectVisible sets the selection flag of every visible channel and
// returns how many channels are visible.
func (s *WorkspaceService) SelectVisible(value bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := view.IDs(s.projectionLocked())
	s.editor.Store.SetSelected(ids, value)
	return len(ids)
}

// SelectByStatus adds the visible channels with the given status to the
// selection and returns how many matched.
func (s *WorkspaceService) SelectByStatus(status channel.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	match := func(ch channel.Channel) bool {
		if ch.Status == status {
			n++
			return true
		}
		return false
	}
	s.editor.Store.SelectWhere(view.IDs(s.projectionLocked()), match, true)
	return n
}

// DeleteSelected removes every selected channel, visible or not.
// Nothing is recorded when no channel is selected.
func (s *WorkspaceService) DeleteSelected() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.editor.Store.Selected()) == 0 {
		return 0
	}
	s.editor.Checkpoint()
	n := s.editor.Store.DeleteWhere(func(ch channel.Channel) bool { return ch.Selected })
	s.observeLocked()
	return n
}

// RemoveDuplicates keeps the first channel of every URL.
func (s *WorkspaceService) RemoveDuplicates() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.Checkpoint()
	n := s.editor.Store.DedupeByURL()
	s.observeLocked()
	return n
}

// Sort reorders the playlist by field. Sorting the field that is already
// sorted ascending sorts it descending; anything else sorts ascending.
func (s *WorkspaceService) Sort(field string) (SortState, error) {
	f, err := sortableField(field)
	if err != nil {
		return SortState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := playlist.Asc
	if s.sort.Field == f && s.sort.Direction == playlist.Asc {
		dir = playlist.Desc
	}
	return s.sortLocked(f, dir)
}

// SortBy reorders the playlist by field in an explicit direction.
func (s *WorkspaceService) SortBy(field string, dir playlist.Direction) (SortState, error) {
	f, err := sortableField(field)
	if err != nil {
		return SortState{}, err
	}
	if dir != playlist.Asc && dir != playlist.Desc {
		return SortState{}, fmt.Errorf("%w: %q", playlist.ErrInvalidDirection, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortLocked(f, dir)
}

func (s *WorkspaceService) sortLocked(f channel.Field, dir playlist.Direction) (SortState, error) {
	s.editor.Checkpoint()
	if err := s.editor.Store.SortBy(f, dir); err != nil {
		return SortState{}, err
	}
	s.sort = SortState{Field: f, Direction: dir}
	s.observeLocked()
	return s.sort, nil
}

func sortableField(field string) (channel.Field, error) {
	f, err := channel.ParseField(field)
	if err != nil {
		return "", err
	}
	if f == channel.FieldID {
		return "", fmt.Errorf("%w: %q", ErrUnsortableField, field)
	}
	return f, nil
}

// Move places the source channel immediately before the target channel.
// Returns false, recording nothing, when either id is missing or both are equal.
func (s *WorkspaceService) Move(sourceID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sourceID == targetID {
		return false
	}
	if _, err := s.editor.Store.Get(sourceID); err != nil {
		return false
	}
	if _, err := s.editor.Store.Get(targetID); err != nil {
		return false
	}

	s.editor.Checkpoint()
	moved := s.editor.Store.Move(sourceID, targetID)
	s.observeLocked()
	return moved
}

// Rename applies find and replace to the selected visible channels.
// The pattern is validated before anything changes.
func (s *WorkspaceService) Rename(r bulk.Rename) (int, error) {
	renamer, err := r.Compile()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := view.SelectedIDs(s.projectionLocked())
	if len(ids) == 0 {
		return 0, nil
	}

	s.editor.Checkpoint()
	n := s.editor.Store.Transform(ids, renamer.Transform)
	s.observeLocked()
	return n, nil
}

// Regroup rewrites the group of the selected visible channels from template.
// An empty template falls back to bulk.DefaultRegroupTemplate.
func (s *WorkspaceService) Regroup(template string) int {
	if strings.TrimSpace(template) == "" {
		template = bulk.DefaultRegroupTemplate
	}
	g := bulk.Regroup{Template: template}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := view.SelectedIDs(s.projectionLocked())
	if len(ids) == 0 {
		return 0
	}

	s.editor.Checkpoint()
	n := s.editor.Store.Transform(ids, g.Transform)
	s.observeLocked()
	return n
}

// Undo restores the playlist as it was before the last recorded action.
func (s *WorkspaceService) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.editor.Undo()
	s.observeLocked()
	return ok
}

// Export renders the chosen channels in store order.
func (s *WorkspaceService) Export(mode ExportMode, format m3u.Format) (ExportFile, error) {
	s.mu.Lock()
	var targets []channel.Channel
	switch mode {
	case ExportAll:
		targets = s.editor.Store.All()
	case ExportSelected:
		targets = s.editor.Store.Selected()
	default:
		s.mu.Unlock()
		return ExportFile{}, fmt.Errorf("%w: %q", ErrInvalidExportMode, mode)
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return ExportFile{}, ErrNothingToExport
	}

	metrics.RecordExport(string(mode), string(format))
	s.logger.Info("exported playlist", "mode", mode, "format", format, "channels", len(targets))

	return ExportFile{
		Name:        format.FileName(),
		ContentType: format.ContentType(),
		Content:     m3u.Serialize(targets),
		Channels:    len(targets),
	}, nil
}

// selectedChannels returns every selected channel in store order.
func (s *WorkspaceService) selectedChannels() []channel.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Store.Selected()
}

// applyResults writes probe outcomes into the store. Channels removed while
// probing was in flight are skipped.
func (s *WorkspaceService) applyResults(results []probe.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		s.editor.Store.SetStatus(r.ChannelID(), r.Status())
	}
}

func (s *WorkspaceService) projectionLocked() []channel.Channel {
	return view.Project(s.editor.Store.All(), s.filters)
}

func (s *WorkspaceService) viewLocked() WorkspaceView {
	projection := s.projectionLocked()
	return WorkspaceView{
		Channels:   projection,
		Filters:    s.filters,
		Stats:      view.Summarise(projection),
		Total:      s.editor.Store.Len(),
		Sort:       s.sort,
		HistoryLen: s.editor.History.Len(),
	}
}

func (s *WorkspaceService) observeLocked() {
	metrics.SetChannels(s.editor.Store.Len())
	metrics.SetHistoryDepth(s.editor.History.Len())
}
