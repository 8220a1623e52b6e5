package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/alorle/playlist-manager/internal/application"
	"github.com/alorle/playlist-manager/internal/bulk"
	"github.com/alorle/playlist-manager/internal/channel"
	"github.com/alorle/playlist-manager/internal/m3u"
	"github.com/alorle/playlist-manager/internal/port/driven"
	"github.com/alorle/playlist-manager/internal/view"
)

// DefaultMaxUploadSize caps the total size of a multipart import.
const DefaultMaxUploadSize = 32 << 20

// PlaylistHTTPHandler handles HTTP requests for editing the working playlist.
type PlaylistHTTPHandler struct {
	service       *application.WorkspaceService
	logger        *slog.Logger
	maxUploadSize int64
}

// NewPlaylistHTTPHandler creates a new HTTP handler for the working playlist.
func NewPlaylistHTTPHandler(service *application.WorkspaceService, logger *slog.Logger) *PlaylistHTTPHandler {
	return &PlaylistHTTPHandler{
		service:       service,
		logger:        logger,
		maxUploadSize: DefaultMaxUploadSize,
	}
}

// playlistResponse represents the filtered playlist in JSON format.
type playlistResponse struct {
	Channels   []channelResponse     `json:"channels"`
	Filters    view.Filters          `json:"filters"`
	Stats      view.Stats            `json:"stats"`
	Total      int                   `json:"total"`
	Sort       application.SortState `json:"sort"`
	HistoryLen int                   `json:"history_len"`
}

// importRequest represents the JSON body for importing from a URL.
type importRequest struct {
	URL string `json:"url"`
}

// fieldRequest represents the JSON body for editing one channel field.
type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// selectRequest represents the JSON body for bulk selection.
// Status takes precedence over All when set.
type selectRequest struct {
	All    *bool  `json:"all"`
	Status string `json:"status"`
}

// sortRequest represents the JSON body for sorting.
type sortRequest struct {
	Field string `json:"field"`
}

// moveRequest represents the JSON body for manual reordering.
type moveRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// renameRequest represents the JSON body for find and replace.
type renameRequest struct {
	Scope    string `json:"scope"`
	Find     string `json:"find"`
	Replace  string `json:"replace"`
	UseRegex bool   `json:"use_regex"`
}

// regroupRequest represents the JSON body for regrouping.
type regroupRequest struct {
	Template string `json:"template"`
}

// countResponse reports how many channels an action touched.
type countResponse struct {
	Count      int `json:"count"`
	HistoryLen int `json:"history_len"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *PlaylistHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/playlist")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.handleView(w, r)
	case path == "" && r.Method == http.MethodDelete:
		h.handleClear(w, r)
	case path == "/filters" && r.Method == http.MethodPut:
		h.handleFilters(w, r)
	case path == "/options" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.service.Options())
	case path == "/sources" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.service.Sources())
	case path == "/import" && r.Method == http.MethodPost:
		h.handleImport(w, r)
	case path == "/export" && r.Method == http.MethodGet:
		h.handleExport(w, r)
	case strings.HasPrefix(path, "/channels/"):
		h.routeChannel(w, r, strings.TrimPrefix(path, "/channels/"))
	case r.Method == http.MethodPost:
		h.routeAction(w, r, path)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// routeChannel handles /playlist/channels/{id}[/edit|/toggle]
func (h *PlaylistHTTPHandler) routeChannel(w http.ResponseWriter, r *http.Request, rest string) {
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodPatch:
		h.handleUpdateField(w, r, id)
	case action == "edit" && r.Method == http.MethodPost:
		if err := h.service.BeginEdit(id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{Count: 1, HistoryLen: h.service.HistoryLen()})
	case action == "toggle" && r.Method == http.MethodPost:
		ch, err := h.service.ToggleSelect(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toChannelResponse(ch))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// routeAction handles the POST /playlist/{action} endpoints.
func (h *PlaylistHTTPHandler) routeAction(w http.ResponseWriter, r *http.Request, path string) {
	switch path {
	case "/select":
		h.handleSelect(w, r)
	case "/delete-selected":
		h.writeCount(w, h.service.DeleteSelected())
	case "/dedupe":
		h.writeCount(w, h.service.RemoveDuplicates())
	case "/sort":
		h.handleSort(w, r)
	case "/move":
		h.handleMove(w, r)
	case "/rename":
		h.handleRename(w, r)
	case "/regroup":
		h.handleRegroup(w, r)
	case "/undo":
		if !h.service.Undo() {
			writeError(w, http.StatusUnprocessableEntity, "nothing to undo")
			return
		}
		h.handleView(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleView handles GET /playlist
func (h *PlaylistHTTPHandler) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.View()))
}

// handleClear handles DELETE /playlist
func (h *PlaylistHTTPHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleFilters handles PUT /playlist/filters
func (h *PlaylistHTTPHandler) handleFilters(w http.ResponseWriter, r *http.Request) {
	var f view.Filters
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.SetFilters(f)))
}

// handleImport handles POST /playlist/import with either a multipart body
// carrying "files" or a JSON body carrying a url.
func (h *PlaylistHTTPHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		result application.ImportResult
		err    error
	)
	if mediaType == "multipart/form-data" {
		var uploads []driven.Source
		uploads, err = h.readUploads(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		result, err = h.service.ImportContent(uploads...)
	} else {
		var req importRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		result, err = h.service.ImportURL(r.Context(), req.URL)
	}

	if err != nil {
		h.logger.Warn("playlist import failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PlaylistHTTPHandler) readUploads(w http.ResponseWriter, r *http.Request) ([]driven.Source, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, fmt.Errorf("no files uploaded")
	}

	uploads := make([]driven.Source, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, driven.Source{Name: fh.Filename, Content: string(data)})
	}
	return uploads, nil
}

// handleExport handles GET /playlist/export?mode=all|selected&format=m3u|m3u8
func (h *PlaylistHTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := application.ParseExportMode(q.Get("mode"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	format, err := m3u.ParseFormat(q.Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	file, err := h.service.Export(mode, format)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, file.Content)
}

// handleUpdateField handles PATCH /playlist/channels/{id}
func (h *PlaylistHTTPHandler) handleUpdateField(w http.ResponseWriter, r *http.Request, id string) {
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.service.UpdateField(id, req.Field, req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChannelResponse(ch))
}

// handleSelect handles POST /playlist/select
func (h *PlaylistHTTPHandler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case req.Status != "":
		status, err := channel.ParseStatus(req.Status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		h.writeCount(w, h.service.SelectByStatus(status))
	case req.All != nil:
		h.writeCount(w, h.service.SelectVisible(*req.All))
	default:
		writeError(w, http.StatusBadRequest, "either all or status is required")
	}
}

// handleSort handles POST /playlist/sort
func (h *PlaylistHTTPHandler) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.service.Sort(req.Field); err != nil {
		writeServiceError(w, err)
		return
	}
	h.handleView(w, r)
}

// handleMove handles POST /playlist/move
func (h *PlaylistHTTPHandler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	moved := 0
	if h.service.Move(req.SourceID, req.TargetID) {
		moved = 1
	}
	h.writeCount(w, moved)
}

// handleRename handles POST /playlist/rename
func (h *PlaylistHTTPHandler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope, err := channel.ParseField(req.Scope)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	n, err := h.service.Rename(bulk.Rename{
		Scope:    scope,
		Find:     req.Find,
		Replace:  req.Replace,
		UseRegex: req.UseRegex,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeCount(w, n)
}

// handleRegroup handles POST /playlist/regroup
func (h *PlaylistHTTPHandler) handleRegroup(w http.ResponseWriter, r *http.Request) {
	var req regroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.writeCount(w, h.service.Regroup(req.Template))
}

func (h *PlaylistHTTPHandler) writeCount(w http.ResponseWriter, n int) {
	writeJSON(w, http.StatusOK, countResponse{Count: n, HistoryLen: h.service.HistoryLen()})
}

// toPlaylistResponse converts the workspace view to an API response.
func toPlaylistResponse(v application.WorkspaceView) playlistResponse {
	channels := make([]channelResponse, len(v.Channels))
	for i, ch := range v.Channels {
		channels[i] = toChannelResponse(ch)
	}
	return playlistResponse{
		Channels:   channels,
		Filters:    v.Filters,
		Stats:      v.Stats,
		Total:      v.Total,
		Sort:       v.Sort,
		HistoryLen: v.HistoryLen,
	}
}
