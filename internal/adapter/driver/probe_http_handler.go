package driver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alorle/playlist-manager/internal/application"
	"github.com/alorle/playlist-manager/internal/probe"
)

// ProbeHTTPHandler handles HTTP requests for reachability checks.
type ProbeHTTPHandler struct {
	service *application.ProbeService
	// secure forces the mixed-content rule even for plain requests,
	// e.g. when a TLS-terminating proxy does not forward the scheme.
	secure bool
}

// NewProbeHTTPHandler creates a new HTTP handler for reachability checks.
func NewProbeHTTPHandler(service *application.ProbeService, secure bool) *ProbeHTTPHandler {
	return &ProbeHTTPHandler{service: service, secure: secure}
}

// summaryResponse represents a completed check in JSON format.
type summaryResponse struct {
	Total     int    `json:"total"`
	Online    int    `json:"online"`
	Offline   int    `json:"offline"`
	Unknown   int    `json:"unknown"`
	Skipped   int    `json:"skipped"`
	Fallbacks int    `json:"fallbacks"`
	Batches   int    `json:"batches"`
	Elapsed   string `json:"elapsed"`
	Secure    bool   `json:"secure"`
}

// probeResultResponse represents a logged probe result in JSON format.
type probeResultResponse struct {
	ChannelID    string `json:"channel_id"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	Method       string `json:"method"`
	CheckedAt    string `json:"checked_at"`
	DurationMs   int64  `json:"duration_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *ProbeHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/playlist")

	switch {
	case path == "/check" && r.Method == http.MethodPost:
		h.handleCheck(w, r)
	case path == "/probes" && r.Method == http.MethodGet:
		h.handleHistory(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCheck handles POST /playlist/check
func (h *ProbeHTTPHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	secure := h.secure || isSecureRequest(r)

	// A started check runs to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())

	summary, err := h.service.CheckSelected(ctx, secure)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary, secure))
}

// handleHistory handles GET /playlist/probes?url=
func (h *ProbeHTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	results, err := h.service.History(r.Context(), url)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]probeResultResponse, len(results))
	for i, res := range results {
		response[i] = toProbeResultResponse(res)
	}
	writeJSON(w, http.StatusOK, response)
}

func toSummaryResponse(s probe.Summary, secure bool) summaryResponse {
	return summaryResponse{
		Total:     s.Total,
		Online:    s.Online,
		Offline:   s.Offline,
		Unknown:   s.Unknown,
		Skipped:   s.Skipped,
		Fallbacks: s.Fallbacks,
		Batches:   s.Batches,
		Elapsed:   s.Elapsed.String(),
		Secure:    secure,
	}
}

func toProbeResultResponse(r probe.Result) probeResultResponse {
	return probeResultResponse{
		ChannelID:    r.ChannelID(),
		URL:          r.URL(),
		Status:       string(r.Status()),
		Method:       string(r.Method()),
		CheckedAt:    r.CheckedAt().Format(time.RFC3339),
		DurationMs:   r.Duration().Milliseconds(),
		ErrorMessage: r.ErrorMessage(),
	}
}
