package driver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alorle/playlist-manager/internal/application"
	"github.com/alorle/playlist-manager/internal/bulk"
	"github.com/alorle/playlist-manager/internal/channel"
	"github.com/alorle/playlist-manager/internal/m3u"
	"github.com/alorle/playlist-manager/internal/playlist"
	"github.com/alorle/playlist-manager/internal/port/driven"
	"github.com/alorle/playlist-manager/internal/probe"
)

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps application and domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, channel.ErrChannelNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, channel.ErrUnknownField),
		errors.Is(err, channel.ErrReadOnlyField),
		errors.Is(err, channel.ErrInvalidStatus),
		errors.Is(err, bulk.ErrEmptyFind),
		errors.Is(err, bulk.ErrInvalidScope),
		errors.Is(err, bulk.ErrInvalidPattern),
		errors.Is(err, m3u.ErrUnknownFormat),
		errors.Is(err, playlist.ErrInvalidDirection),
		errors.Is(err, application.ErrInvalidExportMode),
		errors.Is(err, application.ErrEmptyLocation),
		errors.Is(err, application.ErrUnsortableField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, probe.ErrNoSelection),
		errors.Is(err, application.ErrNothingToExport):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, application.ErrProbeInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, driven.ErrSourceUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// channelResponse represents a channel in JSON format.
type channelResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Group    string `json:"group"`
	Tag      string `json:"tag"`
	Logo     string `json:"logo"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Status   string `json:"status"`
	Selected bool   `json:"selected"`
}

// toChannelResponse converts a channel domain object to an API response.
func toChannelResponse(ch channel.Channel) channelResponse {
	return channelResponse{
		ID:       ch.ID,
		Name:     ch.Name,
		Group:    ch.Group,
		Tag:      ch.Tag,
		Logo:     ch.Logo,
		URL:      ch.URL,
		Source:   ch.Source,
		Status:   string(ch.Status),
		Selected: ch.Selected,
	}
}

// isSecureRequest reports whether the client reached the service over TLS,
// directly or through a proxy.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
