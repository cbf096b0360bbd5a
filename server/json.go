package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/tbxark/formpilot/agent"
	"github.com/tbxark/formpilot/docs"
	"github.com/tbxark/formpilot/patch"
)

const maxJSONBody = 1 << 20

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"success":false,"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorResponse{Success: false, Error: message})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *docs.UpstreamError
	switch {
	case errors.Is(err, agent.ErrSessionNotFound):
		Error(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, patch.ErrPathNotAllowed), errors.Is(err, patch.ErrInvalidPatch):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		slog.Warn("document service failed", "path", r.URL.Path, "err", err)
		Error(w, http.StatusBadGateway, upstream.Error())
	case errors.Is(err, docs.ErrUpstreamUnavailable):
		slog.Warn("document service failed", "path", r.URL.Path, "err", err)
		Error(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("request failed", "path", r.URL.Path, "err", err)
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
