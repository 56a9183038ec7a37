package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

type ErrorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// respondJSON encodes before touching the header so an encoding failure can
// still become a clean 500.
func respondJSON(rw http.ResponseWriter, statusCode int, data any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		slog.Error("json encoding failed", "error", err)
		http.Error(rw, "internal server error", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}

func respondError(rw http.ResponseWriter, statusCode int, message string) {
	respondJSON(rw, statusCode, ErrorResponse{Error: message})
}
