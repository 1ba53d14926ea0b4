package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mapfin/internal/log"
	"mapfin/internal/sheets"
)

const maxBodyBytes = 1 << 20

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// requestID keeps a caller supplied X-Request-ID when it looks sane.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 && !strings.ContainsAny(id, " \t\r\n") {
		return id
	}
	return generateRequestID()
}

type errorResponse struct {
	Error string `json:"error"`
}

type createResponse struct {
	Success bool       `json:"success"`
	ID      string     `json:"id"`
	Data    sheets.Row `json:"data"`
}

type updateResponse struct {
	Success bool       `json:"success"`
	Data    sheets.Row `json:"data"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

var errEmptyBody = errors.New("request body is empty")

// decodeRow reads a JSON object body and flattens it into a Row.
func decodeRow(r *http.Request) (sheets.Row, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if obj == nil {
		return nil, errEmptyBody
	}
	return sheets.RowFromJSON(obj)
}

// storeError maps persistence errors onto the proxy's status codes.
func storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sheets.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, "Sheet not found")
	case errors.Is(err, sheets.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Store operation failed", log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
