package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
)

// envelope is the body of every API response.
type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// apiFunc is a handler whose error is rendered by wrap.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respond writes a success envelope.
func respond(w http.ResponseWriter, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, status, envelope{Status: status, Data: data, Message: message, Success: status < http.StatusBadRequest})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: status, Message: message, Success: false})
}

// wrap turns an apiFunc into a handler. Errors become the error envelope;
// server-side failures are logged with their cause, which never reaches the
// client.
func (h *Handler) wrap(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		status, message := common.StatusOf(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeError(w, status, message)
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return common.BadRequest("Content-Type must be application/json")
	}

	body := http.MaxBytesReader(w, r.Body, h.jsonLimit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooLarge):
			return common.BadRequest("Request body too large")
		default:
			return common.BadRequest("Invalid JSON body")
		}
	}
	return nil
}
