package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSON writes data with the given status. Encoding failures are logged
// rather than surfaced; headers are already gone by then.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(r.Context(), "response encode failed", "error", err)
	}
}

// Error writes the flat error envelope used across the API:
// {"error": "<message>"}.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, map[string]string{"error": message})
}
