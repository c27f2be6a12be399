package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError answers htmx and JSON clients with the error envelope and browsers
// with a plain text error.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if IsHTMX(r.Context()) || r.Header.Get("HX-Request") == "true" || wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     code,
			Message:   message,
			Status:    status,
			RequestID: chimw.GetReqID(r.Context()),
		})
		return
	}
	http.Error(w, message, status)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return accept == "application/json"
}
