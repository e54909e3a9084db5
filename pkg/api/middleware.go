package api

import (
	"encoding/json"
	"net/http"
)

// apiKeyAuth validates the X-API-Key header on every protected route. Each
// attempt is counted in the auth metrics, and rejections are logged through
// the server's logger with the requesting address.
func (s *Server[K, V]) apiKeyAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			switch {
			case apiKey == "":
				serverMetrics.RecordAuthRequest(false)
				s.logger.Warn("rejected request without API key",
					"remote", r.RemoteAddr, "path", r.URL.Path)
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
			case apiKey != s.config.APIKey:
				serverMetrics.RecordAuthRequest(false)
				s.logger.Warn("rejected request with invalid API key",
					"remote", r.RemoteAddr, "path", r.URL.Path)
				sendError(w, "Invalid API key", http.StatusUnauthorized)
			default:
				serverMetrics.RecordAuthRequest(true)
				next.ServeHTTP(w, r)
			}
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, APIResponse{Success: false, Error: message})
}

func sendJSON(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
