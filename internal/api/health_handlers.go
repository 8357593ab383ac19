package api

import (
	"net/http"

	"github.com/storefrontapp/storefront-server/internal/http/response"
)

// handleHealthCheck returns server health status. The document store is the
// only hard dependency; search and audit degrade gracefully.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Users.Count(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, "document store unavailable", s.logger)
		return
	}

	status := map[string]any{
		"status": "healthy",
		"users":  users,
	}
	if s.search != nil {
		if docs, err := s.search.DocumentCount(); err == nil {
			status["indexed_documents"] = docs
		}
	}

	response.Success(w, status, s.logger)
}
