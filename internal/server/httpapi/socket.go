package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/google/uuid"
)

// handleSocket upgrades to a websocket for the caller. When a session cookie
// is sent it alone decides who the caller is and must be valid. Clients that
// send no cookie fall back to the userId query parameter, which is trusted
// as given.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	var userID string
	if token := sessionToken(r); token != "" {
		user, _, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		userID = user.ID
	} else {
		userID = r.URL.Query().Get("userId")
		if userID == "" {
			s.writeError(w, r, common.Validation("userId is required"))
			return
		}
		if _, err := uuid.Parse(userID); err != nil {
			s.writeError(w, r, common.Validation("Invalid user id"))
			return
		}
	}

	if err := s.hub.Serve(w, r, userID); err != nil {
		s.logger.Warn(r.Context(), "socket upgrade failed", "error", err)
	}
}
