package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type sendRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	users, err := s.users.ListOthers(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PublicUsers(users))
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	msgs, err := s.messages.Conversation(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}

	writeJSON(w, http.StatusOK, msgs)
}

// handleSend stores the message and then pushes it to the receiver if they
// are connected. A failed push does not fail the request.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req sendRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.messages.Send(r.Context(), user.ID, chi.URLParam(r, "id"), req.Text, req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	delivered := s.hub.Dispatch(msg.ReceiverID, common.EventNewMessage, msg)
	s.logger.Debug(r.Context(), "message sent", "message_id", msg.ID, "delivered", delivered)

	writeJSON(w, http.StatusCreated, msg)
}
