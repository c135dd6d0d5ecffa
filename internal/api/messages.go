package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/relay"
)

// MessagesHandler handles messaging endpoints.
type MessagesHandler struct {
	Relay *relay.Relay
}

type sendMessageRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	TagID      string `json:"tagId"`
	Subject    string `json:"subject"`
	Message    string `json:"message"`
	SendEmail  bool   `json:"sendEmail"`
}

// Send handles POST /api/messages/send. The sender is always the caller.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FromUserID != "" && req.FromUserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "cannot send as another user")
		return
	}

	msg, err := h.Relay.Send(r.Context(), relay.SendInput{
		FromUserID: claims.UserID,
		ToUserID:   req.ToUserID,
		TagID:      req.TagID,
		Subject:    req.Subject,
		Body:       req.Message,
		EmailCopy:  req.SendEmail,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"messageId": msg.ID,
		"emailSent": msg.EmailSent,
		"message":   "Message sent successfully",
	})
}

// Inbox handles GET /api/messages/{userId}. Users may only read their own
// inbox.
func (h *MessagesHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	userID := r.PathValue("userId")
	if userID != claims.UserID {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	messages, err := h.Relay.Inbox(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	jsonResponse(w, http.StatusOK, messages)
}
