package handler

import (
	"net/http"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/middleware"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/service"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send persists a message and fans it out to the chat's connected
// members. The push happens after the row is stored; a storage failure
// never reaches any channel.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ChatID  string `json:"chatId"`
		Message struct {
			Text string `json:"text"`
		} `json:"message"`
	}
	if !decodeBody(w, r, &request) {
		return
	}
	if request.ChatID == "" || request.Message.Text == "" {
		writeMessage(w, http.StatusBadRequest, false, "chatId and message text are required")
		return
	}

	message, err := h.messageService.Create(request.ChatID, middleware.UserID(r.Context()), request.Message.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}
