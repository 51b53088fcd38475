package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/middleware"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/service"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chatService.ListForUser(middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chats":   newChatViews(chats),
	})
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chatService.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chat":    newChatView(chat),
	})
}

func (h *ChatHandler) CreatePrivate(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if !decodeBody(w, r, &request) {
		return
	}
	if request.UserID == "" {
		writeMessage(w, http.StatusBadRequest, false, "userId is required")
		return
	}

	chat, err := h.chatService.CreatePrivate(middleware.UserID(r.Context()), request.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chat":    newChatView(chat),
	})
}

func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name   string   `json:"name"`
		Avatar string   `json:"avatar"`
		Users  []string `json:"users"`
	}
	if !decodeBody(w, r, &request) {
		return
	}
	if request.Name == "" || len(request.Users) == 0 {
		writeMessage(w, http.StatusBadRequest, false, "name and users are required")
		return
	}

	chat, err := h.chatService.CreateGroup(middleware.UserID(r.Context()), request.Name, request.Avatar, request.Users)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chat":    newChatView(chat),
	})
}

func (h *ChatHandler) Leave(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.chatService.Leave(mux.Vars(r)["id"], middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": deleted,
	})
}

func (h *ChatHandler) Restore(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chatService.Restore(mux.Vars(r)["id"], middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chat":    newChatView(chat),
	})
}

func (h *ChatHandler) EditGroup(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name   *string `json:"name"`
		Avatar *string `json:"avatar"`
	}
	if !decodeBody(w, r, &request) {
		return
	}

	chat, err := h.chatService.UpdateGroup(mux.Vars(r)["id"], middleware.UserID(r.Context()), request.Name, request.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chat":    newChatView(chat),
	})
}

func (h *ChatHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if !decodeBody(w, r, &request) {
		return
	}
	if request.UserID == "" {
		writeMessage(w, http.StatusBadRequest, false, "userId is required")
		return
	}

	chat, err := h.chatService.AddMember(mux.Vars(r)["id"], middleware.UserID(r.Context()), request.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chat":    newChatView(chat),
	})
}
