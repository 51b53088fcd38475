// Package handler exposes the REST surface. Every response body carries
// a success flag the way the web client expects.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samber/lo"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, map[string]any{
		"success": success,
		"message": message,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "invalid request body")
		return false
	}
	return true
}

// writeError maps a service error onto a status code. Unrecognized
// errors are treated as storage failures.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUserExists),
		errors.Is(err, apperr.ErrAlreadyMember),
		errors.Is(err, apperr.ErrNotRemoved),
		errors.Is(err, apperr.ErrNotGroup):
		writeMessage(w, http.StatusBadRequest, false, err.Error())
	case errors.Is(err, apperr.ErrInvalidCredentials),
		errors.Is(err, apperr.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, false, err.Error())
	case errors.Is(err, apperr.ErrForbidden),
		errors.Is(err, apperr.ErrNotMember):
		writeMessage(w, http.StatusForbidden, false, err.Error())
	case errors.Is(err, apperr.ErrUserNotFound),
		errors.Is(err, apperr.ErrChatNotFound):
		writeMessage(w, http.StatusNotFound, false, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, false, "internal server error")
	}
}

// chatView is the chat shape the client renders: active and removed
// member ids as two arrays, plus the latest message when one exists.
type chatView struct {
	ID           string           `json:"id"`
	Kind         string           `json:"type"`
	Name         string           `json:"name,omitempty"`
	Avatar       string           `json:"avatar,omitempty"`
	CreatedBy    string           `json:"createdBy"`
	Users        []string         `json:"users"`
	UsersDeleted []string         `json:"usersDeleted"`
	Messages     []entity.Message `json:"messages"`
	LastMessage  *entity.Message  `json:"lastMessage,omitempty"`
}

func newChatView(chat *entity.Chat) chatView {
	active := lo.FilterMap(chat.Members, func(m entity.ChatMember, _ int) (string, bool) {
		return m.UserID, !m.Removed
	})
	removed := lo.FilterMap(chat.Members, func(m entity.ChatMember, _ int) (string, bool) {
		return m.UserID, m.Removed
	})

	view := chatView{
		ID:           chat.ID,
		Kind:         chat.Kind,
		Name:         chat.Name,
		Avatar:       chat.Avatar,
		CreatedBy:    chat.CreatedBy,
		Users:        active,
		UsersDeleted: removed,
		Messages:     chat.Messages,
	}
	if view.Messages == nil {
		view.Messages = []entity.Message{}
	}
	if len(chat.Messages) > 0 {
		last := chat.Messages[len(chat.Messages)-1]
		view.LastMessage = &last
	}
	return view
}

func newChatViews(chats []*entity.Chat) []chatView {
	return lo.Map(chats, func(chat *entity.Chat, _ int) chatView {
		return newChatView(chat)
	})
}
