package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/middleware"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// List returns every user, or a substring match over id, name and email
// when the id query parameter is present. The caller is excluded from
// search results.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("id")

	if query == "" {
		users, err := h.userService.List()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"users":   users,
		})
		return
	}

	users, err := h.userService.Search(query, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}
