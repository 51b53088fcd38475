package handler

import (
	"net/http"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/auth"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request auth.RegisterRequest
	if !decodeBody(w, r, &request) {
		return
	}
	if err := auth.ValidateRegister(request); err != nil {
		writeMessage(w, http.StatusBadRequest, false, err.Error())
		return
	}

	user, pair, err := h.authService.Register(request.Email, request.Name, request.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request auth.LoginRequest
	if !decodeBody(w, r, &request) {
		return
	}
	if err := auth.ValidateLogin(request); err != nil {
		writeMessage(w, http.StatusBadRequest, false, err.Error())
		return
	}

	user, pair, err := h.authService.Login(request.Email, request.Password, request.Remember)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &request) {
		return
	}

	pair, err := h.authService.Refresh(request.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout is stateless: tokens are not tracked server-side, the client
// just discards its pair.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, true, "logged out")
}
