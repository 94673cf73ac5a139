package handler

import (
	"context"
	"net/http"

	"blog_api/internal/app/service"
	"blog_api/internal/common"

	"github.com/go-chi/chi/v5"
)

type LoginService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthResponse, error)
}

type AuthHandler struct {
	authService LoginService
	responder   *common.Responder
}

func NewAuthHandler(authService LoginService, responder *common.Responder) *AuthHandler {
	return &AuthHandler{authService: authService, responder: responder}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.Error(w, http.StatusBadRequest, badJSONMessage)
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.responder.FromError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
