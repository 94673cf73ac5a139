package handler

import (
	"context"
	"net/http"
	"strconv"

	"blog_api/internal/app/service"
	"blog_api/internal/common"
	"blog_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type UserService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, req service.UpdateUserRequest) error
	Delete(ctx context.Context, id int64) error
}

type UserHandler struct {
	userService UserService
	responder   *common.Responder
	gate        func(http.Handler) http.Handler
}

func NewUserHandler(userService UserService, responder *common.Responder, gate func(http.Handler) http.Handler) *UserHandler {
	return &UserHandler{userService: userService, responder: responder, gate: gate}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Post("/", h.createUser)
	r.Get("/{id}", h.getUser)

	r.Group(func(protected chi.Router) {
		protected.Use(h.gate)
		protected.Patch("/{id}", h.updateUser)
		protected.Delete("/{id}", h.deleteUser)
	})
}

type usersResponse struct {
	Users []model.Profile `json:"users"`
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.responder.FromError(w, err)
		return
	}
	resp := usersResponse{Users: make([]model.Profile, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, users[i].Profile())
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.responder.Error(w, http.StatusNotFound, "User not found.")
		return
	}
	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		h.responder.FromError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user.Profile())
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.Error(w, http.StatusBadRequest, badJSONMessage)
		return
	}
	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		h.responder.FromError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/users/"+strconv.FormatInt(user.ID, 10))
	common.RespondWithJSON(w, http.StatusCreated, map[string]string{"username": user.Username})
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.responder.Error(w, http.StatusNotFound, "User not found.")
		return
	}
	var req service.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.Error(w, http.StatusBadRequest, badJSONMessage)
		return
	}
	if err := h.userService.Update(r.Context(), id, req); err != nil {
		h.responder.FromError(w, err)
		return
	}
	h.responder.Status(w, http.StatusOK, "OK", "User profile updated.")
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.responder.Error(w, http.StatusNotFound, "User not found.")
		return
	}
	if err := h.userService.Delete(r.Context(), id); err != nil {
		h.responder.FromError(w, err)
		return
	}
	h.responder.Status(w, http.StatusOK, "OK", "User deleted.")
}
