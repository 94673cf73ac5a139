package handler

import (
	"context"
	"errors"
	"net/http"

	"blog_api/internal/api/middleware"
	"blog_api/internal/app/service"
	"blog_api/internal/common"
	"blog_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type PostService interface {
	List(ctx context.Context) ([]model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	Create(ctx context.Context, author *model.User, req service.CreatePostRequest) (*model.Post, error)
	Update(ctx context.Context, identity *model.User, id int64, req service.UpdatePostRequest) error
	Delete(ctx context.Context, identity *model.User, id int64) error
}

type PostHandler struct {
	postService PostService
	responder   *common.Responder
	gate        func(http.Handler) http.Handler
}

func NewPostHandler(postService PostService, responder *common.Responder, gate func(http.Handler) http.Handler) *PostHandler {
	return &PostHandler{postService: postService, responder: responder, gate: gate}
}

func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPosts)
	r.Get("/{id}", h.getPost)

	r.Group(func(protected chi.Router) {
		protected.Use(h.gate)
		protected.Post("/", h.createPost)
		protected.Patch("/{id}", h.updatePost)
		protected.Delete("/{id}", h.deletePost)
	})
}

type postsResponse struct {
	Posts []model.PostView `json:"posts"`
}

func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		h.responder.FromError(w, err)
		return
	}
	resp := postsResponse{Posts: make([]model.PostView, 0, len(posts))}
	for i := range posts {
		resp.Posts = append(resp.Posts, posts[i].View())
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PostHandler) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.responder.Error(w, http.StatusNotFound, "Blog post not found.")
		return
	}
	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		h.responder.FromError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post.View())
}

func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.responder.Error(w, http.StatusForbidden, "You are forbidden to view this page.")
		return
	}
	var req service.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.Error(w, http.StatusBadRequest, badJSONMessage)
		return
	}
	if _, err := h.postService.Create(r.Context(), user, req); err != nil {
		h.responder.FromError(w, err)
		return
	}
	h.responder.Status(w, http.StatusCreated, "Created", "Blog post created!")
}

// A malformed body is reported only after the lookup and ownership checks,
// which an empty update runs without writing anything.
func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := idParam(r, "id")
	if !ok {
		h.responder.Error(w, http.StatusNotFound, "Blog post not found.")
		return
	}
	var req service.UpdatePostRequest
	decodeErr := decodeJSON(w, r, &req)
	if decodeErr != nil {
		req = service.UpdatePostRequest{}
	}

	err := h.postService.Update(r.Context(), user, id, req)
	if decodeErr != nil && (err == nil || errors.Is(err, common.ErrBadRequest)) {
		h.responder.Error(w, http.StatusBadRequest, badJSONMessage)
		return
	}
	if err != nil {
		h.responder.FromError(w, err)
		return
	}
	h.responder.Status(w, http.StatusOK, "OK", "Blog post updated.")
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := idParam(r, "id")
	if !ok {
		h.responder.Error(w, http.StatusNotFound, "Blog post not found.")
		return
	}
	if err := h.postService.Delete(r.Context(), user, id); err != nil {
		h.responder.FromError(w, err)
		return
	}
	h.responder.Status(w, http.StatusOK, "OK", "Blog post deleted.")
}
