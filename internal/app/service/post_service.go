package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"
	"blog_api/internal/domain/policy"
	"blog_api/internal/domain/repository"
	"blog_api/internal/platform/cache"
	"blog_api/internal/platform/logging"
	"blog_api/internal/platform/metrics"

	"github.com/gosimple/slug"
	"golang.org/x/sync/singleflight"
)

var (
	errPostNotFound    = common.WithMessage(common.ErrNotFound, "Blog post not found.")
	errUpdateForbidden = common.WithMessage(common.ErrForbidden, "You are forbidden to update this blog post.")
	errDeleteForbidden = common.WithMessage(common.ErrForbidden, "You are forbidden to delete this blog post.")
	errPostFields      = common.WithMessage(common.ErrBadRequest, "Title and content are required.")
	errEmptyPostUpdate = common.WithMessage(common.ErrBadRequest, "No blog post field to update was given.")
)

// Column widths of the blog_posts table.
const (
	maxTitleLen = 255
	maxSlugLen  = 255
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	cache    *cache.PostCache
	logger   logging.Logger
	metrics  *metrics.AuthMetrics
	now      func() time.Time
	loads    singleflight.Group
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	postCache *cache.PostCache,
	logger logging.Logger,
	m *metrics.AuthMetrics,
) *PostService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		cache:    postCache,
		logger:   logger,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreatePostRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Tags    *string `json:"tags"`
}

// UpdatePostRequest leaves a field untouched when it is absent from the body.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Tags    *string `json:"tags"`
}

func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get serves from the cache when it can. The author's username is always
// read live.
func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	post, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "post cache read failed", "post_id", id, "error", err)
	}
	if ok {
		if err := s.resolveAuthor(ctx, post); err != nil {
			return nil, err
		}
		return post, nil
	}

	// Concurrent misses for one id share a single store read.
	v, err, _ := s.loads.Do(strconv.FormatInt(id, 10), func() (any, error) {
		post, err := s.findPost(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, post); err != nil {
			s.logger.Warn(ctx, "post cache write failed", "post_id", id, "error", err)
		}
		return post, nil
	})
	if err != nil {
		return nil, err
	}
	loaded := *v.(*model.Post)
	return &loaded, nil
}

func (s *PostService) Create(ctx context.Context, author *model.User, req CreatePostRequest) (*model.Post, error) {
	if author == nil {
		return nil, common.ErrUnauthenticated
	}
	if isBlank(req.Title) || isBlank(req.Content) {
		return nil, errPostFields
	}
	if err := checkLength("Title", req.Title, maxTitleLen); err != nil {
		return nil, err
	}

	now := s.now()
	post := &model.Post{
		Title:     req.Title,
		Slug:      makeSlug(req.Title),
		Content:   req.Content,
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Tags != nil && !isBlank(*req.Tags) {
		tags := *req.Tags
		post.Tags = &tags
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	username := author.Username
	post.AuthorUsername = &username
	return post, nil
}

// Update checks existence, then ownership, then the input. A rejected
// update writes nothing.
func (s *PostService) Update(ctx context.Context, identity *model.User, id int64, req UpdatePostRequest) error {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanMutate(identity, post) {
		s.metrics.OwnershipDenied()
		return errUpdateForbidden
	}

	upd := model.PostUpdate{Title: req.Title, Content: req.Content, Tags: req.Tags}
	if upd.Empty() {
		return errEmptyPostUpdate
	}
	if (upd.Title != nil && isBlank(*upd.Title)) || (upd.Content != nil && isBlank(*upd.Content)) {
		return common.WithMessage(common.ErrBadRequest, "Title and content must not be empty.")
	}
	if upd.Title != nil {
		if err := checkLength("Title", *upd.Title, maxTitleLen); err != nil {
			return err
		}
	}

	upd.Apply(post, makeSlug, s.now())
	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errPostNotFound
		}
		return fmt.Errorf("failed to update post: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *PostService) Delete(ctx context.Context, identity *model.User, id int64) error {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanMutate(identity, post) {
		s.metrics.OwnershipDenied()
		return errDeleteForbidden
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// findPost reads the store directly; ownership decisions never use the cache.
func (s *PostService) findPost(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *PostService) resolveAuthor(ctx context.Context, post *model.Post) error {
	author, err := s.userRepo.FindByID(ctx, post.AuthorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			post.AuthorUsername = nil
			return nil
		}
		return fmt.Errorf("failed to resolve author: %w", err)
	}
	username := author.Username
	post.AuthorUsername = &username
	return nil
}

// makeSlug keeps the slug within its column. Transliteration can make a
// slug longer than its title.
func makeSlug(title string) string {
	sl := slug.Make(title)
	if len(sl) <= maxSlugLen {
		return sl
	}
	return strings.TrimRight(sl[:maxSlugLen], "-")
}

func (s *PostService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn(ctx, "post cache invalidation failed", "post_id", id, "error", err)
	}
}
