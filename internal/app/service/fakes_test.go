package service

import (
	"context"
	"sync"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
	err    error // returned by every call when set
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return common.ErrConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []model.User{}
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	old, ok := r.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	user.HashedPassword = old.HashedPassword
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakePostRepo struct {
	mu      sync.Mutex
	nextID  int64
	posts   map[int64]model.Post
	users   *fakeUserRepo
	updates int
	deletes int
}

func newFakePostRepo(users *fakeUserRepo) *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]model.Post), users: users}
}

func (r *fakePostRepo) withAuthor(p model.Post) *model.Post {
	p.AuthorUsername = nil
	if r.users != nil {
		if u, err := r.users.FindByID(context.Background(), p.AuthorID); err == nil {
			name := u.Username
			p.AuthorUsername = &name
		}
	}
	return &p
}

func (r *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) FindByID(_ context.Context, id int64) (*model.Post, error) {
	r.mu.Lock()
	p, ok := r.posts[id]
	r.mu.Unlock()
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.withAuthor(p), nil
}

func (r *fakePostRepo) List(_ context.Context) ([]model.Post, error) {
	r.mu.Lock()
	ids := r.nextID
	snapshot := make(map[int64]model.Post, len(r.posts))
	for k, v := range r.posts {
		snapshot[k] = v
	}
	r.mu.Unlock()

	out := []model.Post{}
	for id := int64(1); id <= ids; id++ {
		if p, ok := snapshot[id]; ok {
			out = append(out, *r.withAuthor(p))
		}
	}
	return out, nil
}

func (r *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.posts[post.ID]
	if !ok {
		return common.ErrNotFound
	}
	r.updates++
	post.AuthorID = old.AuthorID
	post.CreatedAt = old.CreatedAt
	stored := *post
	stored.AuthorUsername = nil
	r.posts[post.ID] = stored
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return common.ErrNotFound
	}
	r.deletes++
	delete(r.posts, id)
	return nil
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct {
	hashes    int
	checks    int
	lastCheck string // hash given to the latest Check
	hashErr   error
}

func (h *plainHasher) Hash(password string) (string, error) {
	h.hashes++
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h *plainHasher) Check(password, hash string) bool {
	h.checks++
	h.lastCheck = hash
	return hash == "hashed:"+password
}
