package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"blog_api/internal/common"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/model"
	"blog_api/internal/domain/repository"
	"blog_api/internal/platform/logging"
)

var (
	errUserNotFound  = common.WithMessage(common.ErrNotFound, "User not found.")
	errUsernameTaken = common.WithMessage(common.ErrConflict, "Username is already in use.")
	errMissingFields = common.WithMessage(common.ErrBadRequest, "Username, password, name or email is not given.")
	errEmptyUpdate   = common.WithMessage(common.ErrBadRequest, "No profile field to update was given.")
)

// Column widths of the users table.
const (
	maxUsernameLen = 32
	maxNameLen     = 40
	maxEmailLen    = 120
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	logger   logging.Logger
}

func NewUserService(userRepo repository.UserRepository, hasher security.PasswordHasher, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &UserService{userRepo: userRepo, hasher: hasher, logger: logger}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// UpdateUserRequest leaves a field untouched when it is absent from the body.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if isBlank(req.Username) || req.Password == "" || isBlank(req.Name) || isBlank(req.Email) {
		return nil, errMissingFields
	}
	if err := checkProfileLengths(&req.Username, &req.Name, &req.Email); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, errUsernameTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		HashedPassword: hashedPassword,
		Name:           req.Name,
		Email:          req.Email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, common.ErrConflict) {
			return nil, errUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update applies the present fields of req to user id. A username held by a
// different user is a conflict; keeping one's own username is not.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	upd := model.UserUpdate{Username: req.Username, Name: req.Name, Email: req.Email}
	if upd.Empty() {
		return errEmptyUpdate
	}
	for _, f := range []*string{upd.Username, upd.Name, upd.Email} {
		if f != nil && isBlank(*f) {
			return common.WithMessage(common.ErrBadRequest, "Profile fields must not be empty.")
		}
	}
	if err := checkProfileLengths(upd.Username, upd.Name, upd.Email); err != nil {
		return err
	}

	if upd.Username != nil && *upd.Username != user.Username {
		other, err := s.userRepo.FindByUsername(ctx, *upd.Username)
		switch {
		case err == nil && other.ID != user.ID:
			return errUsernameTaken
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return fmt.Errorf("failed to check username: %w", err)
		}
		user.Username = *upd.Username
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			return errUsernameTaken
		case errors.Is(err, common.ErrNotFound):
			return errUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes the user. Their posts stay and read back without an author.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// checkProfileLengths skips nil fields.
func checkProfileLengths(username, name, email *string) error {
	for _, f := range []struct {
		label string
		value *string
		max   int
	}{
		{"Username", username, maxUsernameLen},
		{"Name", name, maxNameLen},
		{"Email", email, maxEmailLen},
	} {
		if f.value == nil {
			continue
		}
		if err := checkLength(f.label, *f.value, f.max); err != nil {
			return err
		}
	}
	return nil
}

// checkLength counts characters, as VARCHAR(n) does.
func checkLength(label, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return common.WithMessage(common.ErrValidation, fmt.Sprintf("%s must be at most %d characters.", label, max))
	}
	return nil
}
