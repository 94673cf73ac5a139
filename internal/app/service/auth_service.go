package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog_api/internal/common"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/model"
	"blog_api/internal/domain/repository"
	"blog_api/internal/platform/logging"
	"blog_api/internal/platform/metrics"
)

var (
	errBadCredentials = common.WithMessage(common.ErrInvalidCredentials, "Username or password is invalid.")
	errBadToken       = common.WithMessage(common.ErrInvalidOrExpiredToken, "Authorization token is invalid or expired.")
	errBadLogin       = common.WithMessage(common.ErrBadRequest, "Provide either a token or a username and password.")
)

// unknownUserDigest stands in for the dummy hash when the hasher fails at
// startup. It is a well-formed cost-10 bcrypt digest.
const unknownUserDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthService struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	codec    *security.TokenCodec
	tokenTTL time.Duration
	logger   logging.Logger
	metrics  *metrics.AuthMetrics

	// dummyHash is compared against when the username is unknown so that
	// both failure paths cost one hash check.
	dummyHash string
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	codec *security.TokenCodec,
	tokenTTL time.Duration,
	logger logging.Logger,
	m *metrics.AuthMetrics,
) *AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	dummyHash, err := hasher.Hash("blog-api-unknown-user")
	if err != nil || dummyHash == "" {
		logger.Warn(context.Background(), "dummy password hash unavailable, using fixed digest", "error", err)
		dummyHash = unknownUserDigest
	}
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		codec:     codec,
		tokenTTL:  tokenTTL,
		logger:    logger,
		metrics:   m,
		dummyHash: dummyHash,
	}
}

// LoginRequest accepts either Token or Username and Password.
type LoginRequest struct {
	Token    *string `json:"token"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type AuthResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// Login dispatches on the credential kind and always returns a fresh token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	hasToken := req.Token != nil && *req.Token != ""
	hasPassword := req.Username != nil && *req.Username != "" && req.Password != nil && *req.Password != ""

	var (
		user *model.User
		err  error
	)
	switch {
	case hasToken && !hasPassword:
		user, err = s.LoginWithToken(ctx, *req.Token)
	case hasPassword && !hasToken:
		user, err = s.LoginWithPassword(ctx, *req.Username, *req.Password)
	default:
		return nil, errBadLogin
	}
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		Token:    token,
	}, nil
}

// LoginWithPassword fails the same way for an unknown username and for a
// wrong password.
func (s *AuthService) LoginWithPassword(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		s.hasher.Check(password, s.dummyHash)
		s.metrics.Login(metrics.MethodPassword, metrics.OutcomeFailure)
		return nil, errBadCredentials
	}

	if !s.hasher.Check(password, user.HashedPassword) {
		s.metrics.Login(metrics.MethodPassword, metrics.OutcomeFailure)
		return nil, errBadCredentials
	}
	s.metrics.Login(metrics.MethodPassword, metrics.OutcomeSuccess)
	return user, nil
}

// LoginWithToken resolves a previously issued token to its live identity.
func (s *AuthService) LoginWithToken(ctx context.Context, token string) (*model.User, error) {
	user, err := s.identityFromToken(ctx, token)
	if err != nil {
		if errors.Is(err, errBadToken) {
			s.metrics.Login(metrics.MethodToken, metrics.OutcomeFailure)
		}
		return nil, err
	}
	s.metrics.Login(metrics.MethodToken, metrics.OutcomeSuccess)
	return user, nil
}

// ResolveBearer maps an Authorization header value to an identity. The
// value may carry a "Bearer " prefix or be the bare token.
func (s *AuthService) ResolveBearer(ctx context.Context, header string) (*model.User, error) {
	token := strings.TrimSpace(header)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.identityFromToken(ctx, token)
	if err != nil {
		if errors.Is(err, errBadToken) {
			return nil, common.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) IssueToken(user *model.User) (string, error) {
	token, err := s.codec.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func (s *AuthService) identityFromToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		result := metrics.OutcomeInvalid
		if errors.Is(err, security.ErrTokenExpired) {
			result = metrics.OutcomeExpired
		}
		s.metrics.TokenVerified(result)
		s.logger.Debug(ctx, "token rejected", "reason", result)
		return nil, errBadToken
	}

	id, err := security.SubjectID(claims)
	if err != nil {
		s.metrics.TokenVerified(metrics.OutcomeInvalid)
		return nil, errBadToken
	}
	s.metrics.TokenVerified(metrics.OutcomeSuccess)

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Debug(ctx, "token subject no longer exists", "user_id", id, "jti", claims.ID)
			return nil, errBadToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
