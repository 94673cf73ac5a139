package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"blog_api/internal/common"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/model"
	"blog_api/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc    *AuthService
	users  *fakeUserRepo
	hasher *plainHasher
	codec  *security.TokenCodec
	now    time.Time
	m      *metrics.AuthMetrics
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newFakeUserRepo(),
		hasher: &plainHasher{},
		now:    time.Unix(1_700_000_000, 0),
		m:      metrics.New("test"),
	}
	f.codec = security.NewTokenCodec([]byte("test-secret"), security.WithClock(func() time.Time { return f.now }))
	f.svc = NewAuthService(f.users, f.hasher, f.codec, 9999*time.Second, nil, f.m)

	require.NoError(t, f.users.Create(context.Background(), &model.User{
		Username:       "alice",
		HashedPassword: "hashed:wonderland",
		Name:           "Alice",
		Email:          "alice@example.com",
	}))
	return f
}

func strPtr(s string) *string { return &s }

func TestLogin_Password(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), LoginRequest{
		Username: strPtr("alice"),
		Password: strPtr("wonderland"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "Alice", resp.Name)
	assert.Equal(t, "alice@example.com", resp.Email)

	id, err := f.codec.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestLogin_WrongPasswordAndUnknownUserFailIdentically(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, wrongPass := f.svc.Login(ctx, LoginRequest{Username: strPtr("alice"), Password: strPtr("nope")})
	checksAfterWrong := f.hasher.checks
	_, unknown := f.svc.Login(ctx, LoginRequest{Username: strPtr("bob"), Password: strPtr("nope")})

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.True(t, errors.Is(wrongPass, common.ErrInvalidCredentials))
	assert.True(t, errors.Is(unknown, common.ErrInvalidCredentials))
	assert.Equal(t, wrongPass.Error(), unknown.Error())
	assert.Equal(t, common.HTTPStatusFromError(wrongPass), common.HTTPStatusFromError(unknown))
	assert.Equal(t, "Username or password is invalid.", common.PublicMessage(unknown))
	assert.Equal(t, checksAfterWrong+1, f.hasher.checks, "unknown user still runs one hash check")

	expected := `
# HELP test_login_attempts_total Login attempts by method and outcome.
# TYPE test_login_attempts_total counter
test_login_attempts_total{method="password",outcome="failure"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(f.m.Registry(), strings.NewReader(expected), "test_login_attempts_total"))
}

func TestLogin_UnknownUserDummyHash(t *testing.T) {
	ctx := context.Background()

	t.Run("computed once at construction", func(t *testing.T) {
		f := newAuthFixture(t)
		require.Equal(t, 1, f.hasher.hashes)

		for i := 0; i < 2; i++ {
			_, err := f.svc.LoginWithPassword(ctx, "nobody", "pw")
			require.ErrorIs(t, err, common.ErrInvalidCredentials)
		}
		assert.Equal(t, 1, f.hasher.hashes)
		assert.Equal(t, "hashed:blog-api-unknown-user", f.hasher.lastCheck)
	})

	t.Run("hasher failure falls back to a bcrypt digest", func(t *testing.T) {
		hasher := &plainHasher{hashErr: errors.New("entropy exhausted")}
		svc := NewAuthService(newFakeUserRepo(), hasher, security.NewTokenCodec([]byte("k")), time.Hour, nil, nil)

		_, err := svc.LoginWithPassword(ctx, "nobody", "pw")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
		require.NotEmpty(t, hasher.lastCheck)
		cost, err := bcrypt.Cost([]byte(hasher.lastCheck))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}

func TestLogin_Token(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.codec.Issue(1, time.Hour)
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	resp, err := f.svc.Login(ctx, LoginRequest{Token: strPtr(first)})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEqual(t, first, resp.Token, "token login issues a fresh token")

	claims, err := f.codec.Parse(resp.Token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(f.now.Add(9999*time.Second)))
}

func TestLogin_TokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	expired, err := f.codec.Issue(1, time.Second)
	require.NoError(t, err)
	orphan, err := f.codec.Issue(42, time.Hour)
	require.NoError(t, err)
	f.now = f.now.Add(2 * time.Second)

	for name, tok := range map[string]string{
		"expired":      expired,
		"garbage":      "not-a-token",
		"deleted user": orphan,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, LoginRequest{Token: strPtr(tok)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidOrExpiredToken))
			assert.Equal(t, "Authorization token is invalid or expired.", common.PublicMessage(err))
		})
	}
}

func TestLogin_BadRequest(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := map[string]LoginRequest{
		"empty":            {},
		"username only":    {Username: strPtr("alice")},
		"blank password":   {Username: strPtr("alice"), Password: strPtr("")},
		"token and creds":  {Token: strPtr("x"), Username: strPtr("alice"), Password: strPtr("wonderland")},
		"blank token only": {Token: strPtr("")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, req)
			assert.True(t, errors.Is(err, common.ErrBadRequest))
		})
	}
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	f.users.err = errors.New("connection refused")

	_, err := f.svc.Login(context.Background(), LoginRequest{Username: strPtr("alice"), Password: strPtr("wonderland")})
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrInvalidCredentials))
	assert.Equal(t, 500, common.HTTPStatusFromError(err))
}

func TestResolveBearer(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tok, err := f.codec.Issue(1, time.Hour)
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + tok, "bearer " + tok, tok} {
		user, err := f.svc.ResolveBearer(ctx, header)
		require.NoError(t, err, header)
		assert.Equal(t, int64(1), user.ID)
	}

	_, err = f.svc.ResolveBearer(ctx, "")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	_, err = f.svc.ResolveBearer(ctx, "Bearer ")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	_, err = f.svc.ResolveBearer(ctx, "Bearer garbage")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.svc.ResolveBearer(ctx, "Bearer "+tok)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestResolveBearer_DeletedIdentity(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tok, err := f.codec.Issue(1, time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(ctx, 1))

	_, err = f.svc.ResolveBearer(ctx, tok)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}
