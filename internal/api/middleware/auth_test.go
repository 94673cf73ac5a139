package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	user *model.User
	err  error
	got  string
}

func (s *stubResolver) ResolveBearer(_ context.Context, header string) (*model.User, error) {
	s.got = header
	return s.user, s.err
}

func serve(t *testing.T, resolver BearerResolver, header string) (*httptest.ResponseRecorder, bool, *model.User) {
	t.Helper()
	var called bool
	var seen *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	h := Authenticator(resolver, common.NewResponder("blog-api"), nil, nil)(next)
	req := httptest.NewRequest(http.MethodPost, "/v1/posts", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, called, seen
}

func TestAuthenticator_Passes(t *testing.T) {
	alice := &model.User{ID: 1, Username: "alice"}
	res := &stubResolver{user: alice}

	rec, called, seen := serve(t, res, "Bearer abc.def.ghi")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
	assert.Equal(t, alice, seen)
	assert.Equal(t, "abc.def.ghi", res.got)

	_, _, _ = serve(t, res, "abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", res.got, "bare tokens are accepted too")
}

func TestAuthenticator_Rejects(t *testing.T) {
	cases := map[string]struct {
		resolver BearerResolver
		header   string
	}{
		"missing header": {&stubResolver{user: &model.User{ID: 1}}, ""},
		"invalid token":  {&stubResolver{err: common.ErrUnauthenticated}, "Bearer nope"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, called, _ := serve(t, tc.resolver, tc.header)
			assert.False(t, called)
			assert.Equal(t, http.StatusForbidden, rec.Code)

			var body common.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "blog-api", body.Name)
			assert.Equal(t, "Forbidden", body.Status)
			assert.Equal(t, 403, body.Code)
			assert.Equal(t, "You are forbidden to view this page.", body.Message)
		})
	}
}

func TestAuthenticator_StoreFailure(t *testing.T) {
	rec, called, _ := serve(t, &stubResolver{err: errors.New("db down")}, "Bearer x")
	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}
