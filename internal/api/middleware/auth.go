package middleware

import (
	"context"
	"errors"
	"net/http"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"
	"blog_api/internal/platform/logging"
	"blog_api/internal/platform/metrics"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UserCtxKey contextKey = "user"

const forbiddenMessage = "You are forbidden to view this page."

// BearerResolver turns an Authorization header value into an identity.
type BearerResolver interface {
	ResolveBearer(ctx context.Context, header string) (*model.User, error)
}

// Authenticator guards the routes it wraps. Without a usable token the
// request is answered with 403 and the next handler never runs.
func Authenticator(resolver BearerResolver, responder *common.Responder, logger logging.Logger, m *metrics.AuthMetrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := jwtauth.TokenFromHeader(r)
			if credential == "" {
				credential = r.Header.Get("Authorization")
			}
			if credential == "" {
				m.Gate(metrics.OutcomeMissing)
				responder.Error(w, http.StatusForbidden, forbiddenMessage)
				return
			}

			user, err := resolver.ResolveBearer(r.Context(), credential)
			if err != nil {
				if !errors.Is(err, common.ErrUnauthenticated) {
					logger.Error(r.Context(), "resolve bearer failed", "error", err)
					responder.FromError(w, err)
					return
				}
				m.Gate(metrics.OutcomeInvalid)
				responder.Error(w, http.StatusForbidden, forbiddenMessage)
				return
			}

			m.Gate(metrics.OutcomeSuccess)
			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity stored by Authenticator.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok && user != nil
}
