package authorization

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"gastmanager/domain"
	"gastmanager/errors"
)

type claimsKey struct{}

// ContextWithClaims attaches decoded claims to a request context.
func ContextWithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by Authenticate.
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*domain.Claims)
	return claims, ok
}

// Authenticate rejects requests without a valid token in the credential
// header and attaches the decoded principal to the request context.
func Authenticate(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get(TokenHeader)
			if tokenString == "" {
				http.Error(rw, errors.NoTokenError, http.StatusUnauthorized)
				return
			}

			claims, err := VerifyToken(tokenString)
			if err != nil {
				logger.Warnf("rejected token on %s %s: %s", r.Method, r.URL.Path, err)
				http.Error(rw, errors.InvalidTokenError, http.StatusUnauthorized)
				return
			}

			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}
