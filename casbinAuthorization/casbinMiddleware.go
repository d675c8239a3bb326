package casbinAuthorization

import (
	"net/http"

	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"

	"gastmanager/authorization"
	"gastmanager/errors"
)

const roleAnonymous = "anonymous"

func extractRole(r *http.Request) (string, error) {
	tokenString := r.Header.Get(authorization.TokenHeader)
	if tokenString == "" {
		return roleAnonymous, nil
	}

	claims, err := authorization.VerifyToken(tokenString)
	if err != nil {
		return "", err
	}
	return string(claims.Role), nil
}

// CasbinMiddleware gates every route on (role, path, method) against the
// policy file. Unauthenticated callers carry the anonymous role, so a denial
// for them is a missing-credential problem (401), not a scope problem (403).
func CasbinMiddleware(e *casbin.Enforcer, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			role, err := extractRole(r)
			if err != nil {
				logger.Warnf("unauthorized access attempt on %s %s", r.Method, r.URL.Path)
				http.Error(w, errors.InvalidTokenError, http.StatusUnauthorized)
				return
			}

			res, err := e.EnforceSafe(role, r.URL.Path, r.Method)
			if err != nil {
				logger.Errorf("enforce error: %s", err)
				http.Error(w, errors.InvalidTokenError, http.StatusUnauthorized)
				return
			}

			if res {
				next.ServeHTTP(w, r)
				return
			}

			if role == roleAnonymous {
				http.Error(w, errors.NoTokenError, http.StatusUnauthorized)
				return
			}
			logger.Warnf("forbidden %s access on %s %s", role, r.Method, r.URL.Path)
			http.Error(w, "forbidden", http.StatusForbidden)
		}

		return http.HandlerFunc(fn)
	}
}
