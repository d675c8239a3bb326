package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"gastmanager/authorization"
	"gastmanager/domain"
	"gastmanager/errors"
)

// currentUser resolves the authenticated principal to its stored record and
// writes the rejection itself when that fails.
func currentUser(ctx context.Context, access *authorization.AccessControl, span trace.Span, writer http.ResponseWriter) (*domain.User, bool) {
	claims, ok := authorization.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, errors.NoTokenError, http.StatusUnauthorized)
		return nil, false
	}

	user, err := access.CurrentUser(ctx, claims)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, errors.UserNotFound, http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func jsonResponse(payload interface{}, writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
	}
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(rw, h)
	})
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
