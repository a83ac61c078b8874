package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kitstore/uniform-stock-backend/pkg/logger"
)

type contextKey string

const ctxMemberID contextKey = "member_id"

// MemberIDFromContext extracts the member identifier set by routing.
func MemberIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxMemberID).(string); ok {
		return v
	}
	return ""
}

// WithMemberID injects the member identifier into the context for
// downstream handlers and logging.
func WithMemberID(ctx context.Context, memberID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxMemberID, memberID)
}

// MemberContext lifts the memberID route param into the request
// context and the log fields for everything downstream.
func MemberContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			memberID := strings.TrimSpace(chi.URLParam(r, "memberID"))
			ctx := WithMemberID(r.Context(), memberID)
			if logg != nil && memberID != "" {
				ctx = logg.WithMemberID(ctx, memberID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
