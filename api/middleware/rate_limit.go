package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitstore/uniform-stock-backend/api/responses"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
)

// RateLimiterStore is the counter backend for fixed-window throttling.
type RateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// UpdateRateLimitPolicy defines the throttling parameters for the
// reconciling update surface.
type UpdateRateLimitPolicy struct {
	name        string
	window      time.Duration
	ipLimit     int
	memberLimit int
}

// NewUpdateRateLimitPolicy builds a policy with the supplied window and limits.
func NewUpdateRateLimitPolicy(name string, window time.Duration, ipLimit, memberLimit int) UpdateRateLimitPolicy {
	return UpdateRateLimitPolicy{
		name:        strings.ToLower(strings.TrimSpace(name)),
		window:      window,
		ipLimit:     ipLimit,
		memberLimit: memberLimit,
	}
}

func (p UpdateRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.memberLimit > 0)
}

func (p UpdateRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "update"
	}
	return p.name
}

func (p UpdateRateLimitPolicy) ipKey(ip string) string {
	if ip == "" {
		return ""
	}
	return fmt.Sprintf("rl:ip:%s:%s", p.normalizedName(), ip)
}

func (p UpdateRateLimitPolicy) memberKey(memberID string) string {
	if memberID == "" {
		return ""
	}
	return fmt.Sprintf("rl:member:%s:%s", p.normalizedName(), memberID)
}

// UpdateRateLimit enforces per-IP and per-member counters on stock
// mutating endpoints. The per-member counter caps how fast a single
// collection can be churned; the per-IP counter catches misbehaving
// clients fanning out across members.
func UpdateRateLimit(policy UpdateRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if policy.ipLimit > 0 {
				if key := policy.ipKey(ip); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.ipLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "ip", ip, "", count, policy.ipLimit)
						return
					}
				}
			}

			if policy.memberLimit > 0 {
				memberID := chi.URLParam(r, "memberID")
				if key := policy.memberKey(memberID); key != "" {
					if allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.memberLimit)); err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					} else if !allowed {
						respondRateLimited(ctx, logg, w, policy, "member", "", memberID, count, policy.memberLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, store RateLimiterStore, key string, window time.Duration, limit int64) (bool, int64, error) {
	count, err := store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy UpdateRateLimitPolicy, scope, ip, memberID string, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		if ip != "" {
			fields["ip"] = ip
		}
		if memberID != "" {
			fields["member_id"] = memberID
		}
		logCtx := logg.WithFields(ctx, fields)
		logg.Warn(logCtx, "update.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
