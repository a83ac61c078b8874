package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type fakeCounterStore struct {
	counts map[string]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[string]int64)}
}

func (f *fakeCounterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func limitedRequest(memberID, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/members/"+memberID+"/uniforms", nil)
	req.RemoteAddr = ip + ":51234"
	rc := chi.NewRouteContext()
	rc.URLParams.Add("memberID", memberID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func runLimited(mw func(http.Handler) http.Handler, req *http.Request) *httptest.ResponseRecorder {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	return rec
}

func TestUpdateRateLimitAllowsUnderLimit(t *testing.T) {
	policy := NewUpdateRateLimitPolicy("update-test", time.Minute, 5, 3)
	mw := UpdateRateLimit(policy, newFakeCounterStore(), nil)

	for i := 0; i < 3; i++ {
		rec := runLimited(mw, limitedRequest("member-1", "10.0.0.1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}
}

func TestUpdateRateLimitBlocksMemberOverLimit(t *testing.T) {
	policy := NewUpdateRateLimitPolicy("update-test", time.Minute, 100, 2)
	store := newFakeCounterStore()
	mw := UpdateRateLimit(policy, store, nil)

	for i := 0; i < 2; i++ {
		if rec := runLimited(mw, limitedRequest("member-1", "10.0.0.1")); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}

	rec := runLimited(mw, limitedRequest("member-1", "10.0.0.1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}

	// A different member from the same IP is still fine.
	if rec := runLimited(mw, limitedRequest("member-2", "10.0.0.1")); rec.Code != http.StatusOK {
		t.Fatalf("other member should pass, got %d", rec.Code)
	}
}

func TestUpdateRateLimitBlocksIPOverLimit(t *testing.T) {
	policy := NewUpdateRateLimitPolicy("update-test", time.Minute, 2, 0)
	mw := UpdateRateLimit(policy, newFakeCounterStore(), nil)

	for i := 0; i < 2; i++ {
		if rec := runLimited(mw, limitedRequest("member-1", "10.0.0.9")); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}

	// Fanning out across members does not reset the per-IP counter.
	rec := runLimited(mw, limitedRequest("member-3", "10.0.0.9"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
}

func TestUpdateRateLimitHonorsForwardedFor(t *testing.T) {
	policy := NewUpdateRateLimitPolicy("update-test", time.Minute, 1, 0)
	store := newFakeCounterStore()
	mw := UpdateRateLimit(policy, store, nil)

	req := limitedRequest("member-1", "10.0.0.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if rec := runLimited(mw, req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	if _, ok := store.counts["rl:ip:update-test:203.0.113.7"]; !ok {
		t.Fatalf("expected counter keyed by forwarded client ip, have %v", store.counts)
	}
}

func TestUpdateRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewUpdateRateLimitPolicy("update-test", 0, 5, 5)
	store := newFakeCounterStore()
	mw := UpdateRateLimit(policy, store, nil)

	for i := 0; i < 20; i++ {
		if rec := runLimited(mw, limitedRequest("member-1", "10.0.0.1")); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("disabled policy must not touch the store, have %v", store.counts)
	}
}

func TestUpdateRateLimitNilStorePassesThrough(t *testing.T) {
	policy := NewUpdateRateLimitPolicy("update-test", time.Minute, 1, 1)
	mw := UpdateRateLimit(policy, nil, nil)

	for i := 0; i < 5; i++ {
		if rec := runLimited(mw, limitedRequest("member-1", "10.0.0.1")); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}
}
