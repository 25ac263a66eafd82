package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore { return &memStore{values: make(map[string]string)} }

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	var calls int32
	handler := Idempotency(newMemStore())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set("Idempotency-Key", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if body := rec.Body.String(); body != `{"id":1}` {
			t.Fatalf("request %d: body %q", i, body)
		}
	}

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotencyBypass(t *testing.T) {
	var calls int32
	handler := Idempotency(newMemStore())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))

	// No key: every request reaches the handler.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	}
	// Non-POST with a key: also not cached.
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Idempotency-Key", "abc-123")
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if calls != 4 {
		t.Fatalf("handler ran %d times, want 4", calls)
	}
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	var calls int32
	handler := Idempotency(newMemStore())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set("Idempotency-Key", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}

	if calls != 2 {
		t.Fatalf("conflict responses must not be replayed, handler ran %d times", calls)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Errorf("request id = %q, want the client's", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	var reachedNext bool
	ready := func(context.Context) error { return nil }
	handler := Health(ready)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reachedNext = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || reachedNext {
		t.Fatalf("healthz: status %d, reachedNext %v", rec.Code, reachedNext)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	if !reachedNext {
		t.Error("non-health paths should pass through")
	}
}

func TestHealthEndpointDegraded(t *testing.T) {
	ready := func(context.Context) error { return context.DeadlineExceeded }
	handler := Health(ready)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
