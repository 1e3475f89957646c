package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"lobby":{"imageUrl":"x","hotspots":[]}}`)
		}))
		defer srv.Close()

		body, err := Fetch(context.Background(), srv.Client(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(body) == 0 {
			t.Error("empty body")
		}
	})

	t.Run("retriesServerErrors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, "{}")
		}))
		defer srv.Close()

		body, err := Fetch(context.Background(), srv.Client(), srv.URL)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(body) != "{}" {
			t.Errorf("body = %q", body)
		}
		if calls.Load() != 3 {
			t.Errorf("calls = %d, want 3", calls.Load())
		}
	})

	t.Run("clientErrorIsPermanent", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := Fetch(context.Background(), srv.Client(), srv.URL); err == nil {
			t.Fatal("Fetch succeeded on 404")
		}
		if calls.Load() != 1 {
			t.Errorf("404 retried: %d calls", calls.Load())
		}
	})

	t.Run("nilClientUsesDefault", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "ok")
		}))
		defer srv.Close()

		if _, err := Fetch(context.Background(), nil, srv.URL); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	})
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("succeedsFirstTry", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("retriesRetryable", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("transient"))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Retry: %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("permanentAbortsImmediately", func(t *testing.T) {
		calls := 0
		permanent := errors.New("bad request")
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) {
			t.Errorf("err = %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("exhaustedReturnsLast", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return Retryable(fmt.Errorf("attempt %d", calls))
		})
		if err == nil || err.Error() != "attempt 2" {
			t.Errorf("err = %v, want attempt 2", err)
		}
	})

	t.Run("contextCancelsBackoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Retry(ctx, 3, time.Minute, func() error {
			return Retryable(errors.New("transient"))
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
