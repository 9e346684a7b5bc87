package book

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		baseURL: srv.URL,
		http:    srv.Client(),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func TestInTheoryThreshold(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{`{"white":4,"draws":3,"black":3}`, true},  // exactly 10
		{`{"white":4,"draws":3,"black":2}`, false}, // 9 games
		{`{"white":0,"draws":0,"black":0}`, false},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tc.body))
		}))
		c := testClient(srv)
		got, err := c.InTheory(context.Background(), []string{"e2e4", "e7e5"})
		srv.Close()
		if err != nil {
			t.Fatalf("InTheory: %v", err)
		}
		if got != tc.want {
			t.Errorf("body %s: got %v, want %v", tc.body, got, tc.want)
		}
	}
}

func TestInTheoryQueryShape(t *testing.T) {
	var gotPlay, gotModes string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPlay = r.URL.Query().Get("play")
		gotModes = r.URL.Query().Get("modes")
		w.Write([]byte(`{"white":100,"draws":50,"black":80}`))
	}))
	defer srv.Close()

	c := testClient(srv)
	if _, err := c.InTheory(context.Background(), []string{"d2d4", "g8f6", "c2c4"}); err != nil {
		t.Fatal(err)
	}
	if gotPlay != "d2d4,g8f6,c2c4" {
		t.Errorf("play = %q", gotPlay)
	}
	if gotModes != "rated" {
		t.Errorf("modes = %q", gotModes)
	}
}

func TestInTheoryRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"white":20,"draws":0,"black":0}`))
	}))
	defer srv.Close()

	c := testClient(srv)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got, err := c.InTheory(ctx, []string{"e2e4"})
	if err != nil {
		t.Fatalf("InTheory: %v", err)
	}
	if !got {
		t.Error("got false after recovery, want true")
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestInTheoryGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv)
	if _, err := c.InTheory(context.Background(), []string{"e2e4"}); err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if calls.Load() != maxRetries+1 {
		t.Errorf("calls = %d, want %d", calls.Load(), maxRetries+1)
	}
}

func TestInTheoryHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if _, err := c.InTheory(ctx, []string{"e2e4"}); err == nil {
		t.Fatal("want error with cancelled context")
	}
	// Must not sit through the retry backoff once cancelled.
	if time.Since(start) > retryBackoff {
		t.Error("cancellation did not short-circuit the backoff")
	}
}
