package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ihbobul/lode/internal/httpclient"
	"github.com/ihbobul/lode/internal/metrics"
	"github.com/ihbobul/lode/internal/runner"
)

func newRequester(t *testing.T, url string, timeout time.Duration) (*httpclient.Requester, *metrics.Collector) {
	t.Helper()
	cfg := baseConfig()
	cfg.URL = url
	cfg.Timeout = timeout
	b, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	collector := metrics.NewCollector()
	return httpclient.NewRequester(httpclient.NewClient(), b, collector, timeout, nil), collector
}

func TestRequesterSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, collector := newRequester(t, srv.URL, time.Second)
	if err := req.Do(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := collector.Snapshot(time.Second)
	if snap.Successes != 1 || snap.Failures != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestRequesterHTTPFailureReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, collector := newRequester(t, srv.URL, time.Second)
	err := req.Do(context.Background())
	var httpErr *runner.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Fatalf("expected HTTPError 503, got %v", err)
	}

	snap := collector.Snapshot(time.Second)
	if snap.Errors["503_service_unavailable"] != 1 {
		t.Fatalf("unexpected tally: %v", snap.Errors)
	}
}

func TestRequesterTimeoutCancelsAttempt(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	req, collector := newRequester(t, srv.URL, 100*time.Millisecond)

	begin := time.Now()
	err := req.Do(context.Background())
	elapsed := time.Since(begin)

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed > time.Second {
		t.Fatalf("timeout did not cancel promptly: %s", elapsed)
	}
	<-started

	snap := collector.Snapshot(time.Second)
	if snap.Errors["timeout"] != 1 {
		t.Fatalf("expected timeout outcome, got %v", snap.Errors)
	}
}

func TestRequesterConnectionRefused(t *testing.T) {
	req, collector := newRequester(t, "http://127.0.0.1:1", time.Second)
	if err := req.Do(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}

	snap := collector.Snapshot(time.Second)
	if snap.Errors["connection_failed"] != 1 {
		t.Fatalf("expected connection_failed outcome, got %v", snap.Errors)
	}
}

func TestRequesterRecordsExactlyOncePerAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	req, collector := newRequester(t, srv.URL, time.Second)
	for i := 0; i < 7; i++ {
		_ = req.Do(context.Background())
	}

	snap := collector.Snapshot(time.Second)
	if snap.Total != 7 {
		t.Fatalf("expected 7 recorded outcomes, got %d", snap.Total)
	}
	if snap.Errors["418_i_m_a_teapot"] != 7 {
		t.Fatalf("unexpected tally: %v", snap.Errors)
	}
}
