package metrics_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/ihbobul/lode/internal/metrics"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "deadline exceeded" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

func TestClassifySuccessRange(t *testing.T) {
	for _, code := range []int{200, 201, 204, 299} {
		o := metrics.Classify(code, nil, time.Millisecond)
		if !o.Success() {
			t.Errorf("status %d should classify as success", code)
		}
		if o.Label() != "" {
			t.Errorf("success label should be empty, got %q", o.Label())
		}
	}
}

func TestClassifyHTTPFailure(t *testing.T) {
	cases := []struct {
		code  int
		label string
	}{
		{404, "404_not_found"},
		{500, "500_internal_server_error"},
		{503, "503_service_unavailable"},
		{199, "199"},
		{599, "599"},
	}
	for _, tc := range cases {
		o := metrics.Classify(tc.code, nil, time.Millisecond)
		if o.Success() {
			t.Errorf("status %d should classify as failure", tc.code)
		}
		if o.Kind != metrics.KindHTTPStatus {
			t.Errorf("status %d: expected HTTP status kind, got %v", tc.code, o.Kind)
		}
		if got := o.Label(); got != tc.label {
			t.Errorf("status %d: expected label %q, got %q", tc.code, tc.label, got)
		}
	}
}

func TestClassifyTimeout(t *testing.T) {
	errs := []error{
		context.DeadlineExceeded,
		&url.Error{Op: "Get", URL: "http://example.com", Err: fakeTimeoutErr{}},
	}
	for _, err := range errs {
		o := metrics.Classify(0, err, 200*time.Millisecond)
		if o.Kind != metrics.KindTimeout {
			t.Errorf("error %v: expected timeout, got %v", err, o.Kind)
		}
		if o.Label() != "timeout" {
			t.Errorf("expected label timeout, got %q", o.Label())
		}
	}
}

func TestClassifyConnectionFailed(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "http://localhost:1", Err: errors.New("connection refused")}
	o := metrics.Classify(0, err, 5*time.Millisecond)
	if o.Kind != metrics.KindConnectionFailed {
		t.Fatalf("expected connection failure, got %v", o.Kind)
	}
	if o.Label() != "connection_failed" {
		t.Fatalf("expected label connection_failed, got %q", o.Label())
	}
}

func TestStatusLabelSnakeCasing(t *testing.T) {
	cases := map[int]string{
		418: "418_i_m_a_teapot",
		505: "505_http_version_not_supported",
		429: "429_too_many_requests",
	}
	for code, want := range cases {
		if got := metrics.StatusLabel(code); got != want {
			t.Errorf("code %d: expected %q, got %q", code, want, got)
		}
	}
}
