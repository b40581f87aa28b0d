package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ihbobul/lode/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		URL:         "https://example.com/api",
		Method:      "GET",
		Requests:    100,
		Concurrency: 10,
		Timeout:     30 * time.Second,
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty url", func(c *config.Config) { c.URL = "" }, "url is required"},
		{"relative url", func(c *config.Config) { c.URL = "example.com/api" }, "absolute"},
		{"bad scheme", func(c *config.Config) { c.URL = "ftp://example.com" }, "scheme"},
		{"bad method", func(c *config.Config) { c.Method = "FETCH" }, "method"},
		{"zero requests", func(c *config.Config) { c.Requests = 0 }, "requests"},
		{"negative requests", func(c *config.Config) { c.Requests = -5 }, "requests"},
		{"zero concurrency", func(c *config.Config) { c.Concurrency = 0 }, "concurrency"},
		{"zero timeout", func(c *config.Config) { c.Timeout = 0 }, "timeout"},
		{"negative rate", func(c *config.Config) { c.Rate = -1 }, "rate"},
		{"bad format", func(c *config.Config) { c.Format = "xml" }, "format"},
		{"newline header", func(c *config.Config) {
			c.Headers = []config.Header{{Name: "X-Bad\r\n", Value: "v"}}
		}, "newlines"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateConcurrencyMayExceedRequests(t *testing.T) {
	cfg := validConfig()
	cfg.Requests = 5
	cfg.Concurrency = 50
	if err := cfg.Validate(); err != nil {
		t.Fatalf("concurrency above requests should be accepted: %v", err)
	}
}

func TestValidateAggregatesIssues(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"url", "method", "requests", "concurrency", "timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("aggregated error missing %q: %v", want, err)
		}
	}
}

func TestAcceptsBody(t *testing.T) {
	for method, want := range map[string]bool{
		"GET": false, "DELETE": false, "POST": true, "PUT": true, "PATCH": true,
	} {
		cfg := validConfig()
		cfg.Method = method
		if got := cfg.AcceptsBody(); got != want {
			t.Errorf("AcceptsBody(%s) = %v, want %v", method, got, want)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	headers, err := config.ParseHeaders("Authorization:Bearer abc,Content-Type:application/json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(headers))
	}
	if headers[0].Name != "Authorization" || headers[0].Value != "Bearer abc" {
		t.Fatalf("unexpected first header: %+v", headers[0])
	}
	if headers[1].Name != "Content-Type" || headers[1].Value != "application/json" {
		t.Fatalf("unexpected second header: %+v", headers[1])
	}
}

func TestParseHeadersKeepsDuplicates(t *testing.T) {
	headers, err := config.ParseHeaders("X-Tag:a,X-Tag:b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(headers) != 2 || headers[0].Value != "a" || headers[1].Value != "b" {
		t.Fatalf("duplicates not preserved in order: %+v", headers)
	}
}

func TestParseHeadersErrors(t *testing.T) {
	for _, bad := range []string{"no-colon", ":empty-name", "ok:v,broken"} {
		if _, err := config.ParseHeaders(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseHeadersEmpty(t *testing.T) {
	headers, err := config.ParseHeaders("")
	if err != nil || headers != nil {
		t.Fatalf("empty input should yield nil, nil; got %v, %v", headers, err)
	}
}
