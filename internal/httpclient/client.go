package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ihbobul/lode/internal/config"
)

// RequestBuilder constructs one HTTP request per attempt from an immutable
// configuration. Safe for concurrent use.
type RequestBuilder struct {
	method  string
	target  string
	headers []config.Header
	body    []byte
}

// NewRequestBuilder validates the request-shaping parts of the config and
// returns a builder. The body is attached only for methods that accept one.
func NewRequestBuilder(cfg *config.Config) (*RequestBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target := strings.TrimSpace(cfg.URL)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodGet
	}

	headers := make([]config.Header, 0, len(cfg.Headers))
	for _, h := range cfg.Headers {
		name := strings.TrimSpace(h.Name)
		if name == "" || strings.ContainsAny(name, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", h.Name)
		}
		if strings.ContainsAny(h.Value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", name)
		}
		headers = append(headers, config.Header{
			Name:  http.CanonicalHeaderKey(name),
			Value: h.Value,
		})
	}

	var body []byte
	if cfg.Body != "" && cfg.AcceptsBody() {
		body = []byte(cfg.Body)
	}

	return &RequestBuilder{
		method:  method,
		target:  target,
		headers: headers,
		body:    body,
	}, nil
}

// Build creates a fresh request bound to ctx. Header order and duplicates
// from the config are preserved.
func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if b.body != nil {
		reader = bytes.NewReader(b.body)
	}

	req, err := http.NewRequestWithContext(ctx, b.method, b.target, reader)
	if err != nil {
		return nil, err
	}

	for _, h := range b.headers {
		req.Header.Add(h.Name, h.Value)
	}

	if b.body != nil {
		req.ContentLength = int64(len(b.body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b.body)), nil
		}
	}

	return req, nil
}

// NewClient returns an HTTP client tuned for high request volume. The client
// carries no global timeout; every attempt races its own deadline via
// context so one slow request never affects its siblings.
func NewClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
	}
}
