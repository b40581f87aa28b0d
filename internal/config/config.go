package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Format selects how the CLI renders the final report.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Header is one name/value pair. Order is preserved and duplicate names are
// allowed, matching what goes on the wire.
type Header struct {
	Name  string
	Value string
}

// Config describes a single load test run. It is immutable once a run starts.
type Config struct {
	URL         string        `mapstructure:"url"`
	Method      string        `mapstructure:"method"`
	Requests    int           `mapstructure:"requests"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Headers     []Header      `mapstructure:"-"`
	Body        string        `mapstructure:"body"`
	Rate        int           `mapstructure:"rate"`
	Format      string        `mapstructure:"format"`
	LogErrors   bool          `mapstructure:"log_errors"`
	ConfigFile  string        `mapstructure:"-"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls the optional OTLP trace export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != ""
}

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// bodyMethods are the methods a request body is attached for.
var bodyMethods = map[string]bool{
	"POST":  true,
	"PUT":   true,
	"PATCH": true,
}

// AcceptsBody reports whether the configured method carries a request body.
func (c *Config) AcceptsBody() bool {
	return bodyMethods[strings.ToUpper(c.Method)]
}

// ValidationError aggregates every configuration issue found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return "invalid configuration: " + strings.Join(e.issues, "; ")
}

// Validate checks the configuration before any dispatch. A failed validation
// is a configuration error: it surfaces synchronously and is never counted as
// a failed request.
func (c *Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.URL)
	if target == "" {
		issues = append(issues, "url is required")
	} else {
		parsed, err := url.Parse(target)
		switch {
		case err != nil:
			issues = append(issues, fmt.Sprintf("invalid url: %v", err))
		case !parsed.IsAbs():
			issues = append(issues, fmt.Sprintf("url %q must be absolute", target))
		case parsed.Scheme != "http" && parsed.Scheme != "https":
			issues = append(issues, fmt.Sprintf("unsupported url scheme %q", parsed.Scheme))
		case parsed.Host == "":
			issues = append(issues, fmt.Sprintf("url %q has no host", target))
		}
	}

	if !allowedMethods[strings.ToUpper(c.Method)] {
		issues = append(issues, fmt.Sprintf("unsupported method %q", c.Method))
	}
	if c.Requests < 1 {
		issues = append(issues, fmt.Sprintf("requests must be at least 1, got %d", c.Requests))
	}
	if c.Concurrency < 1 {
		issues = append(issues, fmt.Sprintf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Timeout <= 0 {
		issues = append(issues, fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Rate < 0 {
		issues = append(issues, fmt.Sprintf("rate must not be negative, got %d", c.Rate))
	}
	if c.Format != "" && c.Format != FormatText && c.Format != FormatJSON {
		issues = append(issues, fmt.Sprintf("format must be %q or %q, got %q", FormatText, FormatJSON, c.Format))
	}
	for _, h := range c.Headers {
		if strings.TrimSpace(h.Name) == "" {
			issues = append(issues, "header name must not be empty")
		}
		if strings.ContainsAny(h.Name, "\r\n") || strings.ContainsAny(h.Value, "\r\n") {
			issues = append(issues, fmt.Sprintf("header %q must not contain newlines", h.Name))
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// ParseHeaders parses a comma-separated list of "name:value" pairs. Values
// may contain further colons; only the first one splits. Duplicates are kept
// in the order given.
func ParseHeaders(s string) ([]Header, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var headers []Header
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q: expected name:value", pair)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid header %q: empty name", pair)
		}
		headers = append(headers, Header{Name: name, Value: strings.TrimSpace(value)})
	}
	return headers, nil
}
