package main

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ihbobul/lode/internal/config"
	"github.com/ihbobul/lode/internal/engine"
)

const defaultTimeoutMs = 5000

// LoadTestRequest is the JSON body accepted by POST /load-test.
type LoadTestRequest struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	Requests    int               `json:"requests"`
	Concurrency int               `json:"concurrency"`
	TimeoutMs   int64             `json:"timeout_ms"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
}

// APIHandler serves the load testing endpoints.
type APIHandler struct {
	logger zerolog.Logger
}

// HealthCheck implements GET /health.
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version,
	})
}

// RunLoadTest implements POST /load-test. The run executes synchronously and
// the final report is the response body.
func (h *APIHandler) RunLoadTest(c *gin.Context) {
	var req LoadTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	if parsed, err := url.Parse(req.URL); err != nil || !parsed.IsAbs() {
		h.logger.Warn().Str("url", req.URL).Msg("invalid URL provided")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid URL",
			"details": "url must be an absolute http(s) URL",
		})
		return
	}

	for name := range req.Headers {
		if !validHeaderName(name) {
			h.logger.Warn().Str("header", name).Msg("invalid header name provided")
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid header name",
				"details": "header name " + name + " contains invalid characters",
			})
			return
		}
	}

	cfg := toConfig(req)
	e, err := engine.New(cfg)
	if err != nil {
		h.logger.Warn().Err(err).Msg("rejected load test config")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid load test configuration",
			"details": err.Error(),
		})
		return
	}

	h.logger.Info().
		Str("url", cfg.URL).
		Str("method", cfg.Method).
		Int("requests", cfg.Requests).
		Int("concurrency", cfg.Concurrency).
		Msg("starting load test")

	rep, err := e.Run(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("load test aborted")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "load test aborted",
			"details": err.Error(),
		})
		return
	}

	h.logger.Info().
		Str("id", rep.ID).
		Int64("total", rep.TotalRequests).
		Int64("failed", rep.FailedRequests).
		Msg("load test completed")

	c.JSON(http.StatusOK, rep)
}

// toConfig maps an API request onto a run configuration. Header names are
// sorted so a map payload yields a deterministic header order.
func toConfig(req LoadTestRequest) *config.Config {
	timeoutMs := req.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	headers := make([]config.Header, 0, len(names))
	for _, name := range names {
		headers = append(headers, config.Header{Name: name, Value: req.Headers[name]})
	}

	return &config.Config{
		URL:         req.URL,
		Method:      method,
		Requests:    req.Requests,
		Concurrency: req.Concurrency,
		Timeout:     time.Duration(timeoutMs) * time.Millisecond,
		Headers:     headers,
		Body:        req.Body,
	}
}

func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
