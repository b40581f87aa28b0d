package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FailureKind identifies why a request attempt failed.
type FailureKind int

const (
	// KindNone marks a successful attempt.
	KindNone FailureKind = iota
	// KindTimeout marks an attempt that exceeded the per-request deadline.
	KindTimeout
	// KindConnectionFailed marks a transport-level failure (DNS, dial, TLS).
	KindConnectionFailed
	// KindHTTPStatus marks a well-formed response outside the 2xx range.
	KindHTTPStatus
)

// Outcome is the classified result of one completed request attempt.
// It is created once per attempt and folded into the Collector exactly once.
type Outcome struct {
	Kind       FailureKind
	StatusCode int
	Duration   time.Duration
}

// Success reports whether the attempt completed with a 2xx response.
func (o Outcome) Success() bool {
	return o.Kind == KindNone
}

// Label returns the error-stats key for a failed outcome, or "" for a success.
func (o Outcome) Label() string {
	switch o.Kind {
	case KindTimeout:
		return "timeout"
	case KindConnectionFailed:
		return "connection_failed"
	case KindHTTPStatus:
		return StatusLabel(o.StatusCode)
	default:
		return ""
	}
}

// Classify maps a raw execution result to an Outcome. A nil error with a
// status in [200, 299] is a success; any other status is an HTTP failure.
// Deadline errors classify as timeouts, everything else at the transport
// level as a connection failure.
func Classify(statusCode int, err error, latency time.Duration) Outcome {
	if err != nil {
		if isTimeout(err) {
			return Outcome{Kind: KindTimeout, Duration: latency}
		}
		return Outcome{Kind: KindConnectionFailed, Duration: latency}
	}
	if statusCode >= 200 && statusCode <= 299 {
		return Outcome{Kind: KindNone, StatusCode: statusCode, Duration: latency}
	}
	return Outcome{Kind: KindHTTPStatus, StatusCode: statusCode, Duration: latency}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// StatusLabel renders an HTTP status code as "<code>_<snake_case_reason>",
// e.g. 500 becomes "500_internal_server_error". Codes without a registered
// reason phrase render as the bare numeric code.
func StatusLabel(code int) string {
	phrase := http.StatusText(code)
	if phrase == "" {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code) + "_" + snakeCase(phrase)
}

func snakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
