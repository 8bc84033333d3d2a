package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

func IsRetryableHTTPStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

var retryHintRe = regexp.MustCompile(`retry in ([\d.]+)s`)

// RetryAfterDuration picks a sleep for a retryable failure: the Retry-After
// header when present, else a "retry in <n>s" hint in the error body, else
// the caller's backoff, clamped to max.
func RetryAfterDuration(resp *http.Response, err error, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, aErr := strconv.Atoi(ra); aErr == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if sleepFor == fallback && err != nil {
		if m := retryHintRe.FindStringSubmatch(err.Error()); len(m) == 2 {
			if secs, pErr := strconv.ParseFloat(m[1], 64); pErr == nil && secs > 0 {
				sleepFor = time.Duration(secs*float64(time.Second)) + time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

func JitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}
