package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrRateLimited is matched by errors.Is for every RateLimitedError.
var ErrRateLimited = errors.New("rate limited")

// RateLimitedError is returned once the backoff attempts are used up.
type RateLimitedError struct {
	Attempts int
	Err      error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf(
		"rate limit exceeded after %d attempts. This is a temporary issue. Please wait 30 seconds and try again.",
		e.Attempts,
	)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// IsRateLimited reports whether err is a provider rate-limit signal: HTTP 429
// or a resource-exhaustion status. Provider error types are checked first,
// then the message. genai returns APIError by value, so both forms are checked.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var gv genai.APIError
	if errors.As(err, &gv) && isRateLimitStatus(gv.Code, gv.Status) {
		return true
	}
	var ge *genai.APIError
	if errors.As(err, &ge) && ge != nil && isRateLimitStatus(ge.Code, ge.Status) {
		return true
	}

	var oe *openai.APIError
	if errors.As(err, &oe) && oe.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var re *openai.RequestError
	if errors.As(err, &re) && re.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func isRateLimitStatus(code int, status string) bool {
	return code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED"
}
