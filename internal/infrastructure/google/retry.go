package google

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/retry"
	"google.golang.org/api/googleapi"
)

// RetryPolicy is applied to every Gmail and Sheets API call.
var RetryPolicy = retry.Policy{
	Retries:   3,
	Delay:     500 * time.Millisecond,
	MaxDelay:  5 * time.Second,
	Retryable: Retryable,
}

// Retryable reports whether an API error is worth retrying: rate limits,
// server errors and transport failures.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	return true
}
