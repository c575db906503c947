package ai

import (
	"context"
	"fmt"
	"time"
)

// Summarizer turns the aggregated stats block into an analyst-style report.
type Summarizer interface {
	Analyze(ctx context.Context, stats string) (string, error)
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

type QuotaError struct{}

func (QuotaError) Error() string { return "quota exhausted" }
