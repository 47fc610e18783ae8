// Package pacer derives a safe inter-cycle delay from the exchange's
// published rate-limit metadata.
package pacer

import (
	"time"

	"github.com/pkg/errors"

	"biscabot/internal/domain"
)

// quoteRequestsPerCycle both sides are quoted once per cycle, consuming
// two units of the offer-endpoint budget.
const quoteRequestsPerCycle = 2

// Interval computes the minimum delay between cycles that keeps the bot
// inside the offer-endpoint rate limit.
func Interval(rl domain.RateLimit) (time.Duration, error) {
	if rl.MaxRequests <= 0 {
		return 0, errors.Errorf("invalid rate limit: maxRequests=%d", rl.MaxRequests)
	}
	if rl.WindowMs < 0 {
		return 0, errors.Errorf("invalid rate limit: windowMs=%d", rl.WindowMs)
	}

	ms := float64(quoteRequestsPerCycle) * float64(rl.WindowMs) / float64(rl.MaxRequests)
	return time.Duration(ms * float64(time.Millisecond)), nil
}
