package directory

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/argentech/argentech-backend/internal/logging"
)

// NewBreaker builds the circuit breaker that guards directory loads.
func NewBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Warnf("circuit breaker %q changed from %s to %s", name, from, to)
		},
	})
}
