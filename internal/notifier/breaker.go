package notifier

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerNotifier stops hammering the mail provider once it starts failing
// consistently. An open breaker fails fast; callers already treat delivery
// as best-effort except on the first-factor path, where the fast failure
// becomes DeliveryFailed.
type BreakerNotifier struct {
	inner Notifier
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerNotifier(inner Notifier, logger *zap.SugaredLogger) *BreakerNotifier {
	st := gobreaker.Settings{
		Name:        "notifier",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Infow("circuit breaker state", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerNotifier{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

func (n *BreakerNotifier) Send(ctx context.Context, to, subject, body string) error {
	_, err := n.cb.Execute(func() (interface{}, error) {
		return nil, n.inner.Send(ctx, to, subject, body)
	})
	return err
}
