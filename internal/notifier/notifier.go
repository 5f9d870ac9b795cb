package notifier

import "context"

// Notifier delivers an out-of-band message. Fire-and-forget: callers other
// than first-factor code delivery treat a failure as best-effort and never
// roll back the state change that triggered it.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
