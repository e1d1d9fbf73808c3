package notification

import "context"

// Channel delivers a single message through a provider. Implementations
// return nil on confirmed hand-off to the provider and an error (kind
// PROVIDER or INVALID_FORMAT) otherwise. The orchestrator records the
// outcome; channels never touch the audit log themselves.
type Channel interface {
	Send(ctx context.Context, recipient, subject, message string) error
}
