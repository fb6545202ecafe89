// Package notification delivers availability-change alerts. A handler
// subscribes to the event bus and forwards each change to a delivery
// provider (currently email via SMTP), fire-and-forget.
package notification

import "context"

// Message is the content to be delivered by a Provider.
type Message struct {
	Subject string
	Body    string
}

// Provider is the interface for notification delivery backends.
type Provider interface {
	// Name returns the provider identifier (e.g. "smtp").
	Name() string
	// Send delivers the message using the provider's transport.
	Send(ctx context.Context, msg Message) error
}
