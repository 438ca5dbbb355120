package model

// Notifier publishes best-effort events to the real-time channel.
// Implementations must not fail the calling request: delivery errors
// are logged and swallowed.
type Notifier interface {
	PostCreated(post Post)
}
