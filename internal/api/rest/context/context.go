package context

import (
	"context"

	"github.com/feedhub/feedhub-server/internal/model"
)

type ctxKey int

const identityKey ctxKey = iota

// Manager stores and retrieves the request identity from the request
// context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a context carrying the identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentityFromContext retrieves the identity from the context. A
// context without an identity annotation reads as anonymous.
func (m *Manager) GetIdentityFromContext(ctx context.Context) model.Identity {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	if !ok {
		return model.Identity{}
	}
	return identity
}
