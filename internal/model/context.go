package model

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authentication annotation attached to every request.
// IsAuthenticated is false for anonymous requests; UserID is only
// meaningful when IsAuthenticated is true.
type Identity struct {
	UserID          uuid.UUID
	IsAuthenticated bool
}

// ContextManager stores and retrieves request identity from context.
type ContextManager interface {
	SetIdentityToContext(ctx context.Context, identity Identity) context.Context
	GetIdentityFromContext(ctx context.Context) Identity
}
