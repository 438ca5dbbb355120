package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// Authenticate is the authentication gate. It annotates every request
// with an identity and never rejects: a missing, malformed or invalid
// Authorization header simply marks the request anonymous. Handlers
// decide whether anonymous access is allowed.
type Authenticate struct {
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenManager model.TokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenManager: tokenManager, contextManager: contextManager, logger: logger}
}

// Handle resolves the bearer token into an identity annotation.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := m.resolveIdentity(r.Header.Get("Authorization"))
		ctx := m.contextManager.SetIdentityToContext(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Authenticate) resolveIdentity(header string) model.Identity {
	segments := strings.Fields(header)
	if len(segments) < 2 {
		return model.Identity{}
	}

	userID, _, err := m.tokenManager.Parse(segments[1])
	if err != nil {
		m.logger.Debug("Authenticate middleware: token rejected", "error", err.Error())
		return model.Identity{}
	}
	if userID == uuid.Nil {
		return model.Identity{}
	}

	return model.Identity{UserID: userID, IsAuthenticated: true}
}
