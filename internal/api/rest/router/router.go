package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	graphqlapi "github.com/feedhub/feedhub-server/internal/api/graphql"
	"github.com/feedhub/feedhub-server/internal/api/rest/handler"
	"github.com/feedhub/feedhub-server/internal/api/rest/middleware"
	"github.com/feedhub/feedhub-server/internal/api/ws"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
	"github.com/feedhub/feedhub-server/internal/service"
)

// Router wires the REST routes, the GraphQL endpoint and the websocket
// channel behind a shared middleware chain. The authentication gate
// runs on every request; individual handlers decide whether anonymous
// access is allowed.
type Router struct {
	authService    *service.Auth
	postService    *service.Post
	userStore      model.UserStore
	storage        model.Storage
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	hub            *ws.Hub
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	postService *service.Post,
	userStore model.UserStore,
	storage model.Storage,
	tokenManager model.TokenManager,
	contextManager model.ContextManager,
	hub *ws.Hub,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		postService:    postService,
		userStore:      userStore,
		storage:        storage,
		tokenManager:   tokenManager,
		contextManager: contextManager,
		hub:            hub,
		logger:         logger,
	}
}

// Register builds the HTTP handler with all middleware and routes.
func (r *Router) Register() (http.Handler, error) {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenManager, r.contextManager, r.logger)

	mux := chi.NewRouter()
	mux.Use(logging.Handle)
	mux.Use(middleware.CORS)
	mux.Use(authenticate.Handle)

	authHandler := handler.NewAuth(r.authService, r.logger)
	mux.Post("/auth/signup", authHandler.SignUp)
	mux.Post("/auth/signin", authHandler.SignIn)

	feedHandler := handler.NewFeed(r.postService, r.storage, r.contextManager, r.logger)
	mux.Route("/feed", func(mux chi.Router) {
		mux.Get("/posts", feedHandler.List)
		mux.Post("/post", feedHandler.Create)
		mux.Get("/post/{postID}", feedHandler.Get)
		mux.Put("/post/{postID}", feedHandler.Update)
		mux.Delete("/post/{postID}", feedHandler.Delete)
	})

	imageHandler := handler.NewImage(r.storage, r.logger)
	mux.Get("/images/*", imageHandler.Serve)

	graphqlHandler, err := graphqlapi.New(r.authService, r.postService, r.userStore, r.contextManager, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphql handler: %w", err)
	}
	mux.Handle("/graphql", graphqlHandler)

	mux.Get("/ws", r.hub.Handle)

	return mux, nil
}
