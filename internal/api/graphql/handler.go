package graphql

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// Handler serves the /graphql endpoint.
type Handler struct {
	schema graphql.Schema
	logger *logger.Logger
}

// New creates the GraphQL handler with its schema bound to the services.
func New(
	authService AuthService,
	postService PostService,
	userStore model.UserStore,
	contextManager model.ContextManager,
	logger *logger.Logger,
) (*Handler, error) {
	schema, err := newSchema(authService, postService, userStore, contextManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}

	return &Handler{schema: schema, logger: logger}, nil
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type responseError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type response struct {
	Data   interface{}     `json:"data,omitempty"`
	Errors []responseError `json:"errors,omitempty"`
}

// ServeHTTP executes a GraphQL request. Resolver failures are reported
// in the errors list as `{message, status}`; the HTTP status stays 200
// so partial data is still delivered.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, response{Errors: []responseError{{Message: "invalid request body", Status: http.StatusBadRequest}}})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	resp := response{Data: result.Data}
	for _, ferr := range result.Errors {
		resp.Errors = append(resp.Errors, responseError{
			Message: ferr.Message,
			Status:  statusOf(ferr),
		})
	}

	h.respond(w, resp)
}

func (h *Handler) respond(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("GraphQL handler: failed to encode response", "error", err.Error())
	}
}

// statusOf maps a formatted error back to the service error taxonomy.
// Query-level errors (parse, validation) carry no original error and
// report 400.
func statusOf(ferr gqlerrors.FormattedError) int {
	err := ferr.OriginalError()
	for err != nil {
		switch e := err.(type) {
		case *gqlerrors.Error:
			err = e.OriginalError
		case gqlerrors.Error:
			err = e.OriginalError
		default:
			return apperror.StatusOf(err)
		}
	}
	return http.StatusBadRequest
}
