package tasksvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	context_ "github.com/mkrupp/homecase-tasks/internal/infra/context"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-tasks/internal/infra/transport/http"
)

const maxTaskBodySize = 1 << 16

var (
	// ErrNoTitle is returned when a create or update request carries no title.
	ErrNoTitle = errors.New("no title")
	// ErrInvalidTaskID is returned when the task id in the path is not an integer.
	ErrInvalidTaskID = errors.New("invalid task id")
	// ErrNoIdentity is returned when a request reaches the transport unauthenticated.
	ErrNoIdentity = errors.New("no identity in context")
)

// CreateRequest is the request body of POST /todos.
type CreateRequest struct {
	Title string `json:"title"`
}

// UpdateRequest is the request body of PATCH /todos/{id}.
type UpdateRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// HTTPTransport handles HTTP requests for the task service. It expects the
// caller identity in the request context, so it must be mounted behind the
// authenticating middleware.
type HTTPTransport struct {
	taskSvc TaskService
	log     logging.Logger
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport serving:
// - GET /todos: List the tasks of the caller
// - POST /todos: Create a task
// - PATCH /todos/{id}: Update a task
// - DELETE /todos/{id}: Delete a task.
// Every route answers with the resulting task list as JSON.
func NewHTTPTransport(taskSvc TaskService) *HTTPTransport {
	ht := &HTTPTransport{
		taskSvc: taskSvc,
		log:     logging.GetLogger("svc.tasksvc.http_transport"),
		mux:     http.NewServeMux(),
	}

	ht.mux.HandleFunc("GET /todos", ht.handle(ht.list))
	ht.mux.HandleFunc("POST /todos", ht.handle(ht.create))
	ht.mux.HandleFunc("PATCH /todos/{id}", ht.handle(ht.update))
	ht.mux.HandleFunc("DELETE /todos/{id}", ht.handle(ht.remove))

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// requestError carries the status a failed request is answered with.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{status: http.StatusBadRequest, err: err}
}

type taskHandler func(r *http.Request, owner domain.UserID) (domain.TaskList, error)

func (ht *HTTPTransport) handle(fn taskHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := ht.log.With(logging.Group("http", "method", r.Method, "path", r.URL.Path))

		identity, ok := context_.IdentityFromContext(r.Context())
		if !ok {
			log.ErrorContext(r.Context(), "task request failed", "error", ErrNoIdentity)
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		tasks, err := fn(r, identity.UserID)
		if err != nil {
			status := http.StatusInternalServerError

			var reqErr *requestError
			if errors.As(err, &reqErr) {
				status = reqErr.status
			}

			log.ErrorContext(r.Context(), "task request failed", "error", err, "status", status)
			w.WriteHeader(status)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(tasks); err != nil {
			log.ErrorContext(r.Context(), "write response failed", "error", err)
		}
	}
}

func (ht *HTTPTransport) list(r *http.Request, owner domain.UserID) (domain.TaskList, error) {
	return ht.taskSvc.List(r.Context(), owner)
}

func (ht *HTTPTransport) create(r *http.Request, owner domain.UserID) (domain.TaskList, error) {
	var req CreateRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, badRequest(ErrNoTitle)
	}

	return ht.taskSvc.Create(r.Context(), owner, req.Title)
}

func (ht *HTTPTransport) update(r *http.Request, owner domain.UserID) (domain.TaskList, error) {
	id, err := taskID(r)
	if err != nil {
		return nil, err
	}

	var req UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, badRequest(ErrNoTitle)
	}

	return ht.taskSvc.Update(r.Context(), owner, id, req.Title, req.Completed)
}

func (ht *HTTPTransport) remove(r *http.Request, owner domain.UserID) (domain.TaskList, error) {
	id, err := taskID(r)
	if err != nil {
		return nil, err
	}

	return ht.taskSvc.Delete(r.Context(), owner, id)
}

func taskID(r *http.Request) (domain.TaskID, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Errorf("%w: %w", ErrInvalidTaskID, err))
	}

	return domain.TaskID(id), nil
}

func decodeBody(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxTaskBodySize)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return badRequest(fmt.Errorf("decode body: %w", err))
	}

	return nil
}
