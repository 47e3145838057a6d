package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-tasks/internal/infra/transport/http"
)

const maxCredentialsBodySize = 1 << 16

var (
	// ErrNoUsername is returned when the username is missing from the request.
	ErrNoUsername = errors.New("no username")
	// ErrNoPassword is returned when the password is missing from the request.
	ErrNoPassword = errors.New("no password")
)

// Credentials is the request body of signup and login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HTTPTransport handles HTTP requests for the authentication service.
// A successful signup or login answers with the bare token as text/plain; a
// failed one answers with an empty body and an error status.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport serving:
// - POST /signup: Register a new user and get an auth token
// - POST /login: Login and get an auth token.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		mux:     http.NewServeMux(),
	}

	ht.mux.HandleFunc("POST /signup", ht.HandleSignup)
	ht.mux.HandleFunc("POST /login", ht.HandleLogin)

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleSignup processes user registration requests.
// Expects a JSON body: {"username": "...", "password": "..."}.
func (ht *HTTPTransport) HandleSignup(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSignup(w, r)
}

func (ht *HTTPTransport) handleSignup(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user signup failed", "error", err)
		} else {
			log.DebugContext(ctx, "user signed up")
		}
	}(r.Context())

	creds, err := ht.readCredentials(w, r)
	if err != nil {
		return err
	}

	token, err := ht.authSvc.Signup(r.Context(), creds.Username, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, domain.ErrInvalidUsername):
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}

		return fmt.Errorf("signup: %w", err)
	}

	return writeToken(w, token)
}

// HandleLogin processes user login requests.
// Expects a JSON body: {"username": "...", "password": "..."}.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			// already logged by the service
		case err != nil:
			log.ErrorContext(ctx, "user login failed", "error", err)
		default:
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	creds, err := ht.readCredentials(w, r)
	if err != nil {
		return err
	}

	token, err := ht.authSvc.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}

		return fmt.Errorf("login: %w", err)
	}

	return writeToken(w, token)
}

// readCredentials decodes the request body and answers 400 itself on failure.
func (ht *HTTPTransport) readCredentials(w http.ResponseWriter, r *http.Request) (Credentials, error) {
	var creds Credentials

	body := http.MaxBytesReader(w, r.Body, maxCredentialsBodySize)

	if err := json.NewDecoder(body).Decode(&creds); err != nil && !errors.Is(err, io.EOF) {
		w.WriteHeader(http.StatusBadRequest)

		return Credentials{}, fmt.Errorf("decode body: %w", err)
	}

	if creds.Username == "" {
		w.WriteHeader(http.StatusBadRequest)

		return Credentials{}, ErrNoUsername
	}

	if creds.Password == "" {
		w.WriteHeader(http.StatusBadRequest)

		return Credentials{}, ErrNoPassword
	}

	return creds, nil
}

func writeToken(w http.ResponseWriter, token string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := io.WriteString(w, token); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
