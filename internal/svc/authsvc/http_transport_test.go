package authsvc_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkrupp/homecase-tasks/internal/svc/authsvc"
)

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHTTPTransport_Signup(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)
	handler := authsvc.NewHTTPTransport(svc)

	rec := postJSON(t, handler, "/signup", `{"username":"alice","password":"pw1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain content type, got %q", ct)
	}

	token := rec.Body.String()
	if _, err := svc.Tokens.Verify(token); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"duplicate user", `{"username":"alice","password":"other"}`, http.StatusConflict},
		{"duplicate after normalization", `{"username":" ALICE ","password":"other"}`, http.StatusConflict},
		{"blank username", `{"username":"   ","password":"pw"}`, http.StatusBadRequest},
		{"missing username", `{"password":"pw"}`, http.StatusBadRequest},
		{"missing password", `{"username":"bob"}`, http.StatusBadRequest},
		{"malformed body", `{"username":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postJSON(t, handler, "/signup", tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}

			if rec.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", rec.Body.String())
			}
		})
	}
}

func TestHTTPTransport_SignupStorageError(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	repo.setErr(ErrRepoError)

	rec := postJSON(t, authsvc.NewHTTPTransport(svc), "/signup", `{"username":"alice","password":"pw1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}

	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestHTTPTransport_Login(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	handler := authsvc.NewHTTPTransport(svc)

	if rec := postJSON(t, handler, "/signup", `{"username":"alice","password":"pw1"}`); rec.Code != http.StatusOK {
		t.Fatalf("signup: expected status 200, got %d", rec.Code)
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		rec := postJSON(t, handler, "/login", `{"username":"Alice","password":"pw1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		token, err := svc.Tokens.Verify(rec.Body.String())
		if err != nil {
			t.Fatalf("issued token does not verify: %v", err)
		}

		if token.UserID != repo.users["alice"].ID {
			t.Errorf("expected subject %d, got %d", repo.users["alice"].ID, token.UserID)
		}
	})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"wrong password", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"mallory","password":"pw1"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"alice"}`, http.StatusBadRequest},
		{"malformed body", `not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postJSON(t, handler, "/login", tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}

			if rec.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", rec.Body.String())
			}
		})
	}
}

func TestHTTPTransport_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	authsvc.NewHTTPTransport(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}
