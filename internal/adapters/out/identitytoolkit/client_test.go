package identitytoolkit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"littleshop/internal/domain/principal"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL), srv
}

func apiError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": message},
	})
}

func TestSignInSuccess(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:signInWithPassword" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("api key missing from query")
		}
		var req signInRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@example.com" || req.Password != "secret" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(signInResponse{
			LocalID: "uid-1", Email: "a@example.com", IDToken: "idt", RefreshToken: "rt",
		})
	})

	sess, err := c.SignIn(context.Background(), "a@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.Principal.ID != "uid-1" || sess.Principal.IsAnonymous {
		t.Fatalf("unexpected principal %+v", sess.Principal)
	}
	if sess.IDToken != "idt" || sess.RefreshToken != "rt" {
		t.Fatalf("tokens not carried: %+v", sess)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusBadRequest, "INVALID_LOGIN_CREDENTIALS")
	})

	_, err := c.SignIn(context.Background(), "a@example.com", "nope")
	if !errors.Is(err, principal.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusBadRequest, "EMAIL_EXISTS")
	})

	_, err := c.SignUp(context.Background(), "a@example.com", "secret")
	if !errors.Is(err, principal.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestSignInAnonymouslyUsesSignUpWithoutCredentials(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:signUp" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req signInRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "" || req.Password != "" {
			t.Errorf("anonymous sign-in must not carry credentials: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(signInResponse{LocalID: "anon-uid", IDToken: "idt"})
	})

	sess, err := c.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously: %v", err)
	}
	if !sess.Principal.IsAnonymous || sess.Principal.ID != "anon-uid" {
		t.Fatalf("unexpected principal %+v", sess.Principal)
	}
}

func TestResumeSessionExchangesCustomToken(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts:signInWithCustomToken" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req signInRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Token != "custom-tok" {
			t.Errorf("custom token not forwarded: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(signInResponse{
			LocalID: "uid-2", Email: "b@example.com", IDToken: "idt",
		})
	})

	sess, err := c.ResumeSession(context.Background(), "custom-tok")
	if err != nil {
		t.Fatalf("ResumeSession: %v", err)
	}
	if sess.Principal.ID != "uid-2" || sess.Principal.IsAnonymous {
		t.Fatalf("unexpected principal %+v", sess.Principal)
	}
}

func TestResumeSessionRejectsEmptyToken(t *testing.T) {
	called := false
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	if _, err := c.ResumeSession(context.Background(), "  "); !errors.Is(err, principal.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if called {
		t.Fatalf("empty token must not reach the API")
	}
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		apiError(w, http.StatusInternalServerError, "BACKEND_ERROR")
	})

	_, err := c.SignIn(context.Background(), "a@example.com", "secret")
	if !errors.Is(err, principal.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
