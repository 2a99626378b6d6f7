// internal/adapters/out/identitytoolkit/client.go

// Package identitytoolkit signs principals in against the Identity
// Toolkit REST API. The admin SDK has no password verification surface,
// so email/password and anonymous sign-in go through the same endpoints
// a web client would use.
package identitytoolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"littleshop/internal/domain/principal"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a client for the given web API key. baseURL override
// is for tests; pass "" for the production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type signInRequest struct {
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	Token             string `json:"token,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn verifies an email/password pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (principal.Session, error) {
	resp, err := c.call(ctx, "accounts:signInWithPassword", signInRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return principal.Session{}, err
	}
	return sessionFromResponse(resp, false), nil
}

// SignUp creates a new email/password account.
func (c *Client) SignUp(ctx context.Context, email, password string) (principal.Session, error) {
	resp, err := c.call(ctx, "accounts:signUp", signInRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return principal.Session{}, err
	}
	return sessionFromResponse(resp, false), nil
}

// SignInAnonymously creates a fresh anonymous principal. The endpoint
// is signUp without credentials.
func (c *Client) SignInAnonymously(ctx context.Context) (principal.Session, error) {
	resp, err := c.call(ctx, "accounts:signUp", signInRequest{ReturnSecureToken: true})
	if err != nil {
		return principal.Session{}, err
	}
	return sessionFromResponse(resp, true), nil
}

// ResumeSession exchanges a custom token for a session.
func (c *Client) ResumeSession(ctx context.Context, customToken string) (principal.Session, error) {
	tok := strings.TrimSpace(customToken)
	if tok == "" {
		return principal.Session{}, principal.ErrInvalidCredentials
	}
	resp, err := c.call(ctx, "accounts:signInWithCustomToken", signInRequest{
		Token:             tok,
		ReturnSecureToken: true,
	})
	if err != nil {
		return principal.Session{}, err
	}
	return sessionFromResponse(resp, resp.Email == ""), nil
}

func (c *Client) call(ctx context.Context, method string, payload signInRequest) (signInResponse, error) {
	if c == nil || c.apiKey == "" {
		return signInResponse{}, fmt.Errorf("identitytoolkit: client is not configured")
	}

	url := c.baseURL + "/" + method + "?key=" + c.apiKey

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return signInResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return signInResponse{}, fmt.Errorf("%w: %v", principal.ErrUnavailable, err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	if res.StatusCode != http.StatusOK {
		return signInResponse{}, mapAPIError(res.StatusCode, body)
	}

	var out signInResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return signInResponse{}, fmt.Errorf("identitytoolkit: decode response: %w", err)
	}
	if out.LocalID == "" {
		return signInResponse{}, fmt.Errorf("identitytoolkit: response has no localId")
	}
	return out, nil
}

// mapAPIError translates the API's message codes into domain sentinels.
func mapAPIError(statusCode int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	msg := er.Error.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(msg, "INVALID_CUSTOM_TOKEN"),
		strings.HasPrefix(msg, "USER_DISABLED"):
		return fmt.Errorf("%w: %s", principal.ErrInvalidCredentials, msg)
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return fmt.Errorf("%w: %s", principal.ErrDuplicateAccount, msg)
	case statusCode >= 500:
		return fmt.Errorf("%w: status=%d %s", principal.ErrUnavailable, statusCode, msg)
	default:
		return fmt.Errorf("identitytoolkit: call failed status=%d message=%s", statusCode, msg)
	}
}

func sessionFromResponse(resp signInResponse, anonymous bool) principal.Session {
	return principal.Session{
		Principal: principal.Principal{
			ID:          resp.LocalID,
			IsAnonymous: anonymous,
			Email:       resp.Email,
		},
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}
}
