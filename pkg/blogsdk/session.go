package blogsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Session holds the tokens of one logged in browser session and sends them
// the way a browser would: tokens as cookies, the CSRF token as a bearer
// header. Each rotation replaces all three.
type Session struct {
	client *SDKClient

	mu           sync.Mutex
	refreshToken string
	accessToken  string
	csrfToken    string
}

// NewSessionFromTokens rebuilds a Session from previously issued tokens.
// accessToken may be empty for a session that has not been refreshed yet.
func (c *SDKClient) NewSessionFromTokens(refreshToken, accessToken, csrfToken string) *Session {
	return &Session{
		client:       c,
		refreshToken: refreshToken,
		accessToken:  accessToken,
		csrfToken:    csrfToken,
	}
}

func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *Session) CSRFToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.csrfToken
}

// absorb picks rotated tokens off a response. Cleared cookies empty the
// matching token.
func (s *Session) absorb(resp *http.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range resp.Cookies() {
		value := c.Value
		if c.MaxAge < 0 {
			value = ""
		}
		switch c.Name {
		case CookieRefreshToken:
			s.refreshToken = value
		case CookieAccessToken:
			s.accessToken = value
		}
	}
	if csrf := resp.Header.Get(HeaderCSRFToken); csrf != "" {
		s.csrfToken = csrf
	}
}

// withRefresh attaches the refresh cookie and CSRF bearer.
func (s *Session) withRefresh(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken != "" {
		r.AddCookie(&http.Cookie{Name: CookieRefreshToken, Value: s.refreshToken})
	}
	if s.csrfToken != "" {
		r.Header.Set("Authorization", "Bearer "+s.csrfToken)
	}
}

// withAccess attaches the access cookie and CSRF bearer.
func (s *Session) withAccess(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: s.accessToken})
	if s.csrfToken != "" {
		r.Header.Set("Authorization", "Bearer "+s.csrfToken)
	}
}

// Verify submits the current TOTP code, opening the verification window.
func (s *Session) Verify(ctx context.Context, code string) error {
	resp, err := s.client.do(ctx, http.MethodPost, s.client.api("/auth/verify"), VerifyRequest{Code: code}, s.withRefresh)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// QRCode fetches the enrollment QR code as PNG.
func (s *Session) QRCode(ctx context.Context) ([]byte, error) {
	resp, err := s.client.do(ctx, http.MethodGet, s.client.api("/auth/2fa-img"), nil, s.withRefresh)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, body)
	}
	return body, nil
}

// Refresh rotates every token of the session. It fails until Verify has
// succeeded within the verification window.
func (s *Session) Refresh(ctx context.Context) (*RefreshResponse, error) {
	resp, err := s.client.do(ctx, http.MethodPost, s.client.api("/auth/refresh"), nil, s.withRefresh)
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	s.absorb(resp)
	return &out, nil
}

// Logout ends the session server side and forgets the tokens.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.client.do(ctx, http.MethodPost, s.client.api("/auth/logout"), nil, s.withRefresh)
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, nil, http.StatusNoContent); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken, s.accessToken, s.csrfToken = "", "", ""
	s.mu.Unlock()
	return nil
}

// doAuth performs a request that needs the access token.
func (s *Session) doAuth(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	if s.AccessToken() == "" {
		return ErrNotElevated
	}

	resp, err := s.client.do(ctx, method, s.client.api(path), body, s.withAccess)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := s.doAuth(ctx, http.MethodGet, "/users/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetUser(ctx context.Context, username string) (*UserResponse, error) {
	var out UserResponse
	if err := s.doAuth(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateProfile(ctx context.Context, req ProfileRequest) (*UserResponse, error) {
	var out UserResponse
	if err := s.doAuth(ctx, http.MethodPut, "/users/me", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateDraft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	var out DraftResponse
	if err := s.doAuth(ctx, http.MethodPost, "/drafts", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListDrafts(ctx context.Context) (*ListDraftsResponse, error) {
	var out ListDraftsResponse
	if err := s.doAuth(ctx, http.MethodGet, "/drafts", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetDraft(ctx context.Context, id string) (*DraftResponse, error) {
	var out DraftResponse
	if err := s.doAuth(ctx, http.MethodGet, "/drafts/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateDraft(ctx context.Context, id string, req DraftRequest) (*DraftResponse, error) {
	var out DraftResponse
	if err := s.doAuth(ctx, http.MethodPut, "/drafts/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteDraft(ctx context.Context, id string) error {
	return s.doAuth(ctx, http.MethodDelete, "/drafts/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
