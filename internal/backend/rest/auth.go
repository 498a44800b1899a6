package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"kanban/internal/service"
	"kanban/internal/session"
)

// Register creates an account. It needs no session.
func (c *Client) Register(ctx context.Context, in service.UserCreate) (service.User, error) {
	var user service.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", in, &user); err != nil {
		return service.User{}, err
	}
	return user, nil
}

// Login posts the credentials form-encoded to /auth/login, as the token
// endpoint expects, and on success persists both tokens and starts sending
// the access token. It does not go through Do: a 401 here is a bad password,
// not an expired session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	form := "username=" + url.QueryEscape(username) + "&password=" + url.QueryEscape(password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(http.MethodPost, "/auth/login", err)
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("API response", zap.String("method", http.MethodPost), zap.String("endpoint", "/auth/login"), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestError(resp, loginFailedMessage)
	}

	var token oauth2.Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("invalid login response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("invalid login response: missing access_token")
	}

	if err := c.storage.Set(session.AccessTokenKey, token.AccessToken); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := c.storage.Set(session.RefreshTokenKey, token.RefreshToken); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.mu.Lock()
	c.token = &oauth2.Token{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken, TokenType: "Bearer"}
	c.mu.Unlock()
	return nil
}

// Logout forgets the session locally and runs OnSignedOut. The server is
// not contacted.
func (c *Client) Logout() {
	c.signOut()
}

// CurrentUser returns the logged-in user.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	var user service.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return service.User{}, err
	}
	return user, nil
}

// UpdateCurrentUser changes the logged-in user's profile.
func (c *Client) UpdateCurrentUser(ctx context.Context, in service.UserUpdate) (service.User, error) {
	var user service.User
	if err := c.doJSON(ctx, http.MethodPut, "/users/me", in, &user); err != nil {
		return service.User{}, err
	}
	return user, nil
}
