// Package identity implements the IdentityService against a GoTrue-compatible
// auth endpoint. The refresh token is persisted between runs so a restart can
// restore the session without credentials.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fitlog/config"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/lifecycle"
	"fitlog/internal/domain/service"
	"fitlog/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

// refreshLeeway is how long before access-token expiry the background loop
// renews the session.
const refreshLeeway = 30 * time.Second

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

type client struct {
	baseURL    string
	apiKey     string
	tokenPath  string
	httpClient *http.Client
	logger     *slog.Logger

	mu      sync.Mutex
	current *entity.Session
	subs    map[int]func(entity.AuthEvent)
	nextSub int

	stopRefresh chan struct{}
}

// New creates the identity client and hooks its background refresh loop into
// the application lifecycle.
func New(params Params) (service.IdentityService, error) {
	idCfg := params.Config.Identity
	if idCfg == nil {
		return nil, errors.New("identity configuration is missing")
	}

	c := &client{
		baseURL:     idCfg.BaseURL,
		apiKey:      idCfg.APIKey,
		tokenPath:   idCfg.RefreshTokenPath,
		httpClient:  &http.Client{Timeout: lifecycle.DefaultTimeout},
		logger:      params.Logger,
		subs:        make(map[int]func(entity.AuthEvent)),
		stopRefresh: make(chan struct{}),
	}

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go c.refreshLoop()

			return nil
		},
		OnStop: func(_ context.Context) error {
			close(c.stopRefresh)

			return nil
		},
	})

	return c, nil
}

// tokenResponse is the grant endpoint's payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"msg"`
}

// GetSession redeems the persisted refresh token. Returns (nil, nil) when no
// token is stored, which the caller treats as "signed out".
func (c *client) GetSession(ctx context.Context) (*entity.Session, error) {
	refreshToken, err := c.loadRefreshToken()
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, nil
	}

	session, err := c.redeemRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	c.adopt(session)

	return session, nil
}

// SignInWithPassword performs the password grant and emits a signed-in event.
func (c *client) SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var tokens tokenResponse
	status, err := c.post(ctx, "/token?grant_type=password", "", body, &tokens)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("password grant failed with status %d", status)
	}

	session, err := c.toSession(&tokens)
	if err != nil {
		return nil, err
	}

	c.adopt(session)
	c.emit(entity.AuthEvent{Kind: entity.AuthEventSignedIn, Session: session})

	return session, nil
}

// SignUp registers a new identity. When the provider auto-confirms emails the
// response already carries a session, which is adopted like a sign-in.
func (c *client) SignUp(ctx context.Context, email, password string) (*entity.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var tokens tokenResponse
	status, err := c.post(ctx, "/signup", "", body, &tokens)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnprocessableEntity || status == http.StatusConflict {
		return nil, domainerrors.ErrConflict.WrapMessage("email is already registered")
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("sign-up failed with status %d", status)
	}

	// Email confirmation pending: no tokens yet.
	if tokens.AccessToken == "" {
		return nil, nil
	}

	session, err := c.toSession(&tokens)
	if err != nil {
		return nil, err
	}

	c.adopt(session)
	c.emit(entity.AuthEvent{Kind: entity.AuthEventSignedIn, Session: session})

	return session, nil
}

// SignOut revokes the session remotely and drops the persisted token. The
// local state is cleared even when revocation fails; the caller decides how
// to surface the remote error.
func (c *client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.current
	c.current = nil
	c.mu.Unlock()

	if err := c.clearRefreshToken(); err != nil {
		c.logger.Warn("failed to drop persisted refresh token", slog.Any("error", err))
	}

	if session == nil {
		return nil
	}

	status, err := c.post(ctx, "/logout", session.AccessToken, nil, nil)
	if err != nil {
		return errors.Wrap(err, "failed to revoke session")
	}
	if status != http.StatusNoContent && status != http.StatusOK {
		return errors.Errorf("logout failed with status %d", status)
	}

	return nil
}

// Subscribe registers a callback for subsequent identity events.
func (c *client) Subscribe(fn func(entity.AuthEvent)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// refreshLoop renews the session shortly before the access token expires.
// A rejected refresh ends the session with a signed-out event.
func (c *client) refreshLoop() {
	for {
		c.mu.Lock()
		session := c.current
		c.mu.Unlock()

		wait := time.Minute
		if session != nil {
			wait = time.Until(session.ExpiresAt.Add(-refreshLeeway))
			if wait < time.Second {
				wait = time.Second
			}
		}

		select {
		case <-c.stopRefresh:
			return
		case <-time.After(wait):
		}

		c.mu.Lock()
		session = c.current
		c.mu.Unlock()
		if session == nil || time.Until(session.ExpiresAt) > refreshLeeway+time.Second {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
		renewed, err := c.redeemRefreshToken(ctx, session.RefreshToken)
		cancel()

		if err != nil {
			if errors.Is(err, domainerrors.ErrSessionExpired) {
				c.logger.Warn("refresh token rejected, ending session")
				c.mu.Lock()
				c.current = nil
				c.mu.Unlock()
				if clearErr := c.clearRefreshToken(); clearErr != nil {
					c.logger.Warn("failed to drop persisted refresh token", slog.Any("error", clearErr))
				}
				c.emit(entity.AuthEvent{Kind: entity.AuthEventSignedOut})

				continue
			}

			// Transient failure: retry on the next tick while the token
			// may still be valid.
			c.logger.Warn("session refresh failed", slog.Any("error", err))

			continue
		}

		c.adopt(renewed)
		c.emit(entity.AuthEvent{Kind: entity.AuthEventTokenRefreshed, Session: renewed})
	}
}

func (c *client) redeemRefreshToken(ctx context.Context, refreshToken string) (*entity.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var tokens tokenResponse
	status, err := c.post(ctx, "/token?grant_type=refresh_token", "", body, &tokens)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, domainerrors.ErrSessionExpired
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("refresh grant failed with status %d", status)
	}

	return c.toSession(&tokens)
}

// adopt stores the session and persists its refresh token.
func (c *client) adopt(session *entity.Session) {
	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	if err := c.saveRefreshToken(session.RefreshToken); err != nil {
		c.logger.Warn("failed to persist refresh token", slog.Any("error", err))
	}
}

func (c *client) emit(event entity.AuthEvent) {
	c.mu.Lock()
	fns := make([]func(entity.AuthEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// toSession derives the session from the token payload. The user id and the
// authoritative expiry come from the JWT claims; the token is not verified
// here because the backend is the party that must verify it.
func (c *client) toSession(tokens *tokenResponse) (*entity.Session, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokens.AccessToken, claims); err != nil {
		return nil, errors.Wrap(err, "failed to parse access token")
	}

	subject := claims.Subject
	if subject == "" {
		subject = tokens.User.ID
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, errors.Wrap(err, "access token carries no valid user id")
	}

	expiresAt := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &entity.Session{
		UserID:       userID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// post sends a JSON request to the auth endpoint. A non-2xx status is
// returned to the caller for mapping, not treated as a transport error.
func (c *client) post(ctx context.Context, path, bearer string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "identity request failed")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", slog.Any("error", closeErr))
		}
	}()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "failed to decode response")
		}
	} else if resp.StatusCode >= http.StatusBadRequest {
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Debug("identity endpoint returned error",
				slog.Int("status", resp.StatusCode),
				slog.String("error", errResp.Error),
				slog.String("description", errResp.ErrorDescription),
				slog.String("message", errResp.Message))
		}
	}

	return resp.StatusCode, nil
}

func (c *client) loadRefreshToken() (string, error) {
	if c.tokenPath == "" {
		return "", nil
	}

	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}

		return "", errors.Wrap(err, "failed to read refresh token")
	}

	return string(bytes.TrimSpace(data)), nil
}

func (c *client) saveRefreshToken(token string) error {
	if c.tokenPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.tokenPath), 0o700); err != nil {
		return errors.Wrap(err, "failed to create token directory")
	}

	return errors.Wrap(os.WriteFile(c.tokenPath, []byte(token), 0o600), "failed to write refresh token")
}

func (c *client) clearRefreshToken() error {
	if c.tokenPath == "" {
		return nil
	}

	if err := os.Remove(c.tokenPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove refresh token")
	}

	return nil
}
