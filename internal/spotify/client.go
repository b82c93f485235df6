// Package spotify wraps the Spotify Web API playback endpoints behind the
// domain Controller interface, handling bearer auth and token refresh.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

const (
	defaultAPIURL      = "https://api.spotify.com/v1"
	defaultAccountsURL = "https://accounts.spotify.com"

	// Scope required for the playback endpoints used here.
	Scope = "user-modify-playback-state"

	_maxErrorBody = 4 * 1024
)

// Client is the remote control client. It owns the Credentials: the access
// token is checked before each call and refreshed through the standard
// refresh-token grant when expired, with rotated refresh tokens persisted
// back to the store.
//
// The client never retries on its own, with one exception required by the
// retry contract: a call rejected with 401 triggers exactly one refresh
// exchange and one retry of the original call. A second consecutive
// rejection is surfaced.
type Client struct {
	logger *zap.Logger
	http   *http.Client
	store  domain.CredentialStore

	mu    sync.Mutex
	creds domain.Credentials

	apiURL      string
	accountsURL string
	now         func() time.Time
}

// New loads stored credentials and builds the client. A missing client
// id/secret is a startup failure; a missing refresh token is reported
// later, by EnsureAuthenticated, so the auth flow can use this same client.
func New(logger *zap.Logger, store domain.CredentialStore) (*Client, error) {
	creds, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errors.New("spotify client id/secret not configured, run `owspotify auth` first")
	}

	return &Client{
		logger: logger,
		// A bounded timeout keeps a hung call from stalling detection forever.
		http:        &http.Client{Timeout: 10 * time.Second},
		store:       store,
		creds:       creds,
		apiURL:      defaultAPIURL,
		accountsURL: defaultAccountsURL,
		now:         time.Now,
	}, nil
}

// EnsureAuthenticated performs an initial refresh exchange so that a dead
// refresh token fails at startup instead of mid-game.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	token := c.creds.RefreshToken
	c.mu.Unlock()

	if token == "" {
		return errors.New("no refresh token stored, run `owspotify auth` first")
	}
	return c.refresh(ctx)
}

// Play resumes playback on the active device.
func (c *Client) Play(ctx context.Context) error {
	return c.put(ctx, "play", "/me/player/play", nil)
}

// Pause pauses playback on the active device.
func (c *Client) Pause(ctx context.Context) error {
	return c.put(ctx, "pause", "/me/player/pause", nil)
}

// SetVolume sets the playback volume. Out-of-range levels are rejected
// before any network call.
func (c *Client) SetVolume(ctx context.Context, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("set_volume %d: %w", level, domain.ErrVolumeOutOfRange)
	}
	return c.put(ctx, "set_volume", "/me/player/volume", url.Values{
		"volume_percent": []string{strconv.Itoa(level)},
	})
}

// put issues one playback command. At most one refresh exchange happens
// per call: either proactively when the token has expired, or reactively
// after a 401, followed by a single retry of the original call. A second
// consecutive auth rejection is surfaced as-is.
func (c *Client) put(ctx context.Context, op, path string, query url.Values) error {
	c.mu.Lock()
	expired := c.creds.Expired(c.now())
	c.mu.Unlock()

	refreshed := false
	if expired {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		refreshed = true
	}

	err := c.doPut(ctx, op, path, query)
	if err == nil {
		return nil
	}

	if kind, ok := domain.RemoteKind(err); ok && kind == domain.KindAuth && !refreshed {
		c.logger.Info("Access token rejected, refreshing once", zap.String("op", op))
		if rerr := c.refresh(ctx); rerr != nil {
			return rerr
		}
		return c.doPut(ctx, op, path, query)
	}

	return err
}

func (c *Client) doPut(ctx context.Context, op, path string, query url.Values) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, nil)
	if err != nil {
		return &domain.RemoteCallError{Kind: domain.KindNetwork, Op: op, Err: err}
	}

	c.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.RemoteCallError{Kind: domain.KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		c.logger.Debug("Spotify call succeeded", zap.String("op", op))
		return nil
	case http.StatusAccepted, http.StatusNotFound:
		// 404 means no active device; 202 means the device exists but is
		// temporarily unavailable. Both are the operator's problem, not ours.
		return &domain.RemoteCallError{
			Kind:   domain.KindDeviceUnavailable,
			Op:     op,
			Status: resp.StatusCode,
			Err:    bodyError(resp.Body),
		}
	case http.StatusUnauthorized:
		return &domain.RemoteCallError{
			Kind:   domain.KindAuth,
			Op:     op,
			Status: resp.StatusCode,
			Err:    bodyError(resp.Body),
		}
	case http.StatusTooManyRequests:
		err := bodyError(resp.Body)
		if after := resp.Header.Get("Retry-After"); after != "" {
			err = fmt.Errorf("retry after %ss", after)
		}
		return &domain.RemoteCallError{
			Kind:   domain.KindRateLimited,
			Op:     op,
			Status: resp.StatusCode,
			Err:    err,
		}
	default:
		return &domain.RemoteCallError{
			Kind:   domain.KindNetwork,
			Op:     op,
			Status: resp.StatusCode,
			Err:    bodyError(resp.Body),
		}
	}
}

// tokenResponse is the accounts-service token endpoint payload, shared by
// the refresh and authorization-code grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// refresh exchanges the stored refresh token for a new access token and
// persists a rotated refresh token when the service issues one.
func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	token := c.creds.RefreshToken
	c.mu.Unlock()

	if token == "" {
		return &domain.RemoteCallError{
			Kind: domain.KindAuth,
			Op:   "refresh",
			Err:  errors.New("no refresh token"),
		}
	}

	form := url.Values{
		"grant_type":    []string{"refresh_token"},
		"refresh_token": []string{token},
	}

	tr, err := c.tokenExchange(ctx, form)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.creds.AccessToken = tr.AccessToken
	c.creds.Expiry = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	rotated := tr.RefreshToken != "" && tr.RefreshToken != c.creds.RefreshToken
	if rotated {
		c.creds.RefreshToken = tr.RefreshToken
	}
	c.mu.Unlock()

	if rotated {
		if err := c.store.SaveRefreshToken(tr.RefreshToken); err != nil {
			c.logger.Warn("Could not persist rotated refresh token", zap.Error(err))
		}
	}

	c.logger.Info("Access token refreshed",
		zap.Int("expiresInSeconds", tr.ExpiresIn))
	return nil
}

// tokenExchange posts a grant to the accounts token endpoint with HTTP
// Basic client authentication.
func (c *Client) tokenExchange(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.RemoteCallError{Kind: domain.KindNetwork, Op: "refresh", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.mu.Lock()
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.RemoteCallError{Kind: domain.KindNetwork, Op: "refresh", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 400 is what an invalid or revoked refresh token comes back as.
		return nil, &domain.RemoteCallError{
			Kind:   domain.KindAuth,
			Op:     "refresh",
			Status: resp.StatusCode,
			Err:    bodyError(resp.Body),
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxErrorBody)).Decode(&tr); err != nil {
		return nil, &domain.RemoteCallError{Kind: domain.KindAuth, Op: "refresh", Err: err}
	}
	if tr.AccessToken == "" {
		return nil, &domain.RemoteCallError{
			Kind: domain.KindAuth,
			Op:   "refresh",
			Err:  errors.New("token response missing access_token"),
		}
	}
	return &tr, nil
}

// bodyError turns a (truncated) error response body into an error, or nil
// when the body is empty.
func bodyError(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, _maxErrorBody))
	if err != nil || len(data) == 0 {
		return nil
	}
	return errors.New(string(data))
}
