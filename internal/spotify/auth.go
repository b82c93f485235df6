package spotify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AuthorizeURL builds the user-facing authorization URL for the
// authorization-code flow. The redirect URI must match the one registered
// with the application.
func (c *Client) AuthorizeURL(redirectURI string) string {
	c.mu.Lock()
	clientID := c.creds.ClientID
	c.mu.Unlock()

	q := url.Values{
		"client_id":     []string{clientID},
		"response_type": []string{"code"},
		"redirect_uri":  []string{redirectURI},
		"scope":         []string{Scope},
	}
	return c.accountsURL + "/authorize?" + q.Encode()
}

// Authorize walks the interactive authorization-code exchange: it prints
// the authorization URL, reads the pasted authorization code, exchanges it
// for tokens, verifies the granted scope and persists the refresh token.
//
// The user authenticates in a browser; the service then redirects to the
// registered URI with a `code` query parameter, which the user pastes back.
func (c *Client) Authorize(ctx context.Context, in io.Reader, out io.Writer, redirectURI string) error {
	fmt.Fprintln(out, "Open the following URL in a browser and authorize the application:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  "+c.AuthorizeURL(redirectURI))
	fmt.Fprintln(out)
	fmt.Fprint(out, `Paste the "code" parameter from the redirect URL here: `)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read authorization code: %w", err)
		}
		return fmt.Errorf("read authorization code: unexpected end of input")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return fmt.Errorf("empty authorization code")
	}

	return c.Exchange(ctx, code, redirectURI)
}

// Exchange performs the authorization-code grant for a pasted code.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) error {
	form := url.Values{
		"grant_type":   []string{"authorization_code"},
		"code":         []string{code},
		"redirect_uri": []string{redirectURI},
	}

	tr, err := c.tokenExchange(ctx, form)
	if err != nil {
		return fmt.Errorf("authorization code exchange: %w", err)
	}
	if !scopesCover(tr.Scope, Scope) {
		return fmt.Errorf("authorization granted scope %q, need %q", tr.Scope, Scope)
	}
	if tr.RefreshToken == "" {
		return fmt.Errorf("authorization response missing refresh token")
	}

	c.mu.Lock()
	c.creds.AccessToken = tr.AccessToken
	c.creds.RefreshToken = tr.RefreshToken
	c.creds.Expiry = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	c.mu.Unlock()

	if err := c.store.SaveRefreshToken(tr.RefreshToken); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}

	c.logger.Info("Authorization succeeded", zap.String("scope", tr.Scope))
	return nil
}

// scopesCover reports whether every required scope appears in granted
// (a space-separated list).
func scopesCover(granted, required string) bool {
	have := make(map[string]struct{})
	for _, s := range strings.Fields(granted) {
		have[s] = struct{}{}
	}
	for _, s := range strings.Fields(required) {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
