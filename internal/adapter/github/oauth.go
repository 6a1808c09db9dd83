package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/gitsphere/gitsphere-backend/internal/port"
)

// requiredScopes must all be granted before a credential is minted. The
// broad "repo" scope satisfies "public_repo".
var requiredScopes = []string{"public_repo", "read:user"}

// OAuthProvider exchanges GitHub authorization codes for access tokens and
// verifies the granted scopes.
type OAuthProvider struct {
	conf       *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewOAuthProvider creates a provider for the GitHub OAuth endpoint.
func NewOAuthProvider(clientID, clientSecret, apiURL string, timeout time.Duration) *OAuthProvider {
	return &OAuthProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.GitHub,
		},
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ExchangeCode implements port.OAuthExchanger. It swaps the authorization
// code for an access token, then probes /user to confirm the token works
// and to read the scopes GitHub actually granted.
func (p *OAuthProvider) ExchangeCode(ctx context.Context, code string) (string, []string, error) {
	if code == "" {
		return "", nil, fmt.Errorf("%w: authorization code is required", port.ErrValidation)
	}
	if p.conf.ClientID == "" || p.conf.ClientSecret == "" {
		return "", nil, fmt.Errorf("github oauth not configured")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("github: exchange code: %w", err)
	}

	scopes, err := p.verifyScopes(ctx, tok.AccessToken)
	if err != nil {
		return "", nil, err
	}
	return tok.AccessToken, scopes, nil
}

// verifyScopes checks the token against /user and extracts the granted
// scopes from the X-OAuth-Scopes response header.
func (p *OAuthProvider) verifyScopes(ctx context.Context, accessToken string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("github: create scope probe: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", acceptHeader)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: scope probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: invalid token received", port.ErrValidation)
	}

	var scopes []string
	for _, s := range strings.Split(resp.Header.Get("X-OAuth-Scopes"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}

	if !hasRequiredScopes(scopes) {
		return nil, fmt.Errorf("%w: token missing required scopes: %s",
			port.ErrValidation, strings.Join(requiredScopes, ", "))
	}
	return scopes, nil
}

func hasRequiredScopes(granted []string) bool {
	has := func(want string) bool {
		for _, s := range granted {
			if s == want {
				return true
			}
			if want == "public_repo" && s == "repo" {
				return true
			}
		}
		return false
	}
	for _, want := range requiredScopes {
		if !has(want) {
			return false
		}
	}
	return true
}
