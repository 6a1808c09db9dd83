package port

import (
	"context"
	"net/url"
)

// GitHubClient abstracts authenticated GETs against the GitHub REST API.
// Implementations map transport and HTTP failures to the sentinel errors
// in this package; callers decide per call which failures are tolerable.
type GitHubClient interface {
	// Get issues an authenticated GET to path (relative to the API root)
	// and decodes the JSON response into out. A nil out discards the body.
	Get(ctx context.Context, path string, query url.Values, token string, out any) error
}

// TokenValidator checks whether a GitHub access token is still live.
type TokenValidator interface {
	// CheckToken returns nil when the token authenticates against the
	// "who am I" endpoint. Any failure, transport included, is an error.
	CheckToken(ctx context.Context, token string) error
}

// OAuthExchanger exchanges a GitHub authorization code for an access token
// and the scopes granted to it.
type OAuthExchanger interface {
	ExchangeCode(ctx context.Context, code string) (accessToken string, scopes []string, err error)
}
