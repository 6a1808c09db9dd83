package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gitsphere/gitsphere-backend/internal/port"
)

// Credential kinds carried in the "type" claim.
const (
	KindInitial   = "github_token"
	KindRefreshed = "github_token_refreshed"
)

// Claims is the signed credential payload. It is the only piece of server
// state transmitted to the caller: the GitHub access token and its granted
// scopes travel inside the JWT.
type Claims struct {
	AccessToken string   `json:"access_token"`
	Scopes      []string `json:"scopes"`
	Kind        string   `json:"type"`
	RefreshedAt string   `json:"refreshed_at,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims mints an initial credential for a freshly exchanged GitHub
// token, valid for the given window.
func NewClaims(accessToken string, scopes []string, window time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		AccessToken: accessToken,
		Scopes:      scopes,
		Kind:        KindInitial,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(window)),
		},
	}
}

// Refreshed mints a replacement credential carrying the same GitHub token
// and scopes. The refreshed window is intentionally shorter than the
// initial issuance window: a refresh extends a live session, it does not
// restart a multi-day one.
func (c *Claims) Refreshed(window time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		AccessToken: c.AccessToken,
		Scopes:      c.Scopes,
		Kind:        KindRefreshed,
		RefreshedAt: now.Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(window)),
		},
	}
}

// Expiry returns the expiration time and whether the claim is present.
func (c *Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// Codec signs and verifies credentials with a shared secret and a
// configured HMAC algorithm.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec builds a codec for the given algorithm (HS256, HS384 or HS512).
func NewCodec(secret, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not HMAC-based", algorithm)
	}
	return &Codec{secret: []byte(secret), method: method}, nil
}

// Encode signs the claims into a compact JWT string.
func (c *Codec) Encode(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the claims. With verifyExpiry
// set, an expired credential fails with port.ErrExpiredCredential and a
// missing exp claim is a failure rather than a silent default. Without it,
// only the signature is verified so the payload of an expired credential
// can still be inspected for a refresh attempt.
func (c *Codec) Decode(tokenStr string, verifyExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{c.method.Alg()})}
	if verifyExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, port.ErrExpiredCredential
		}
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedCredential, err)
	}
	return claims, nil
}
