package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitsphere/gitsphere-backend/internal/domain"
	"github.com/gitsphere/gitsphere-backend/internal/port"
	"github.com/gitsphere/gitsphere-backend/internal/token"
)

// AuthService turns GitHub authorization codes into signed credentials.
type AuthService struct {
	oauth       port.OAuthExchanger
	codec       *token.Codec
	issueWindow time.Duration
}

// NewAuthService creates an auth service. issueWindow is the lifetime of
// initially issued credentials.
func NewAuthService(oauth port.OAuthExchanger, codec *token.Codec, issueWindow time.Duration) *AuthService {
	return &AuthService{oauth: oauth, codec: codec, issueWindow: issueWindow}
}

// Login exchanges the authorization code, verifies the granted scopes and
// mints the initial credential.
func (s *AuthService) Login(ctx context.Context, code string) (*domain.AuthResponse, error) {
	accessToken, scopes, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	signed, err := s.codec.Encode(token.NewClaims(accessToken, scopes, s.issueWindow))
	if err != nil {
		return nil, fmt.Errorf("mint credential: %w", err)
	}

	slog.Info("user authenticated", "scopes", scopes)
	return &domain.AuthResponse{AccessToken: signed, Scopes: scopes}, nil
}

// TokenStatus inspects a credential and reports validity and remaining
// lifetime. An expired credential is a negative status, not an error;
// a malformed one is a validation error.
func (s *AuthService) TokenStatus(tokenStr string) (*domain.TokenStatus, error) {
	claims, err := s.codec.Decode(tokenStr, true)
	if err != nil {
		if errors.Is(err, port.ErrExpiredCredential) {
			return &domain.TokenStatus{Valid: false, Message: "Token has expired"}, nil
		}
		return nil, fmt.Errorf("%w: invalid token", port.ErrValidation)
	}

	exp, ok := claims.Expiry()
	if !ok {
		return nil, fmt.Errorf("%w: invalid token: no expiration", port.ErrValidation)
	}

	minutes := int(time.Until(exp).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	return &domain.TokenStatus{
		Valid:               true,
		ExpiresAt:           &exp,
		TimeToExpiryMinutes: &minutes,
	}, nil
}
