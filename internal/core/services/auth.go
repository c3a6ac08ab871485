package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService authenticates admin API principals loaded from configuration
type authService struct {
	principals  map[string]domain.Principal
	authAdapter driven.AuthAdapter
	tokenTTL    time.Duration
	now         func() time.Time
}

// NewAuthService creates a new AuthService. A zero tokenTTL defaults to 24h.
func NewAuthService(
	principals []domain.Principal,
	authAdapter driven.AuthAdapter,
	tokenTTL time.Duration,
) driving.AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	byName := make(map[string]domain.Principal, len(principals))
	for _, p := range principals {
		byName[p.Name] = p
	}
	return &authService{
		principals:  byName,
		authAdapter: authAdapter,
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

// Authenticate validates credentials and issues a token
func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	// Validate input
	if req.Name == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	principal, ok := s.principals[req.Name]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.authAdapter.VerifyPassword(req.Password, principal.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := &domain.TokenClaims{
		Subject:   principal.Name,
		Role:      principal.Role,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Role:      principal.Role,
	}, nil
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	if claims.IsExpired(s.now()) {
		return nil, domain.ErrTokenExpired
	}

	// Principals removed from config lose access immediately
	principal, ok := s.principals[claims.Subject]
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	return &domain.AuthContext{
		Subject: principal.Name,
		Role:    principal.Role,
	}, nil
}
