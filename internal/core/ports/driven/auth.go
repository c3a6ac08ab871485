package driven

import "github.com/custodia-labs/sercha-datasync/internal/core/domain"

// AuthAdapter handles the cryptographic side of admin authentication.
// Principals come from configuration, there is no user store.
type AuthAdapter interface {
	// Password operations
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	// Token operations
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
