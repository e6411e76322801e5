package driven

import "github.com/mixinforge/mixinengine/internal/core/domain"

// AuthAdapter backs the admin HTTP API's login and bearer-token checks.
type AuthAdapter interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
	GenerateToken(claims *domain.AdminClaims) (string, error)
	ParseToken(tokenString string) (*domain.AdminClaims, error)
}
