package domain

// AdminClaims is the JWT payload for the admin HTTP API. There is a single
// admin credential (spec's operational shell has one operator role, not a
// multi-tenant user model) so Subject is just the configured admin
// username, not a foreign key into a user table.
type AdminClaims struct {
	Subject   string
	IssuedAt  int64
	ExpiresAt int64
}
