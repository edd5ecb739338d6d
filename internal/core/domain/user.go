package domain

import "time"

// RoleUser is assigned to every account at creation time.
const RoleUser = "user"

// User mirrors the persisted representation in the users table, with the
// role set aggregated from user_roles.
type User struct {
	ID            string
	Email         string
	Name          *string
	Image         *string
	EmailVerified *time.Time
	// PasswordHash is empty for accounts created through an OAuth provider.
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy of the user with credential material removed.
// Orchestrator responses must never carry the password hash.
func (u User) Sanitized() User {
	clean := u
	clean.PasswordHash = ""
	return clean
}

// HasRole reports whether the user carries the named role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Account links a user to an external OAuth identity.
// (Provider, ProviderAccountID) is unique across all accounts.
type Account struct {
	ID                string
	UserID            string
	Provider          string
	ProviderAccountID string
	CreatedAt         time.Time
}
