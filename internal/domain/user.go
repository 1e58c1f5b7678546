package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the identity carried by a verified access token. Accounts live in
// the hosted auth service; this backend only reads the claims.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
