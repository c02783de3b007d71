package models

import "time"

// Roles a user may hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account allowed to manage the catalog.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// UserClaims is the identity embedded in access tokens and exposed by the profile endpoint.
type UserClaims struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Claims returns the token identity for u.
func (u *User) Claims() UserClaims {
	return UserClaims{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

// ValidRole reports whether role is one the users table accepts.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// RefreshRequest carries the token to renew.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User      UserClaims `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn string     `json:"expiresIn"`
}
