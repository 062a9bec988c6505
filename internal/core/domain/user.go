package domain

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super admin"
)

// User models an account in the user directory.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	Username     string    `json:"username" bson:"username"`
	Role         string    `json:"role" bson:"role"`
	ManagerEmail string    `json:"managerEmail,omitempty" bson:"manager_email,omitempty"`
	ManagerID    string    `json:"managerId,omitempty" bson:"manager_id,omitempty"`
	Hash         string    `json:"-" bson:"hash"`
	Salt         string    `json:"-" bson:"salt"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// Roles returns the normalized role set stored on the account.
func (u *User) Roles() []string {
	return ParseRoles(u.Role)
}

// Identity is the caller resolved from a bearer credential. It is built once
// per request and never re-parsed downstream.
type Identity struct {
	ID           string
	Email        string
	Name         string
	Username     string
	CurrentRole  string
	Roles        []string
	ManagerEmail string
	ManagerID    string
}

// Authenticated reports whether the identity carries the fields every
// authenticated request must have.
func (i *Identity) Authenticated() bool {
	return i != nil && strings.TrimSpace(i.CurrentRole) != "" && strings.TrimSpace(i.Email) != ""
}

// NewIdentity builds an Identity from a directory user and the role selected at login.
func NewIdentity(u *User, currentRole string) *Identity {
	return &Identity{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Username:     u.Username,
		CurrentRole:  currentRole,
		Roles:        u.Roles(),
		ManagerEmail: u.ManagerEmail,
		ManagerID:    u.ManagerID,
	}
}

// NormalizeRole trims and lowercases a role name.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// IsUnrestricted reports whether role bypasses visibility filtering.
func IsUnrestricted(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// HasRole reports whether role is one of roles, ignoring case and surrounding space.
func HasRole(roles []string, role string) bool {
	want := NormalizeRole(role)
	for _, r := range roles {
		if NormalizeRole(r) == want {
			return true
		}
	}
	return false
}

// ParseRoles normalizes the stored role field into a role set. The field may be
// a plain role name, a JSON array, or a JSON string that itself holds a JSON
// array. Order is preserved; blanks and case-insensitive duplicates are dropped.
func ParseRoles(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err == nil {
			return ParseRoles(inner)
		}
		list = []string{raw}
	}

	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, r := range list {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		key := NormalizeRole(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// VerificationInfo records whether a restricted account has been activated.
type VerificationInfo struct {
	UserID   string `bson:"user_id"`
	IsActive bool   `bson:"is_active"`
}

// AuthTokens is the persisted record of the last tokens issued to a user.
type AuthTokens struct {
	UserID             string    `bson:"user_id"`
	AccessToken        string    `bson:"access_token"`
	RefreshToken       string    `bson:"refresh_token"`
	AccessTokenExpiry  string    `bson:"access_token_expiry"`
	RefreshTokenExpiry string    `bson:"refresh_token_expiry"`
	UpdatedAt          time.Time `bson:"updated_at"`
}
