package ports

import (
	"context"

	"github.com/hapl/fieldsales/internal/core/domain"
)

// LoginInput carries the credentials and the role the caller wants to act as.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// UserInfo is the account summary returned at login.
type UserInfo struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Email        string `json:"email"`
	ManagerEmail string `json:"managerEmail"`
	ManagerID    string `json:"managerId"`
}

// LoginResult holds the issued credentials. Expiries are lifetimes in seconds.
type LoginResult struct {
	AccessToken        string   `json:"accessToken"`
	AccessTokenExpiry  string   `json:"accessTokenExpiry"`
	RefreshToken       string   `json:"refreshToken"`
	RefreshTokenExpiry string   `json:"refreshTokenExpiry"`
	SessionToken       string   `json:"sessionToken"`
	SessionTokenExpiry string   `json:"sessionTokenExpiry"`
	UserInfo           UserInfo `json:"userInfo"`
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, id *domain.Identity) error
	// Authenticate resolves a bearer token to an identity.
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}
