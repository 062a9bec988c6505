package ports

import (
	"context"
	"time"

	"github.com/hapl/fieldsales/internal/core/domain"
)

// AuthRepository is the user directory plus the per-user auth records written at login.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// SubordinateEmails returns the emails of users whose manager email equals
	// managerEmail, ignoring case.
	SubordinateEmails(ctx context.Context, managerEmail string) ([]string, error)
	// FindVerification returns domain.ErrNotFound when the user has no record.
	FindVerification(ctx context.Context, userID string) (*domain.VerificationInfo, error)
	// SaveTokens inserts or replaces the user's token record.
	SaveTokens(ctx context.Context, tokens *domain.AuthTokens) error
}

// SessionStore keeps one live session token per user.
type SessionStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}
