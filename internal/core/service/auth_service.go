package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/ports"
)

const (
	defaultTokenTTL = 72 * time.Hour

	pbkdf2Iterations = 1000
	pbkdf2KeyLen     = 64
)

// tokenClaims keeps the {data: {id, currentRole}} payload existing clients
// decode. Session binds the token to the login that issued it.
type tokenClaims struct {
	Data    tokenData `json:"data"`
	Session string    `json:"sid"`
	jwt.RegisteredClaims
}

type tokenData struct {
	ID          string `json:"id"`
	CurrentRole string `json:"currentRole"`
}

// AuthService implements login, logout and bearer token resolution.
type AuthService struct {
	repo      ports.AuthRepository
	sessions  ports.SessionStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(repo ports.AuthRepository, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	role := strings.TrimSpace(in.Role)
	if email == "" || in.Password == "" || role == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.log.Error().Err(err).Msg("login: user lookup failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	if !verifyPassword(in.Password, user.Salt, user.Hash) {
		return nil, domain.ErrInvalidCredentials
	}

	roles := user.Roles()
	if !domain.HasRole(roles, role) {
		return nil, domain.ErrInvalidRole
	}

	if !domain.IsUnrestricted(role) || !allUnrestricted(roles) {
		if err := s.requireActive(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	session := fmt.Sprintf("%s.%s.%d", user.ID, uuid.NewString(), now.UnixMilli())
	access, err := s.sign(user.ID, role, session, now)
	if err != nil {
		return nil, fmt.Errorf("login: sign access token: %w", err)
	}
	refresh, err := s.sign(user.ID, role, session, now)
	if err != nil {
		return nil, fmt.Errorf("login: sign refresh token: %w", err)
	}
	expiry := strconv.FormatInt(int64(s.tokenTTL/time.Second), 10)

	if err := s.repo.SaveTokens(ctx, &domain.AuthTokens{
		UserID:             user.ID,
		AccessToken:        access,
		RefreshToken:       refresh,
		AccessTokenExpiry:  expiry,
		RefreshTokenExpiry: expiry,
		UpdatedAt:          now,
	}); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("login: saving tokens failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.sessions.Save(ctx, user.ID, session, s.tokenTTL); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("login: saving session failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	managerEmail, managerID := user.ManagerEmail, user.ManagerID
	if domain.IsUnrestricted(role) {
		managerEmail, managerID = user.Email, user.ID
	}

	s.log.Info().Str("user_id", user.ID).Str("role", role).Msg("user logged in")

	return &ports.LoginResult{
		AccessToken:        access,
		AccessTokenExpiry:  expiry,
		RefreshToken:       refresh,
		RefreshTokenExpiry: expiry,
		SessionToken:       session,
		SessionTokenExpiry: expiry,
		UserInfo: ports.UserInfo{
			ID:           user.ID,
			Username:     user.Username,
			Name:         user.Name,
			Role:         role,
			Email:        user.Email,
			ManagerEmail: managerEmail,
			ManagerID:    managerID,
		},
	}, nil
}

func (s *AuthService) requireActive(ctx context.Context, userID string) error {
	info, err := s.repo.FindVerification(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrProfileInactive
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("login: verification lookup failed")
		return fmt.Errorf("login: %w", err)
	}
	if !info.IsActive {
		return domain.ErrProfileInactive
	}
	return nil
}

// Logout revokes the caller's session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, id *domain.Identity) error {
	if !id.Authenticated() {
		return domain.ErrUnauthorized
	}
	if err := s.sessions.Delete(ctx, id.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", id.ID).Msg("logout: deleting session failed")
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate verifies token, requires it to carry the user's live session
// and loads the user from the directory. Tokens from a replaced or revoked
// login are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid || claims.Data.ID == "" || claims.Session == "" {
		return nil, domain.ErrUnauthorized
	}

	live, err := s.sessions.Get(ctx, claims.Data.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Str("user_id", claims.Data.ID).Msg("authenticate: session lookup failed")
		}
		return nil, domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(live), []byte(claims.Session)) != 1 {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, claims.Data.ID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return domain.NewIdentity(user, claims.Data.CurrentRole), nil
}

func (s *AuthService) sign(userID, role, session string, now time.Time) (string, error) {
	claims := tokenClaims{
		Data:    tokenData{ID: userID, CurrentRole: role},
		Session: session,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func allUnrestricted(roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if !domain.IsUnrestricted(r) {
			return false
		}
	}
	return true
}

// verifyPassword checks a pbkdf2-sha512 hex digest when a salt is stored and a
// bcrypt hash otherwise.
func verifyPassword(password, salt, hash string) bool {
	if hash == "" {
		return false
	}
	if salt == "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(HashPassword(password, salt)), []byte(hash)) == 1
}

// HashPassword derives the stored hex digest for password and salt.
func HashPassword(password, salt string) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New))
}
