package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/ports"
)

type stubAuthRepo struct {
	users    map[string]*domain.User
	verified map[string]bool
	tokens   map[string]*domain.AuthTokens
	findErr  error
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		users:    make(map[string]*domain.User),
		verified: make(map[string]bool),
		tokens:   make(map[string]*domain.AuthTokens),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) add(u *domain.User, active bool) {
	r.users[u.ID] = cloneUser(u)
	r.verified[u.ID] = active
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) SubordinateEmails(_ context.Context, managerEmail string) ([]string, error) {
	var out []string
	for _, u := range r.users {
		if strings.EqualFold(u.ManagerEmail, managerEmail) {
			out = append(out, u.Email)
		}
	}
	return out, nil
}

func (r *stubAuthRepo) FindVerification(_ context.Context, userID string) (*domain.VerificationInfo, error) {
	active, ok := r.verified[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.VerificationInfo{UserID: userID, IsActive: active}, nil
}

func (r *stubAuthRepo) SaveTokens(_ context.Context, t *domain.AuthTokens) error {
	clone := *t
	r.tokens[t.UserID] = &clone
	return nil
}

type stubSessions struct {
	byUser map[string]string
	ttl    time.Duration
}

func newStubSessions() *stubSessions {
	return &stubSessions{byUser: make(map[string]string)}
}

func (s *stubSessions) Save(_ context.Context, userID, token string, ttl time.Duration) error {
	s.byUser[userID] = token
	s.ttl = ttl
	return nil
}

func (s *stubSessions) Get(_ context.Context, userID string) (string, error) {
	t, ok := s.byUser[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return t, nil
}

func (s *stubSessions) Delete(_ context.Context, userID string) error {
	delete(s.byUser, userID)
	return nil
}

func loginInput(email, password, role string) ports.LoginInput {
	return ports.LoginInput{Email: email, Password: password, Role: role}
}

func newTestAuthService() (*AuthService, *stubAuthRepo, *stubSessions) {
	repo := newStubAuthRepo()
	sessions := newStubSessions()
	return NewAuthService(repo, sessions, "secret", 72*time.Hour, zerolog.Nop()), repo, sessions
}

func salesUser() *domain.User {
	return &domain.User{
		ID:           "u1",
		Email:        "asha@hapl.in",
		Name:         "Asha",
		Username:     "asha",
		Role:         `"[\"Sales\",\"Visit Admin\"]"`,
		ManagerEmail: "boss@hapl.in",
		ManagerID:    "m1",
		Salt:         "pepper",
		Hash:         HashPassword("s3cret", "pepper"),
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, sessions := newTestAuthService()
	repo.add(salesUser(), true)

	res, err := svc.Login(context.Background(), loginInput("asha@hapl.in", "s3cret", "sales"))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", res)
	}
	if res.AccessTokenExpiry != "259200" {
		t.Fatalf("expected 3-day expiry in seconds, got %s", res.AccessTokenExpiry)
	}
	if res.UserInfo.ManagerEmail != "boss@hapl.in" || res.UserInfo.Role != "sales" {
		t.Fatalf("unexpected user info: %+v", res.UserInfo)
	}
	if !strings.HasPrefix(res.SessionToken, "u1.") {
		t.Fatalf("session token should start with the user id, got %s", res.SessionToken)
	}
	if sessions.byUser["u1"] != res.SessionToken || sessions.ttl != 72*time.Hour {
		t.Fatalf("session not stored: %+v", sessions)
	}
	if repo.tokens["u1"] == nil || repo.tokens["u1"].AccessToken != res.AccessToken {
		t.Fatalf("token record not saved")
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(res.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Data.ID != "u1" || claims.Data.CurrentRole != "sales" {
		t.Fatalf("unexpected claims: %+v", claims.Data)
	}
}

func TestAuthService_Login_AdminGetsOwnManagerFields(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	u := salesUser()
	u.Role = `["Admin"]`
	repo.add(u, false)
	delete(repo.verified, u.ID)

	res, err := svc.Login(context.Background(), loginInput("asha@hapl.in", "s3cret", "admin"))
	if err != nil {
		t.Fatalf("admin login should not need verification: %v", err)
	}
	if res.UserInfo.ManagerEmail != u.Email || res.UserInfo.ManagerID != u.ID {
		t.Fatalf("expected own email/id as manager fields, got %+v", res.UserInfo)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.add(salesUser(), true)

	inactive := salesUser()
	inactive.ID = "u2"
	inactive.Email = "idle@hapl.in"
	repo.add(inactive, false)

	unverified := salesUser()
	unverified.ID = "u3"
	unverified.Email = "new@hapl.in"
	repo.add(unverified, true)
	delete(repo.verified, "u3")

	cases := []struct {
		name                  string
		email, password, role string
		want                  error
	}{
		{"unknown email", "ghost@hapl.in", "s3cret", "sales", domain.ErrInvalidCredentials},
		{"bad password", "asha@hapl.in", "nope", "sales", domain.ErrInvalidCredentials},
		{"missing role", "asha@hapl.in", "s3cret", "", domain.ErrInvalidCredentials},
		{"role not held", "asha@hapl.in", "s3cret", "admin", domain.ErrInvalidRole},
		{"inactive profile", "idle@hapl.in", "s3cret", "sales", domain.ErrProfileInactive},
		{"no verification record", "new@hapl.in", "s3cret", "visit admin", domain.ErrProfileInactive},
	}
	for _, tc := range cases {
		if _, err := svc.Login(context.Background(), loginInput(tc.email, tc.password, tc.role)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestAuthService_Login_BcryptHashWithoutSalt(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := salesUser()
	u.Salt = ""
	u.Hash = string(hash)
	repo.add(u, true)

	if _, err := svc.Login(context.Background(), loginInput("asha@hapl.in", "s3cret", "Sales")); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.add(salesUser(), true)

	res, err := svc.Login(context.Background(), loginInput("asha@hapl.in", "s3cret", "sales"))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	id, err := svc.Authenticate(context.Background(), res.AccessToken)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if id.Email != "asha@hapl.in" || id.CurrentRole != "sales" || len(id.Roles) != 2 {
		t.Fatalf("unexpected identity: %+v", id)
	}

	if err := svc.Logout(context.Background(), id); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if err := svc.Logout(context.Background(), id); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), res.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestAuthService_Authenticate_RejectsReplacedSession(t *testing.T) {
	svc, repo, sessions := newTestAuthService()
	repo.add(salesUser(), true)

	first, err := svc.Login(context.Background(), loginInput("asha@hapl.in", "s3cret", "sales"))
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	second, err := svc.Login(context.Background(), loginInput("asha@hapl.in", "s3cret", "sales"))
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if first.SessionToken == second.SessionToken {
		t.Fatalf("expected a new session per login")
	}
	if sessions.byUser["u1"] != second.SessionToken {
		t.Fatalf("live session should be the latest login")
	}

	if _, err := svc.Authenticate(context.Background(), first.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected the replaced token to be rejected, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), second.AccessToken); err != nil {
		t.Fatalf("current token rejected: %v", err)
	}
}

func TestAuthService_Authenticate_RequiresSessionClaim(t *testing.T) {
	svc, repo, sessions := newTestAuthService()
	repo.add(salesUser(), true)
	sessions.byUser["u1"] = "u1.live.1"

	tok, err := svc.sign("u1", "sales", "", time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	tok, err = svc.sign("u1", "sales", "u1.live.1", time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), tok); err != nil {
		t.Fatalf("token bound to the live session rejected: %v", err)
	}
}

func TestAuthService_Authenticate_RejectsForeignToken(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.add(salesUser(), true)

	other := NewAuthService(repo, newStubSessions(), "another-secret", time.Hour, zerolog.Nop())
	tok, err := other.sign("u1", "sales", "u1.s.1", time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "not-a-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_DirectoryFailure(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	repo.findErr = errors.New("connection reset")

	_, err := svc.Login(context.Background(), loginInput("asha@hapl.in", "s3cret", "sales"))
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected an internal error, got %v", err)
	}
}
