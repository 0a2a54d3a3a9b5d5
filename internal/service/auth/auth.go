// Package auth implements email/password login with PASETO tokens backed by
// revocable server-side sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	pasetotoken "github.com/sarahsindone/sbrp-application/pkg/paseto"
	"github.com/sarahsindone/sbrp-application/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string
	Password string
}

type CreateUserRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string // admin | practitioner
}

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until access token expires
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*repo.User, error)

	CreateUser(ctx context.Context, req CreateUserRequest) (*repo.User, error)

	// SessionActive backs the auth middleware's revocation check.
	SessionActive(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	store    *repo.Store
	sessions SessionStore
	tokens   *pasetotoken.Manager
	hasher   *password.Hasher
	authz    authorize.IAuthorization
	validate *validator.Validate

	minPasswordLength int
	now               func() time.Time
}

type Option func(*authService)

// WithAuthorizer grants Casbin roles to users created through CreateUser.
func WithAuthorizer(a authorize.IAuthorization) Option {
	return func(s *authService) { s.authz = a }
}

func WithMinPasswordLength(n int) Option {
	return func(s *authService) {
		if n > 0 {
			s.minPasswordLength = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *authService) { s.now = now }
}

func New(
	store *repo.Store,
	sessions SessionStore,
	tokens *pasetotoken.Manager,
	hasher *password.Hasher,
	opts ...Option,
) Service {
	s := &authService{
		store:             store,
		sessions:          sessions,
		tokens:            tokens,
		hasher:            hasher,
		validate:          validator.New(),
		minPasswordLength: 8,
		now:               time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Verify(u.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			slog.Warn("auth: stored password hash unreadable", "user_id", u.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	now := s.now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	if s.hasher.NeedsRehash(u.PasswordHash) {
		if h, err := s.hasher.Hash(req.Password); err == nil {
			u.PasswordHash = h
		}
	}
	if err := s.store.Users.Update(ctx, u); err != nil {
		// Not fatal: the login itself succeeded.
		slog.Warn("auth: failed to record login", "user_id", u.ID, "error", err)
	}

	return s.createSession(ctx, u)
}

// ---------------------------------------------------------------------------
// RefreshTokens
// ---------------------------------------------------------------------------

// RefreshTokens issues a new access token. The refresh token is kept until
// logout; the role is re-read so role changes apply on the next refresh.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != pasetotoken.TokenTypeRefresh || claims.SessionID == nil {
		return nil, ErrInvalidToken
	}

	ok, err := s.sessions.Touch(ctx, claims.SessionID.String(), s.tokens.RefreshTTL())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}

	u, err := s.store.Users.Get(ctx, claims.UserID.String())
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	access, err := s.tokens.IssueAccess(pasetotoken.Subject{
		UserID:    claims.UserID,
		Role:      string(u.Role),
		SessionID: claims.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// ---------------------------------------------------------------------------
// Logout / Me / SessionActive
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.sessions.Delete(ctx, sessionID.String())
	if err != nil {
		return err
	}
	if !deleted {
		slog.Debug("logout: session already expired", "session_id", sessionID)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*repo.User, error) {
	u, err := s.store.Users.Get(ctx, userID.String())
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *authService) SessionActive(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return s.sessions.Exists(ctx, sessionID.String())
}

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func (s *authService) CreateUser(ctx context.Context, req CreateUserRequest) (*repo.User, error) {
	email := normalizeEmail(req.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < s.minPasswordLength {
		return nil, fmt.Errorf("%w: minimum %d characters", ErrPasswordTooShort, s.minPasswordLength)
	}
	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, ErrNameRequired
	}
	role := repo.UserRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if _, ok := authorize.RoleFor(string(role)); !ok {
		return nil, ErrInvalidRole
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := &repo.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        email,
		FirstName:    first,
		LastName:     last,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.authz != nil {
		if err := authorize.AssignAppRole(ctx, s.authz, u.ID, string(role)); err != nil {
			return nil, fmt.Errorf("assign role: %w", err)
		}
		if err := authorize.AssignUserSelfRole(ctx, s.authz, u.ID); err != nil {
			return nil, fmt.Errorf("assign self role: %w", err)
		}
	}

	slog.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) createSession(ctx context.Context, u *repo.User) (*AuthTokens, error) {
	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("user id %q: %w", u.ID, err)
	}
	sessionID := uuid.Must(uuid.NewV7())

	if err := s.sessions.Create(ctx, sessionID.String(), u.ID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	sub := pasetotoken.Subject{UserID: userID, Role: string(u.Role), SessionID: &sessionID}
	access, err := s.tokens.IssueAccess(sub)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(sub)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
