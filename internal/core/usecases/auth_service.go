package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/core/ports"
	"github.com/samirrijal/turismap/internal/pkg/token"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthService handles registration, login and session tokens.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	tokens     *token.Manager
	bcryptCost int
}

// NewAuthService creates a new AuthService. sessions may be nil, in which
// case logout cannot revoke tokens.
func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, tokens *token.Manager, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, sessions: sessions, tokens: tokens, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("", "Email y contraseña son requeridos")
	}
	if len(password) < MinPasswordLength {
		return nil, domain.NewValidationError("password", fmt.Sprintf("La contraseña debe tener al menos %d caracteres", MinPasswordLength))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Email: email, PasswordHash: string(hash)}
	if n := strings.TrimSpace(name); n != "" {
		user.Name = &n
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("", "Email y contraseña son requeridos")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	signed, _, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: signed, User: user}, nil
}

// Authenticate parses a bearer token and rejects revoked sessions. Session
// store failures are logged and the token is accepted.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*token.Claims, error) {
	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if s.sessions != nil && claims.ID != "" {
		revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
		if err != nil {
			slog.WarnContext(ctx, "session store unavailable", "error", err)
		} else if revoked {
			return nil, domain.ErrUnauthorized
		}
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *token.Claims) error {
	if s.sessions == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > ttl {
			ttl = remaining
		}
	}
	if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Me returns the account behind the session.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
