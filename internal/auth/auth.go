package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/supporthub/backend/internal/models"
)

var (
	ErrDomainNotAllowed   = errors.New("email domain not allowed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Store is the slice of the storage collaborator the auth flow touches.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	GetUserRole(ctx context.Context, userID string) (string, error)
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (models.Session, error)
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Identity is the explicit per-request context object: resolved once per
// sign-in or token lookup and passed along, never held in a package global.
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

type Service struct {
	Store      Store
	Domain     string
	SessionTTL time.Duration
}

// AllowedEmail is the client-side domain pre-check; the credential store is
// never consulted for an address outside the allowed suffix.
func (s *Service) AllowedEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), strings.ToLower(s.Domain))
}

func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (models.User, error) {
	if !s.AllowedEmail(email) {
		return models.User{}, ErrDomainNotAllowed
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	return s.Store.CreateUser(ctx, strings.ToLower(strings.TrimSpace(email)), string(hash), fullName)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if !s.AllowedEmail(email) {
		return Identity{}, ErrDomainNotAllowed
	}
	user, err := s.Store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}
	sess, err := s.Store.CreateSession(ctx, user.ID, s.SessionTTL)
	if err != nil {
		return Identity{}, err
	}
	ident, err := s.resolve(ctx, user.ID)
	if err != nil {
		return Identity{}, err
	}
	ident.Token = sess.Token
	return ident, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.Store.DeleteSession(ctx, token)
}

// Identify resolves a bearer token into the request identity.
func (s *Service) Identify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNotAuthenticated
	}
	sess, err := s.Store.GetSession(ctx, token)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}
	return s.resolve(ctx, sess.UserID)
}

func (s *Service) resolve(ctx context.Context, userID string) (Identity, error) {
	profile, err := s.Store.GetProfile(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	role, err := s.Store.GetUserRole(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:   userID,
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     role,
	}, nil
}
