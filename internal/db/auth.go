package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/supporthub/backend/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, fullName string) (models.User, error) {
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)
		`, u.ID, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO profiles (user_id, full_name, email) VALUES ($1, $2, $3)
		`, u.ID, fullName, u.Email)
		return err
	})
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	row := s.Pool.QueryRow(ctx, `SELECT user_id, full_name, email FROM profiles WHERE user_id = $1`, userID)
	var p models.Profile
	if err := row.Scan(&p.UserID, &p.FullName, &p.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrUserNotFound
		}
		return models.Profile{}, err
	}
	return p, nil
}

// GetUserRole falls back to the agent role when no explicit role row exists.
func (s *Store) GetUserRole(ctx context.Context, userID string) (string, error) {
	row := s.Pool.QueryRow(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID)
	var role string
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RoleAgent, nil
		}
		return "", err
	}
	return role, nil
}

func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (models.Session, error) {
	sess := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)
	`, sess.Token, sess.UserID, sess.ExpiresAt)
	return sess, err
}

func (s *Store) GetSession(ctx context.Context, token string) (models.Session, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT token, user_id, expires_at FROM sessions WHERE token = $1 AND expires_at > NOW()
	`, token)
	var sess models.Session
	if err := row.Scan(&sess.Token, &sess.UserID, &sess.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}
