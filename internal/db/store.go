package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supporthub/backend/internal/models"
)

// feedbackPageSize caps every filtered list query; callers needing more
// would have to page, which the dashboard does not do.
const feedbackPageSize = 500

var (
	ErrPhaseAlreadyOpen = errors.New("an open phase already exists")
	ErrPhaseNotOpen     = errors.New("phase is not open")
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FeedbackFilters is the read-side query specification. Every populated
// field narrows the result set; Search fans out across the four identifier
// and description sub-fields.
type FeedbackFilters struct {
	PhaseID    string
	DateFrom   *time.Time
	DateTo     *time.Time
	IssueTypes []string
	City       string
	CenterName string
	CreatedBy  string
	Search     string
}

const feedbackColumns = `id, phase_id, issue_type, city, center_name, customer_id, customer_ip,
	sim_card_number, connected_operator, area, description, created_by, created_at, is_mobile_issue`

func buildFeedbackQuery(f FeedbackFilters) (string, []any) {
	query := `SELECT ` + feedbackColumns + ` FROM feedbacks`
	var args []any
	var wheres []string
	if f.PhaseID != "" {
		args = append(args, f.PhaseID)
		wheres = append(wheres, fmt.Sprintf("phase_id = $%d", len(args)))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		wheres = append(wheres, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		wheres = append(wheres, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(f.IssueTypes) > 0 {
		args = append(args, f.IssueTypes)
		wheres = append(wheres, fmt.Sprintf("issue_type = ANY($%d)", len(args)))
	}
	if f.City != "" {
		args = append(args, f.City)
		wheres = append(wheres, fmt.Sprintf("city = $%d", len(args)))
	}
	if f.CenterName != "" {
		args = append(args, "%"+f.CenterName+"%")
		wheres = append(wheres, fmt.Sprintf("center_name ILIKE $%d", len(args)))
	}
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		wheres = append(wheres, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		wheres = append(wheres, fmt.Sprintf(
			"(customer_id ILIKE $%d OR customer_ip ILIKE $%d OR sim_card_number ILIKE $%d OR description ILIKE $%d)",
			n, n, n, n))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", feedbackPageSize)
	return query, args
}

func (s *Store) ListFeedbacks(ctx context.Context, filters FeedbackFilters) ([]models.Feedback, error) {
	query, args := buildFeedbackQuery(filters)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(
			&f.ID, &f.PhaseID, &f.IssueType, &f.City, &f.CenterName, &f.CustomerID, &f.CustomerIP,
			&f.SimCardNumber, &f.ConnectedOperator, &f.Area, &f.Description, &f.CreatedBy, &f.CreatedAt, &f.IsMobileIssue,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) InsertFeedback(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO feedbacks (id, phase_id, issue_type, city, center_name, customer_id, customer_ip,
			sim_card_number, connected_operator, area, description, created_by, created_at, is_mobile_issue)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, f.ID, f.PhaseID, f.IssueType, f.City, f.CenterName, f.CustomerID, f.CustomerIP,
		f.SimCardNumber, f.ConnectedOperator, f.Area, f.Description, f.CreatedBy, f.CreatedAt, f.IsMobileIssue)
	return f, err
}

func (s *Store) ListPhases(ctx context.Context) ([]models.Phase, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, title, status, created_at, closed_at, created_by FROM phases ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Phase
	for rows.Next() {
		var p models.Phase
		if err := rows.Scan(&p.ID, &p.Title, &p.Status, &p.CreatedAt, &p.ClosedAt, &p.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ActivePhase returns the single OPEN phase, or nil when none is open.
func (s *Store) ActivePhase(ctx context.Context) (*models.Phase, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, title, status, created_at, closed_at, created_by
		FROM phases WHERE status = $1 ORDER BY created_at DESC LIMIT 1
	`, models.PhaseOpen)
	var p models.Phase
	if err := row.Scan(&p.ID, &p.Title, &p.Status, &p.CreatedAt, &p.ClosedAt, &p.CreatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreatePhase opens a new phase. The open-phase check runs inside the insert
// transaction with the OPEN rows locked, so two concurrent creates cannot
// both succeed; the partial unique index in schema.sql backstops it.
func (s *Store) CreatePhase(ctx context.Context, title, createdBy string) (models.Phase, error) {
	var p models.Phase
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var openID string
		err := tx.QueryRow(ctx, `SELECT id FROM phases WHERE status = $1 FOR UPDATE`, models.PhaseOpen).Scan(&openID)
		if err == nil {
			return ErrPhaseAlreadyOpen
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO phases (id, title, status, created_at, created_by)
			VALUES ($1, $2, $3, NOW(), $4)
			RETURNING id, title, status, created_at, closed_at, created_by
		`, uuid.NewString(), title, models.PhaseOpen, createdBy).
			Scan(&p.ID, &p.Title, &p.Status, &p.CreatedAt, &p.ClosedAt, &p.CreatedBy)
	})
	return p, err
}

// ClosePhase transitions OPEN to CLOSED exactly once; closing anything else
// fails with ErrPhaseNotOpen.
func (s *Store) ClosePhase(ctx context.Context, phaseID string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE phases SET status = $1, closed_at = NOW() WHERE id = $2 AND status = $3
	`, models.PhaseClosed, phaseID, models.PhaseOpen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPhaseNotOpen
	}
	return nil
}

func (s *Store) ListIssueTypes(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT name FROM issue_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.Pool.Query(ctx, `SELECT user_id, full_name, email FROM profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
