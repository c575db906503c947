package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/supporthub/backend/internal/models"
)

var ErrNoActivePhase = errors.New("no active phase")

type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Field)
}

type PhaseLookup interface {
	ActivePhase(ctx context.Context) (*models.Phase, error)
}

type FeedbackWriter interface {
	InsertFeedback(ctx context.Context, f models.Feedback) (models.Feedback, error)
}

type Notifier interface {
	Publish()
}

// IntakeService accepts agent submissions against the currently open phase.
type IntakeService struct {
	Phases PhaseLookup
	Store  FeedbackWriter
	Bus    Notifier
	Logger zerolog.Logger
}

// Submission carries the raw form fields. Which branch of the
// customer/SIM fields is kept follows IsMobileIssue; the other branch is
// dropped regardless of what the client sent.
type Submission struct {
	IssueType         string `json:"issue_type" validate:"required"`
	City              string `json:"city" validate:"required"`
	CenterName        string `json:"center_name"`
	CustomerID        string `json:"customer_id"`
	CustomerIP        string `json:"customer_ip"`
	SimCardNumber     string `json:"sim_card_number"`
	ConnectedOperator string `json:"connected_operator"`
	Area              string `json:"area"`
	Description       string `json:"description"`
	IsMobileIssue     bool   `json:"is_mobile_issue"`
}

// Submit validates, gates on the open phase, and only then writes. A
// missing phase or field never reaches storage.
func (s *IntakeService) Submit(ctx context.Context, sub Submission, createdBy string) (models.Feedback, error) {
	if strings.TrimSpace(sub.IssueType) == "" {
		return models.Feedback{}, ValidationError{Field: "issue_type"}
	}
	if strings.TrimSpace(sub.City) == "" {
		return models.Feedback{}, ValidationError{Field: "city"}
	}

	phase, err := s.Phases.ActivePhase(ctx)
	if err != nil {
		return models.Feedback{}, err
	}
	if phase == nil {
		return models.Feedback{}, ErrNoActivePhase
	}

	f := models.Feedback{
		PhaseID:       phase.ID,
		IssueType:     sub.IssueType,
		City:          optional(sub.City),
		Description:   optional(sub.Description),
		CreatedBy:     createdBy,
		IsMobileIssue: sub.IsMobileIssue,
	}
	if sub.IsMobileIssue {
		f.SimCardNumber = optional(sub.SimCardNumber)
		f.ConnectedOperator = optional(sub.ConnectedOperator)
		f.Area = optional(sub.Area)
	} else {
		f.CustomerID = optional(sub.CustomerID)
		f.CustomerIP = optional(sub.CustomerIP)
		f.CenterName = optional(sub.CenterName)
	}

	inserted, err := s.Store.InsertFeedback(ctx, f)
	if err != nil {
		return models.Feedback{}, err
	}
	s.Logger.Info().
		Str("feedback_id", inserted.ID).
		Str("phase_id", inserted.PhaseID).
		Str("issue_type", inserted.IssueType).
		Bool("mobile", inserted.IsMobileIssue).
		Msg("feedback submitted")
	if s.Bus != nil {
		s.Bus.Publish()
	}
	return inserted, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
