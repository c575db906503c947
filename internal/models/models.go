package models

import "time"

const (
	PhaseOpen   = "OPEN"
	PhaseClosed = "CLOSED"
)

const (
	RoleAgent     = "agent"
	RoleShiftLead = "shiftlead"
)

type Feedback struct {
	ID                string    `json:"id"`
	PhaseID           string    `json:"phase_id"`
	IssueType         string    `json:"issue_type"`
	City              *string   `json:"city"`
	CenterName        *string   `json:"center_name"`
	CustomerID        *string   `json:"customer_id"`
	CustomerIP        *string   `json:"customer_ip"`
	SimCardNumber     *string   `json:"sim_card_number"`
	ConnectedOperator *string   `json:"connected_operator"`
	Area              *string   `json:"area"`
	Description       *string   `json:"description"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	IsMobileIssue     bool      `json:"is_mobile_issue"`
}

type Phase struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	CreatedBy string     `json:"created_by"`
}

type Profile struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
