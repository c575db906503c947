package db

import (
	"strings"
	"testing"
	"time"
)

func TestBuildFeedbackQueryNoFilters(t *testing.T) {
	query, args := buildFeedbackQuery(FeedbackFilters{})
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
	if strings.Contains(query, "WHERE") {
		t.Fatalf("unset fields must impose no constraint: %s", query)
	}
	if !strings.Contains(query, "ORDER BY created_at DESC LIMIT 500") {
		t.Fatalf("expected newest-first capped query: %s", query)
	}
}

func TestBuildFeedbackQueryConjunction(t *testing.T) {
	from := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	query, args := buildFeedbackQuery(FeedbackFilters{
		PhaseID:    "phase-1",
		DateFrom:   &from,
		DateTo:     &to,
		IssueTypes: []string{"قطعی", "کندی"},
		City:       "تهران",
		CenterName: "مرکز",
		CreatedBy:  "user-1",
	})
	if len(args) != 7 {
		t.Fatalf("expected 7 args, got %d: %v", len(args), args)
	}
	for _, clause := range []string{
		"phase_id = $1",
		"created_at >= $2",
		"created_at <= $3",
		"issue_type = ANY($4)",
		"city = $5",
		"center_name ILIKE $6",
		"created_by = $7",
	} {
		if !strings.Contains(query, clause) {
			t.Fatalf("missing clause %q in %s", clause, query)
		}
	}
	if strings.Count(query, " AND ") != 6 {
		t.Fatalf("populated fields must compose with AND: %s", query)
	}
	if args[5] != "%مرکز%" {
		t.Fatalf("center filter must be a substring match, got %v", args[5])
	}
}

func TestBuildFeedbackQuerySearchDisjunction(t *testing.T) {
	query, args := buildFeedbackQuery(FeedbackFilters{Search: "1234"})
	if len(args) != 1 || args[0] != "%1234%" {
		t.Fatalf("expected single substring arg, got %v", args)
	}
	want := "(customer_id ILIKE $1 OR customer_ip ILIKE $1 OR sim_card_number ILIKE $1 OR description ILIKE $1)"
	if !strings.Contains(query, want) {
		t.Fatalf("search must OR across the four sub-fields: %s", query)
	}
}

func TestBuildFeedbackQuerySearchComposesWithOtherFilters(t *testing.T) {
	query, _ := buildFeedbackQuery(FeedbackFilters{City: "تهران", Search: "1234"})
	cityIdx := strings.Index(query, "city = $1")
	searchIdx := strings.Index(query, "customer_id ILIKE $2")
	if cityIdx == -1 || searchIdx == -1 {
		t.Fatalf("expected both filters present: %s", query)
	}
	if !strings.Contains(query, "city = $1 AND (customer_id ILIKE $2") {
		t.Fatalf("search group must AND with the other filters: %s", query)
	}
}
