package stats

import (
	"fmt"
	"strings"

	"github.com/supporthub/backend/internal/models"
)

const noSpikeMarker = "بدون spike مشخص"

// BuildStatsText renders the aggregate tuple into the fixed-format stats
// block fed to the summarization service. Same inputs, same bytes: the
// downstream prompt expects all five line categories, so the spike line is
// always emitted, with an explicit marker when nothing spiked.
func BuildStatsText(total int, issues, cities, centers []Entry, spikes []BucketCount) string {
	var b strings.Builder
	fmt.Fprintf(&b, "آمار کل: %d فیدبک\n", total)
	fmt.Fprintf(&b, "مشکلات پرتکرار: %s\n", joinEntries(issues))
	fmt.Fprintf(&b, "شهرهای پرتکرار: %s\n", joinEntries(cities))
	fmt.Fprintf(&b, "مراکز پرتکرار: %s\n", joinEntries(centers))
	if len(spikes) == 0 {
		b.WriteString(noSpikeMarker)
	} else {
		parts := make([]string, 0, len(spikes))
		for _, s := range spikes {
			parts = append(parts, fmt.Sprintf("%s(%d فیدبک)", s.Start.Format("15:04"), s.Count))
		}
		fmt.Fprintf(&b, "اوج تماس: %s", strings.Join(parts, ", "))
	}
	return b.String()
}

func joinEntries(entries []Entry) string {
	if len(entries) == 0 {
		return "—"
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s(%d)", e.Label, e.Count))
	}
	return strings.Join(parts, ", ")
}

// Overview bundles every aggregate the analytics screens chart from one
// fetched record set.
type Overview struct {
	Total    int           `json:"total"`
	Issues   []Entry       `json:"issues"`
	Cities   []Entry       `json:"cities"`
	Centers  []Entry       `json:"centers"`
	Timeline []BucketCount `json:"timeline"`
	Spikes   []BucketCount `json:"spikes"`
}

// BuildOverview recomputes all chart aggregates from scratch over an
// immutable snapshot of records. The chart K values match what each panel
// can legibly render.
func BuildOverview(b Bucketer, records []models.Feedback) Overview {
	buckets := b.Count(records)
	return Overview{
		Total:    len(records),
		Issues:   TopN(records, IssueType, 8),
		Cities:   TopN(records, City, 10),
		Centers:  TopN(records, Center, 10),
		Timeline: Series(buckets),
		Spikes:   Spikes(buckets),
	}
}

// PromptStats builds the summarization payload; the prompt rankings run
// deeper on issues and cities than the charts and shallower on centers.
func PromptStats(b Bucketer, records []models.Feedback) string {
	buckets := b.Count(records)
	return BuildStatsText(
		len(records),
		TopN(records, IssueType, 10),
		TopN(records, City, 10),
		TopN(records, Center, 5),
		Spikes(buckets),
	)
}
