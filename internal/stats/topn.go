package stats

import (
	"sort"

	"github.com/supporthub/backend/internal/models"
)

// OtherLabel is the synthesized tail entry folding everything past the top K.
const OtherLabel = "سایر"

type Entry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func IssueType(f models.Feedback) string { return f.IssueType }

func City(f models.Feedback) string {
	if f.City == nil {
		return ""
	}
	return *f.City
}

func Center(f models.Feedback) string {
	if f.CenterName == nil {
		return ""
	}
	return *f.CenterName
}

// TopN counts records per extracted label, skipping records where the label
// is empty, and returns the K highest counts descending. Ties keep the
// first-encountered label first, so identical input ordering always yields
// identical output. Counts past the top K are folded into a single
// OtherLabel entry, appended only when strictly positive.
func TopN(records []models.Feedback, extract func(models.Feedback) string, k int) []Entry {
	counts := map[string]int{}
	var order []string
	for _, f := range records {
		label := extract(f)
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	entries := make([]Entry, 0, len(order))
	for _, label := range order {
		entries = append(entries, Entry{Label: label, Count: counts[label]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if len(entries) <= k {
		return entries
	}
	other := 0
	for _, e := range entries[k:] {
		other += e.Count
	}
	entries = entries[:k:k]
	if other > 0 {
		entries = append(entries, Entry{Label: OtherLabel, Count: other})
	}
	return entries
}
