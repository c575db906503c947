package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/supporthub/backend/internal/models"
)

// DefaultBucketWidth is the window used by the dashboard timeline and the
// spike detector.
const DefaultBucketWidth = 10 * time.Minute

type Bucketer struct {
	width time.Duration
}

// NewBucketer rejects widths that do not evenly divide an hour, so a bad
// width is caught at wiring time rather than on every aggregation pass.
func NewBucketer(width time.Duration) (Bucketer, error) {
	mins := int(width / time.Minute)
	if width%time.Minute != 0 || mins <= 0 || 60%mins != 0 {
		return Bucketer{}, fmt.Errorf("bucket width %s must evenly divide 60 minutes", width)
	}
	return Bucketer{width: width}, nil
}

// Key truncates t to the start of its bucket, normalized to UTC.
func (b Bucketer) Key(t time.Time) time.Time {
	u := t.UTC()
	mins := int(b.width / time.Minute)
	bucketMin := (u.Minute() / mins) * mins
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), bucketMin, 0, 0, time.UTC)
}

// Count groups records into sparse per-bucket counts. Buckets with no
// records are not materialized.
func (b Bucketer) Count(records []models.Feedback) map[time.Time]int {
	buckets := map[time.Time]int{}
	for _, f := range records {
		buckets[b.Key(f.CreatedAt)]++
	}
	return buckets
}

type BucketCount struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Series orders buckets ascending by start time, for charting.
func Series(buckets map[time.Time]int) []BucketCount {
	out := make([]BucketCount, 0, len(buckets))
	for start, count := range buckets {
		out = append(out, BucketCount{Start: start, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// Ranked orders buckets descending by count; equal counts fall back to
// earlier start first so the ordering is reproducible.
func Ranked(buckets map[time.Time]int) []BucketCount {
	out := make([]BucketCount, 0, len(buckets))
	for start, count := range buckets {
		out = append(out, BucketCount{Start: start, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Count > out[j].Count
	})
	return out
}
