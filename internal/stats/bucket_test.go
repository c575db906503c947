package stats

import (
	"testing"
	"time"

	"github.com/supporthub/backend/internal/models"
)

func TestNewBucketerRejectsNonDivisorWidth(t *testing.T) {
	for _, width := range []time.Duration{0, 7 * time.Minute, 45 * time.Second, 25 * time.Minute} {
		if _, err := NewBucketer(width); err == nil {
			t.Fatalf("expected error for width %s", width)
		}
	}
	for _, width := range []time.Duration{time.Minute, 5 * time.Minute, 10 * time.Minute, 60 * time.Minute} {
		if _, err := NewBucketer(width); err != nil {
			t.Fatalf("unexpected error for width %s: %v", width, err)
		}
	}
}

func TestBucketKeyTruncation(t *testing.T) {
	b, err := NewBucketer(DefaultBucketWidth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts := time.Date(2025, 3, 14, 9, 27, 43, 120, time.UTC)
	key := b.Key(ts)
	want := time.Date(2025, 3, 14, 9, 20, 0, 0, time.UTC)
	if !key.Equal(want) {
		t.Fatalf("expected key %s, got %s", want, key)
	}
	if key.Minute()%10 != 0 || key.Second() != 0 || key.Nanosecond() != 0 {
		t.Fatalf("key not aligned to bucket width: %s", key)
	}
}

func TestBucketKeyNormalizesToUTC(t *testing.T) {
	b, _ := NewBucketer(DefaultBucketWidth)
	loc := time.FixedZone("IRST", int((3*time.Hour + 30*time.Minute).Seconds()))
	local := time.Date(2025, 3, 14, 13, 5, 9, 0, loc)
	key := b.Key(local)
	if key.Location() != time.UTC {
		t.Fatalf("expected UTC key, got %s", key.Location())
	}
	if !key.Equal(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestCountEveryRecordMapsToExactlyOneBucket(t *testing.T) {
	b, _ := NewBucketer(DefaultBucketWidth)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	var records []models.Feedback
	for i := 0; i < 37; i++ {
		records = append(records, models.Feedback{CreatedAt: base.Add(time.Duration(i) * 97 * time.Second)})
	}
	buckets := b.Count(records)
	total := 0
	for start, count := range buckets {
		if start.Minute()%10 != 0 {
			t.Fatalf("bucket start %s has minute remainder", start)
		}
		total += count
	}
	if total != len(records) {
		t.Fatalf("expected %d records across buckets, got %d", len(records), total)
	}
}

func TestCountEmptyInput(t *testing.T) {
	b, _ := NewBucketer(DefaultBucketWidth)
	if buckets := b.Count(nil); len(buckets) != 0 {
		t.Fatalf("expected empty mapping, got %v", buckets)
	}
}

func TestSeriesAscendingRankedDescending(t *testing.T) {
	b, _ := NewBucketer(DefaultBucketWidth)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	var records []models.Feedback
	perBucket := []int{2, 5, 1}
	for i, n := range perBucket {
		for j := 0; j < n; j++ {
			records = append(records, models.Feedback{CreatedAt: base.Add(time.Duration(i) * 10 * time.Minute)})
		}
	}
	buckets := b.Count(records)

	series := Series(buckets)
	for i := 1; i < len(series); i++ {
		if !series[i-1].Start.Before(series[i].Start) {
			t.Fatalf("series not ascending at %d", i)
		}
	}

	ranked := Ranked(buckets)
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Count < ranked[i].Count {
			t.Fatalf("ranked not descending at %d", i)
		}
	}
	if ranked[0].Count != 5 {
		t.Fatalf("expected busiest bucket first, got %+v", ranked[0])
	}
}
