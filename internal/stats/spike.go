package stats

import "time"

const (
	// SpikeThreshold flags buckets counting more than twice the mean.
	SpikeThreshold = 2.0
	maxSpikes      = 3
)

// Spikes returns up to three buckets whose count strictly exceeds
// mean*SpikeThreshold, highest first. The mean is taken over materialized
// buckets only; absent buckets do not pull it down. No buckets means no
// spikes.
func Spikes(buckets map[time.Time]int) []BucketCount {
	if len(buckets) == 0 {
		return nil
	}
	total := 0
	for _, count := range buckets {
		total += count
	}
	mean := float64(total) / float64(len(buckets))

	var out []BucketCount
	for _, b := range Ranked(buckets) {
		if float64(b.Count) > mean*SpikeThreshold {
			out = append(out, b)
		}
	}
	if len(out) > maxSpikes {
		out = out[:maxSpikes]
	}
	return out
}
