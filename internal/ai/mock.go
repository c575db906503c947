package ai

import (
	"context"
	"fmt"
	"strings"
)

// MockSummarizer echoes the stats block back as a fake report. It is wired
// in when no AI gateway is configured, so the rest of the flow stays
// exercisable in dev.
type MockSummarizer struct {
	ModelVersion string
}

func (m MockSummarizer) Analyze(ctx context.Context, stats string) (string, error) {
	lines := strings.Count(stats, "\n") + 1
	return fmt.Sprintf("[%s] تحلیل آزمایشی بر اساس %d سطر آمار:\n%s", m.ModelVersion, lines, stats), nil
}
