package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// systemPrompt pins the gateway to statistics-only reporting; the service
// must never hand out troubleshooting advice.
const systemPrompt = `تو یک تحلیلگر داده‌ی مرکز تماس پشتیبانی فنی اینترنت هستی.
وظیفه تو فقط و فقط «گزارش آماری» دادن است. ممنوع است راه‌حل، توصیه فنی، یا مراحل رفع مشکل ارائه بدهی.

خروجی تو باید شامل:
1. خلاصه وضعیت (تعداد کل، روند کلی)
2. مشکلات پرتکرار و سهم هرکدام
3. شهرها و مراکز پرگزارش
4. اگر spike (افزایش ناگهانی) وجود دارد، زمان و شدت آن
5. مقایسه نسبی بین انواع مشکلات

خروجی باید فارسی، مختصر و حرفه‌ای باشد. فقط گزارش بده.`

type HTTPSummarizer struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client
}

func (a HTTPSummarizer) Analyze(ctx context.Context, stats string) (string, error) {
	if strings.TrimSpace(a.BaseURL) == "" {
		return "", fmt.Errorf("AI_URL is not set")
	}
	if strings.TrimSpace(a.Model) == "" {
		return "", fmt.Errorf("AI_MODEL is not set")
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	payload := struct {
		Model    string `json:"model"`
		Messages []msg  `json:"messages"`
	}{
		Model: a.Model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "آمار فیدبک‌ها:\n" + stats},
		},
	}

	b, _ := json.Marshal(payload)
	url := strings.TrimRight(a.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(a.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("summarization request timed out")
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("summarization request timed out")
		}
		return "", fmt.Errorf("summarization request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			if d := extractRetryAfter(errBody); d > 0 {
				return "", RateLimitError{RetryAfter: d}
			}
			return "", RateLimitError{}
		case http.StatusPaymentRequired:
			return "", QuotaError{}
		}
		return "", fmt.Errorf("ai gateway error: %s", resp.Status)
	}

	var res struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("empty ai gateway response")
	}
	return res.Choices[0].Message.Content, nil
}

func extractRetryAfter(errBody map[string]any) time.Duration {
	errObj, ok := errBody["error"].(map[string]any)
	if !ok {
		return 0
	}
	details, ok := errObj["details"].([]any)
	if !ok {
		return 0
	}
	for _, d := range details {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := m["@type"].(string); ok && strings.Contains(t, "RetryInfo") {
			if s, ok := m["retryDelay"].(string); ok {
				if dur, err := time.ParseDuration(s); err == nil {
					return dur
				}
			}
		}
	}
	return 0
}
