package store

import (
	"context"
	"fmt"
	"time"
)

// UsageEntry is one logged external API call.
type UsageEntry struct {
	ID           int64     `json:"id" db:"id"`
	APIName      string    `json:"api_name" db:"api_name"`
	Endpoint     string    `json:"endpoint" db:"endpoint"`
	ModelUsed    string    `json:"model_used,omitempty" db:"model_used"`
	InputTokens  int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens int       `json:"output_tokens" db:"output_tokens"`
	CostUSD      float64   `json:"estimated_cost_usd" db:"estimated_cost_usd"`
	URL          string    `json:"url,omitempty" db:"url"`
	Success      bool      `json:"success" db:"success"`
	ErrorMessage string    `json:"error_message,omitempty" db:"error_message"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

// UsageTotals sums calls, tokens and cost over a period.
type UsageTotals struct {
	Calls        int     `json:"calls" db:"calls"`
	InputTokens  int     `json:"input_tokens" db:"input_tokens"`
	OutputTokens int     `json:"output_tokens" db:"output_tokens"`
	CostUSD      float64 `json:"estimated_cost_usd" db:"estimated_cost_usd"`
	Failures     int     `json:"failures" db:"failures"`
}

// APIUsage breaks totals down per external API.
type APIUsage struct {
	APIName string  `json:"api_name" db:"api_name"`
	Calls   int     `json:"calls" db:"calls"`
	CostUSD float64 `json:"estimated_cost_usd" db:"estimated_cost_usd"`
}

// ModelUsage breaks totals down per LLM model.
type ModelUsage struct {
	Model        string  `json:"model" db:"model_used"`
	Calls        int     `json:"calls" db:"calls"`
	InputTokens  int     `json:"input_tokens" db:"input_tokens"`
	OutputTokens int     `json:"output_tokens" db:"output_tokens"`
	CostUSD      float64 `json:"estimated_cost_usd" db:"estimated_cost_usd"`
}

// DailyUsage is one day's call count and spend.
type DailyUsage struct {
	Day     string  `json:"day" db:"day"`
	Calls   int     `json:"calls" db:"calls"`
	CostUSD float64 `json:"estimated_cost_usd" db:"estimated_cost_usd"`
}

// ExpensiveCall is one of the costliest individual calls in a period.
type ExpensiveCall struct {
	Model     string    `json:"model" db:"model_used"`
	URL       string    `json:"url" db:"url"`
	CostUSD   float64   `json:"estimated_cost_usd" db:"estimated_cost_usd"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// UsageStats is the full usage report for the trailing period.
type UsageStats struct {
	PeriodDays   int             `json:"period_days"`
	Totals       UsageTotals     `json:"totals"`
	ByAPI        []APIUsage      `json:"by_api"`
	ByModel      []ModelUsage    `json:"by_model"`
	Daily        []DailyUsage    `json:"daily"`
	TopExpensive []ExpensiveCall `json:"top_expensive"`
}

func (s *SQLiteStore) LogUsage(ctx context.Context, entry *UsageEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO api_usage_log (api_name, endpoint, model_used, input_tokens,
			output_tokens, estimated_cost_usd, url, success, error_message, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.APIName, entry.Endpoint, entry.ModelUsed, entry.InputTokens,
		entry.OutputTokens, entry.CostUSD, entry.URL, entry.Success,
		entry.ErrorMessage, ts)
	if err != nil {
		return fmt.Errorf("log usage: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

func (s *SQLiteStore) UsageStats(ctx context.Context, days int) (*UsageStats, error) {
	if days <= 0 {
		days = 30
	}
	// SQLite's datetime modifier wants a signed day count string.
	since := fmt.Sprintf("-%d days", days)

	stats := &UsageStats{PeriodDays: days}

	err := s.db.GetContext(ctx, &stats.Totals, `
		SELECT COUNT(*) AS calls,
		       COALESCE(SUM(input_tokens), 0) AS input_tokens,
		       COALESCE(SUM(output_tokens), 0) AS output_tokens,
		       COALESCE(SUM(estimated_cost_usd), 0) AS estimated_cost_usd,
		       COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) AS failures
		FROM api_usage_log
		WHERE timestamp >= datetime('now', ?)
	`, since)
	if err != nil {
		return nil, fmt.Errorf("usage totals: %w", err)
	}

	err = s.db.SelectContext(ctx, &stats.ByAPI, `
		SELECT api_name,
		       COUNT(*) AS calls,
		       COALESCE(SUM(estimated_cost_usd), 0) AS estimated_cost_usd
		FROM api_usage_log
		WHERE timestamp >= datetime('now', ?)
		GROUP BY api_name
		ORDER BY estimated_cost_usd DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("usage by api: %w", err)
	}

	err = s.db.SelectContext(ctx, &stats.ByModel, `
		SELECT model_used,
		       COUNT(*) AS calls,
		       COALESCE(SUM(input_tokens), 0) AS input_tokens,
		       COALESCE(SUM(output_tokens), 0) AS output_tokens,
		       COALESCE(SUM(estimated_cost_usd), 0) AS estimated_cost_usd
		FROM api_usage_log
		WHERE timestamp >= datetime('now', ?) AND model_used != ''
		GROUP BY model_used
		ORDER BY estimated_cost_usd DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}

	err = s.db.SelectContext(ctx, &stats.Daily, `
		SELECT date(timestamp) AS day,
		       COUNT(*) AS calls,
		       COALESCE(SUM(estimated_cost_usd), 0) AS estimated_cost_usd
		FROM api_usage_log
		WHERE timestamp >= datetime('now', ?)
		GROUP BY date(timestamp)
		ORDER BY day DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("usage daily: %w", err)
	}

	err = s.db.SelectContext(ctx, &stats.TopExpensive, `
		SELECT model_used, url, estimated_cost_usd, timestamp
		FROM api_usage_log
		WHERE timestamp >= datetime('now', ?)
		ORDER BY estimated_cost_usd DESC
		LIMIT 10
	`, since)
	if err != nil {
		return nil, fmt.Errorf("usage top expensive: %w", err)
	}

	return stats, nil
}
