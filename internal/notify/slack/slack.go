// Package slack posts critical-complaint notifications to Slack via
// incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/cityline/internal/complaint"
)

const (
	maxTextLen  = 3000
	httpTimeout = 10 * time.Second
)

// Notifier sends complaint notifications to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     log.Logger
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// Send posts a newly seen critical complaint to the configured webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, c *complaint.Complaint) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(c)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	n.logger.Info(ctx, "slack notification sent", "complaint_id", c.ID, "urgency", string(c.Urgency))
	return nil
}

func buildMessage(c *complaint.Complaint) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(c),
			{"type": "divider"},
			fieldsBlock(c),
			{"type": "divider"},
			textBlock(c),
			{"type": "divider"},
			contextBlock(c),
		},
	}
}

func headerBlock(c *complaint.Complaint) map[string]any {
	emoji := urgencyEmoji(c.Urgency)
	text := fmt.Sprintf("%s %s complaint: %s", emoji, c.Urgency, c.Category)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(c *complaint.Complaint) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Department:* %s", c.Department),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Status:* %s", c.Status),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Location:* %s", orDash(c.Location)),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Ward:* %s", orDash(c.Ward)),
		},
	}
	if c.DuplicateCount > 1 {
		fields = append(fields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Reports:* %d", c.DuplicateCount),
		})
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func textBlock(c *complaint.Complaint) map[string]any {
	text := truncate(c.Text, maxTextLen)
	if text == "" {
		text = "_No complaint text available._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Report*\n\n%s", text),
		},
	}
}

func contextBlock(c *complaint.Complaint) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("cityline • complaint %s • %s", c.ID, c.Timestamp.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func urgencyEmoji(u complaint.Urgency) string {
	switch u {
	case complaint.UrgencyCritical:
		return "\U0001f534" // red circle
	case complaint.UrgencyHigh:
		return "\U0001f7e0" // orange circle
	case complaint.UrgencyMedium:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
