package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/cityline/internal/complaint"
)

func TestSend_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	c := &complaint.Complaint{
		ID:         "c-104",
		Text:       "Transformer sparking near the school gate.",
		Category:   "power outage",
		Urgency:    complaint.UrgencyCritical,
		Department: complaint.DeptElectricity,
		Status:     complaint.StatusSubmitted,
		Location:   "MG Road",
		Ward:       "12",
		Timestamp:  time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC),
	}

	if err := n.Send(context.Background(), c); err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, text, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "power outage") {
		t.Errorf("header text = %q, want to contain category", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for critical urgency")
	}
}

func TestSend_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("", log.Nop())
	if err := n.Send(context.Background(), &complaint.Complaint{}); err != nil {
		t.Fatalf("Send with empty URL should be no-op, got: %v", err)
	}
}

func TestSend_TruncatesLongText(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	longText := strings.Repeat("x", 4000)
	n := New(srv.URL, log.Nop())
	err := n.Send(context.Background(), &complaint.Complaint{
		ID:      "c-105",
		Text:    longText,
		Urgency: complaint.UrgencyCritical,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks := got["blocks"].([]any)
	body := blocks[4].(map[string]any)
	bodyText := body["text"].(map[string]any)["text"].(string)
	if len(bodyText) > maxTextLen+20 {
		t.Errorf("text block length = %d, want truncated near %d", len(bodyText), maxTextLen)
	}
	if !strings.HasSuffix(bodyText, "...") {
		t.Error("truncated text should end with ellipsis")
	}
}

func TestSend_WebhookError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	err := n.Send(context.Background(), &complaint.Complaint{ID: "c-106"})
	if err == nil {
		t.Fatal("expected error for non-2xx webhook response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v, want to mention status 400", err)
	}
}

func TestUrgencyEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		urgency complaint.Urgency
		want    string
	}{
		{complaint.UrgencyCritical, "\U0001f534"},
		{complaint.UrgencyHigh, "\U0001f7e0"},
		{complaint.UrgencyMedium, "\U0001f7e1"},
		{complaint.UrgencyLow, "\U0001f7e2"},
	}
	for _, tt := range tests {
		if got := urgencyEmoji(tt.urgency); got != tt.want {
			t.Errorf("urgencyEmoji(%s) = %q, want %q", tt.urgency, got, tt.want)
		}
	}
}
