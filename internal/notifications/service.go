package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"titledb/internal/config"
)

const userAgent = "titledb/1"

// Event names a notification type.
type Event string

const (
	EventRunCompleted Event = "run_completed"
	EventRunFailed    Event = "run_failed"
	EventTest         Event = "test"
)

// Payload carries event fields. Keys used: selection, added, records,
// duration, cursor, error.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: strings.TrimSpace(cfg.Notifications.NtfyTopic),
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventRunCompleted:
		if !n.settings.Completed {
			return message{}, false
		}
		added := intValue(payload["added"])
		if added == 0 && !n.settings.NoChanges {
			return message{}, false
		}
		body := fmt.Sprintf("Catalog updated: %d new records", added)
		if added == 0 {
			body = "Catalog unchanged"
		}
		if selection := stringValue(payload["selection"]); selection != "" {
			body += " (" + selection + ")"
		}
		if d, ok := payload["duration"].(time.Duration); ok {
			body += " in " + d.Round(time.Second).String()
		}
		if cursor := intValue(payload["cursor"]); cursor > 0 {
			body += fmt.Sprintf("\nUpdate cursor: %d", cursor)
		}
		return message{
			title: "titledb - Update Complete",
			body:  body,
			tags:  []string{"titledb", "update", "completed"},
		}, true
	case EventRunFailed:
		if !n.settings.Errors {
			return message{}, false
		}
		reason := stringValue(payload["error"])
		if reason == "" {
			reason = "unknown"
		}
		return message{
			title:    "titledb - Update Failed",
			body:     "Update failed: " + reason,
			tags:     []string{"titledb", "update", "error"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "titledb - Test",
			body:     "Notification system test",
			tags:     []string{"titledb", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case error:
		return strings.TrimSpace(s.Error())
	default:
		return ""
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
