package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"titledb/internal/config"
	"titledb/internal/notifications"
)

type captured struct {
	calls    int
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		got.calls++
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		got.body = string(body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte("topic closed"))
	}))
	t.Cleanup(server.Close)
	return server, got
}

func configFor(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeout = 5
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configFor(""))
	if err := svc.Publish(context.Background(), notifications.EventRunFailed, notifications.Payload{"error": "boom"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "run completed",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"added":     12,
				"selection": "Wii U titles",
				"duration":  90 * time.Second,
				"cursor":    4021,
			},
			expectTitle:   "titledb - Update Complete",
			expectMessage: "Catalog updated: 12 new records (Wii U titles) in 1m30s\nUpdate cursor: 4021",
			expectTags:    "titledb,update,completed",
		},
		{
			name:           "run failed",
			event:          notifications.EventRunFailed,
			payload:        notifications.Payload{"error": errors.New("samurai unreachable")},
			expectTitle:    "titledb - Update Failed",
			expectMessage:  "Update failed: samurai unreachable",
			expectTags:     "titledb,update,error",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "titledb - Test",
			expectMessage:  "Notification system test",
			expectTags:     "titledb,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, got := newNtfyServer(t, http.StatusOK)
			svc := notifications.NewService(configFor(server.URL))
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceHonoursToggles(t *testing.T) {
	server, got := newNtfyServer(t, http.StatusOK)
	cfg := configFor(server.URL)
	cfg.Notifications.Errors = false

	svc := notifications.NewService(cfg)
	ctx := context.Background()
	for _, call := range []struct {
		event   notifications.Event
		payload notifications.Payload
	}{
		{notifications.EventRunFailed, notifications.Payload{"error": "boom"}},
		{notifications.EventRunCompleted, notifications.Payload{"added": 0}},
		{notifications.Event("unknown"), nil},
	} {
		if err := svc.Publish(ctx, call.event, call.payload); err != nil {
			t.Fatalf("publish %s: %v", call.event, err)
		}
	}
	if got.calls != 0 {
		t.Fatalf("expected suppressed events, got %d calls", got.calls)
	}

	cfg.Notifications.NoChanges = true
	svc = notifications.NewService(cfg)
	if err := svc.Publish(ctx, notifications.EventRunCompleted, notifications.Payload{"added": 0}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got.calls != 1 || !strings.HasPrefix(got.body, "Catalog unchanged") {
		t.Fatalf("expected unchanged notice, got %d calls body %q", got.calls, got.body)
	}
}

func TestNtfyServiceReportsRejection(t *testing.T) {
	server, _ := newNtfyServer(t, http.StatusForbidden)
	svc := notifications.NewService(configFor(server.URL))
	err := svc.Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403: topic closed") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}
