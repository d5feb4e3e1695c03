package ccs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"titledb/internal/services"
	"titledb/internal/titleid"
)

func TestTMDPaths(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/ccs/download/0005000C10100D00/tmd" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("blob"))
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL, server.Client(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if _, err := client.TMD(ctx, titleid.MustParse("0005000010100D00"), "ignored"); err != nil {
		t.Fatalf("game TMD: %v", err)
	}
	if _, err := client.TMD(ctx, titleid.MustParse("0005000E10100D00"), "48"); err != nil {
		t.Fatalf("update TMD: %v", err)
	}
	_, err = client.TMD(ctx, titleid.MustParse("0005000C10100D00"), "")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	want := []string{
		"/ccs/download/0005000010100D00/tmd",
		"/ccs/download/0005000E10100D00/tmd.48",
		"/ccs/download/0005000C10100D00/tmd",
	}
	if len(paths) != len(want) {
		t.Fatalf("unexpected requests: %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("request %d: got %q want %q", i, paths[i], want[i])
		}
	}
}

func TestTMDUpdateNeedsVersion(t *testing.T) {
	client, err := New("http://127.0.0.1:1", http.DefaultClient, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.TMD(context.Background(), titleid.MustParse("0005000E10100D00"), "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(" ", http.DefaultClient, ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
