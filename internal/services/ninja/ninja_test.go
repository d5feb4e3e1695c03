package ninja

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"titledb/internal/services"
	"titledb/internal/title"
)

func TestECInfo(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<eshop><title_ec_info>
<title_id>0005000010101A00</title_id>
<content_size>391053332</content_size>
<title_version>32</title_version>
<disable_download>false</disable_download>
</title_ec_info></eshop>`))
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL, server.Client(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := client.ECInfo(context.Background(), title.EUR, "20010000000026")
	if err != nil {
		t.Fatalf("ECInfo: %v", err)
	}
	if gotPath != "/ninja/ws/GB/title/20010000000026/ec_info" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	want := ECInfo{TitleID: "0005000010101A00", ContentSize: 391053332, Version: "32"}
	if info != want {
		t.Fatalf("unexpected info: got %+v want %+v", info, want)
	}
}

func TestECInfoMalformed(t *testing.T) {
	cases := map[string]string{
		"missing title id": `<eshop><title_ec_info><content_size>1</content_size></title_ec_info></eshop>`,
		"bad size":         `<eshop><title_ec_info><title_id>0005000010101A00</title_id><content_size>big</content_size></title_ec_info></eshop>`,
		"not xml":          `{"json": true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			t.Cleanup(server.Close)

			client, err := New(server.URL, server.Client(), "")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_, err = client.ECInfo(context.Background(), title.USA, "1")
			if !errors.Is(err, services.ErrMalformed) {
				t.Fatalf("expected malformed error, got %v", err)
			}
		})
	}
}

func TestECInfoStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL, server.Client(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.ECInfo(context.Background(), title.KOR, "1")
	if services.StatusCode(err) != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 status error, got %v", err)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}
