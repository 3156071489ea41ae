package ingest

import (
	"testing"
	"time"
)

func TestDecodeMessage(t *testing.T) {
	raw := []byte(`{"repo":"o/r","id":"42","type":"PushEvent","created_at":"2026-08-20T10:00:00Z","payload":{"size":3}}`)
	ev, err := decodeMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.ID != "42" || ev.Repo != "o/r" || ev.Type != "PushEvent" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	want := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	if !ev.CreatedAt.Equal(want) {
		t.Fatalf("created_at = %v", ev.CreatedAt)
	}
	if ev.Raw != string(raw) {
		t.Fatalf("raw payload must be preserved")
	}
}

func TestDecodeMessageRejectsIncomplete(t *testing.T) {
	cases := map[string]string{
		"no id":      `{"repo":"o/r","type":"PushEvent","created_at":"2026-08-20T10:00:00Z"}`,
		"no repo":    `{"id":"42","type":"PushEvent","created_at":"2026-08-20T10:00:00Z"}`,
		"bad time":   `{"repo":"o/r","id":"42","type":"PushEvent","created_at":"soon"}`,
		"not object": `"hello"`,
	}
	for name, raw := range cases {
		if _, err := decodeMessage([]byte(raw)); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}
