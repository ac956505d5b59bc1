package event

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	e := New("task_created")

	if e.EventType != "task_created" {
		t.Fatalf("unexpected event type: %q", e.EventType)
	}
	if e.Timestamp.IsZero() {
		t.Fatal("expected timestamp to default to now")
	}
	if e.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", e.Timestamp.Location())
	}
	if e.Data == nil || e.Metadata == nil {
		t.Fatal("expected non-nil data and metadata bags")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := New("task_created")
	e.UserID = 5
	e.Timestamp = time.Date(2026, 8, 23, 10, 30, 45, 0, time.UTC)
	e.Data = map[string]any{"task_id": float64(42), "title": "Fix bug"}
	e.Metadata = map[string]any{"ip": "10.0.0.1"}

	raw, err := Encode(e)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.EventType != e.EventType {
		t.Fatalf("event type mismatch: %q", decoded.EventType)
	}
	if decoded.UserID != e.UserID {
		t.Fatalf("user id mismatch: %d", decoded.UserID)
	}
	if !decoded.Timestamp.Equal(e.Timestamp) {
		t.Fatalf("timestamp mismatch: %v != %v", decoded.Timestamp, e.Timestamp)
	}
	if decoded.Data["title"] != "Fix bug" {
		t.Fatalf("data not preserved: %#v", decoded.Data)
	}
	if decoded.Metadata["ip"] != "10.0.0.1" {
		t.Fatalf("metadata not preserved: %#v", decoded.Metadata)
	}
}

func TestEncodeRequiresEventType(t *testing.T) {
	if _, err := Encode(Envelope{}); err != ErrEventTypeRequired {
		t.Fatalf("expected ErrEventTypeRequired, got %v", err)
	}
}

func TestDecodeToleratesMissingFields(t *testing.T) {
	decoded, err := Decode([]byte(`{"event_type":"user_login"}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.EventType != "user_login" {
		t.Fatalf("unexpected event type: %q", decoded.EventType)
	}
	if decoded.UserID != 0 {
		t.Fatalf("expected zero user id, got %d", decoded.UserID)
	}
	if decoded.Data == nil || decoded.Metadata == nil {
		t.Fatal("expected data and metadata to default to empty maps, not nil")
	}
	if !decoded.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", decoded.Timestamp)
	}
}

func TestDecodePreservesUnknownDataKeys(t *testing.T) {
	raw := []byte(`{"event_type":"task_updated","data":{"task_id":7,"changes":{"status":"done"},"surprise":true}}`)
	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Data["surprise"] != true {
		t.Fatalf("unknown key dropped: %#v", decoded.Data)
	}
	if _, ok := decoded.Data["changes"].(map[string]any); !ok {
		t.Fatalf("nested payload not preserved: %#v", decoded.Data["changes"])
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatal("expected decode error for malformed JSON")
	}
}

func TestDay(t *testing.T) {
	e := Envelope{Timestamp: time.Date(2026, 8, 23, 23, 59, 59, 0, time.UTC)}
	if got := e.Day(); got != "2026-08-23" {
		t.Fatalf("unexpected day bucket: %q", got)
	}

	// No usable timestamp counts against today.
	today := time.Now().UTC().Format("2006-01-02")
	if got := (Envelope{}).Day(); got != today {
		t.Fatalf("expected fallback to today, got %q", got)
	}
}

func TestDataInt64(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int64
		wantOK bool
	}{
		{"json number", float64(42), 42, true},
		{"string id", "42", 42, true},
		{"int", 42, 42, true},
		{"garbage string", "forty-two", 0, false},
		{"wrong type", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Envelope{Data: map[string]any{"task_id": tt.value}}
			got, ok := e.DataInt64("task_id")
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("DataInt64 = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := (Envelope{Data: map[string]any{}}).DataInt64("task_id"); ok {
		t.Fatal("expected missing key to report !ok")
	}
}

func TestDataString(t *testing.T) {
	e := Envelope{Data: map[string]any{"title": "Fix bug", "count": float64(3)}}

	if got, ok := e.DataString("title"); !ok || got != "Fix bug" {
		t.Fatalf("DataString(title) = (%q, %v)", got, ok)
	}
	if _, ok := e.DataString("count"); ok {
		t.Fatal("expected non-string value to report !ok")
	}
	if _, ok := e.DataString("missing"); ok {
		t.Fatal("expected missing key to report !ok")
	}
}
