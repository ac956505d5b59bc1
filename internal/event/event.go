// Package event defines the wire envelope shared by every producer and
// consumer of the task-management topics. The envelope is schema-on-read:
// event_type tags the producer-defined shape, and the data/metadata bags are
// read defensively because no schema is enforced at the consumer.
package event

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/taskstream/fanout/internal/jsoncodec"
)

// Envelope is the unit flowing through every topic. It is immutable once
// published: consumers must not mutate and republish it.
type Envelope struct {
	// EventType tags the producer-defined event shape, e.g. "task_created".
	EventType string
	// UserID identifies the acting user. Zero means system-originated or
	// anonymous.
	UserID int64
	// Timestamp is the event creation time, UTC, rendered as RFC3339 on the
	// wire.
	Timestamp time.Time
	// Data is the open payload whose shape depends on EventType. Never nil.
	Data map[string]any
	// Metadata carries contextual information (IP, user agent, ...). Never nil
	// and never required for correctness.
	Metadata map[string]any
}

// wireEnvelope is the JSON shape of Envelope.
type wireEnvelope struct {
	EventType string         `json:"event_type"`
	UserID    int64          `json:"user_id,omitempty"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ErrEventTypeRequired is returned when constructing or encoding an envelope
// without an event type.
var ErrEventTypeRequired = errors.New("event: event_type is required")

// New returns an envelope tagged with eventType, stamped with the current UTC
// time and empty (non-nil) data and metadata bags.
func New(eventType string) Envelope {
	return Envelope{
		EventType: eventType,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Data:      map[string]any{},
		Metadata:  map[string]any{},
	}
}

// Encode serialises the envelope to its wire JSON. The timestamp renders as
// RFC3339 with a UTC offset; a zero timestamp is replaced with the current UTC
// time so every published envelope carries one.
func Encode(e Envelope) ([]byte, error) {
	if e.EventType == "" {
		return nil, ErrEventTypeRequired
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return jsoncodec.Marshal(wireEnvelope{
		EventType: e.EventType,
		UserID:    e.UserID,
		Timestamp: FormatTime(ts),
		Data:      e.Data,
		Metadata:  e.Metadata,
	})
}

// Decode parses wire JSON into an Envelope. Only JSON validity is enforced:
// missing fields fall back to their zero values and the data/metadata bags
// default to empty maps, never nil. An unparseable timestamp is kept as the
// zero time; Day() falls back to today-UTC for it.
func Decode(raw []byte) (Envelope, error) {
	var w wireEnvelope
	if err := jsoncodec.Unmarshal(raw, &w); err != nil {
		return Envelope{}, fmt.Errorf("event: decode envelope: %w", err)
	}

	e := Envelope{
		EventType: w.EventType,
		UserID:    w.UserID,
		Data:      w.Data,
		Metadata:  w.Metadata,
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	if w.Timestamp != "" {
		if ts, err := ParseTime(w.Timestamp); err == nil {
			e.Timestamp = ts.UTC()
		}
	}
	return e, nil
}

// Day returns the YYYY-MM-DD bucket the envelope belongs to, used to address
// rolling analytics counters. Envelopes without a usable timestamp are counted
// against today (UTC).
func (e Envelope) Day() string {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return ts.UTC().Format("2006-01-02")
}

// DataString reads a string field from the data bag.
func (e Envelope) DataString(key string) (string, bool) {
	v, ok := e.Data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DataInt64 reads an integer field from the data bag. JSON numbers arrive as
// float64 and some producers send identifiers as strings, so both are
// accepted.
func (e Envelope) DataInt64(key string) (int64, bool) {
	v, ok := e.Data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
