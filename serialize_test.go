package llmdispatch

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSerializer_RoundTripText(t *testing.T) {
	s := NewSerializer(zerolog.Nop())

	original := &Result{
		Content:   TextContent("hello world"),
		Usage:     Usage{InputTokens: 10, OutputTokens: 20},
		Duration:  1500 * time.Millisecond,
		Model:     "lorem-fast",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := s.Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if !decoded.Content.Equal(original.Content) {
		t.Errorf("content mismatch: got %v", decoded.Content)
	}
	if decoded.Usage != original.Usage {
		t.Errorf("usage mismatch: got %+v", decoded.Usage)
	}
	if decoded.Duration != original.Duration {
		t.Errorf("duration mismatch: got %v", decoded.Duration)
	}
	if decoded.Model != original.Model {
		t.Errorf("model mismatch: got %q", decoded.Model)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("created_at mismatch: got %v", decoded.CreatedAt)
	}
}

func TestSerializer_RoundTripStructured(t *testing.T) {
	s := NewSerializer(zerolog.Nop())

	original := &Result{
		Content: StructuredContent("city", json.RawMessage(`{"name":"Lyon","population":513275}`)),
		Model:   "claude-sonnet-4-20250514",
	}

	data, err := s.Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if decoded.Content.Kind != KindStructured {
		t.Fatalf("expected structured content, got %q", decoded.Content.Kind)
	}
	if decoded.Content.Structured.SchemaName != "city" {
		t.Errorf("schema name mismatch: got %q", decoded.Content.Structured.SchemaName)
	}
	if !decoded.Content.Equal(original.Content) {
		t.Errorf("structured fields did not round-trip")
	}
}

func TestSerializer_RoundTripList(t *testing.T) {
	s := NewSerializer(zerolog.Nop())

	original := &Result{
		Content: ListContent(
			TextContent("first"),
			StructuredContent("item", json.RawMessage(`{"n":2}`)),
		),
	}

	data, err := s.Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !decoded.Content.Equal(original.Content) {
		t.Errorf("list content did not round-trip")
	}
}

func TestSerializer_VersionMismatchDegradesToRawText(t *testing.T) {
	s := NewSerializer(zerolog.Nop())

	payload := []byte(`{"version":99,"content":{"kind":"hologram"},"model":"future-model"}`)

	decoded, err := s.Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v, want graceful degradation", err)
	}
	if decoded.Content.Kind != KindText {
		t.Fatalf("expected text fallback, got %q", decoded.Content.Kind)
	}
	if decoded.Content.Text != string(payload) {
		t.Errorf("fallback should carry the raw payload")
	}
	if decoded.Model != "future-model" {
		t.Errorf("fallback should keep recognizable envelope fields, got model %q", decoded.Model)
	}
}

func TestSerializer_UnrecognizedContentDegradesToRawText(t *testing.T) {
	s := NewSerializer(zerolog.Nop())

	payload := []byte(`{"version":1,"content":{"kind":"hologram","beam":true},"model":"m"}`)

	decoded, err := s.Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v, want graceful degradation", err)
	}
	if decoded.Content.Kind != KindText {
		t.Fatalf("expected text fallback, got %q", decoded.Content.Kind)
	}
}

func TestSerializer_InvalidJSON(t *testing.T) {
	s := NewSerializer(zerolog.Nop())

	_, err := s.Decode([]byte("not json at all"))
	if err == nil {
		t.Fatal("expected error for undecodable bytes")
	}

	var deserErr *DeserializationError
	if !errors.As(err, &deserErr) {
		t.Fatalf("expected *DeserializationError, got %T", err)
	}
}
