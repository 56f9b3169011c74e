package llmdispatch

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFingerprint_Deterministic(t *testing.T) {
	registry := testRegistry(t)

	build := func() *RequestSpec {
		spec, err := NewRequestSpec(registry, "lorem-fast", MessageThread{
			SystemText("be brief"),
			UserText("hello"),
		}, WithTemperature(0.5))
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		return spec
	}

	a, err := Fingerprint(build())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	b, err := Fingerprint(build())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if a != b {
		t.Errorf("identical specs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestFingerprint_PromptShortcutMatchesExplicitThread(t *testing.T) {
	registry := testRegistry(t)

	shortcut, err := NewPromptSpec(registry, "lorem-fast", "hello")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	explicit, err := NewRequestSpec(registry, "lorem-fast", MessageThread{UserText("hello")})
	if err != nil {
		t.Fatalf("error = %v", err)
	}

	a, _ := Fingerprint(shortcut)
	b, _ := Fingerprint(explicit)
	if a != b {
		t.Errorf("prompt shortcut and explicit thread should fingerprint identically")
	}
}

func TestFingerprint_Sensitivity(t *testing.T) {
	registry := testRegistry(t)

	base := func(opts ...SpecOption) string {
		spec, err := NewRequestSpec(registry, "lorem-fast", MessageThread{UserText("hello")}, opts...)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		fp, err := Fingerprint(spec)
		if err != nil {
			t.Fatalf("Fingerprint() error = %v", err)
		}
		return fp
	}

	plain := base()

	if withTemp := base(WithTemperature(0.7)); withTemp == plain {
		t.Error("temperature change should change the fingerprint")
	}

	schema := NewSchema("answer", json.RawMessage(`{"type":"object"}`))
	if withSchema := base(WithOutputSchema(schema)); withSchema == plain {
		t.Error("output schema should change the fingerprint")
	}

	otherModel, err := NewRequestSpec(registry, "lorem-slow", MessageThread{UserText("hello")})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if fp, _ := Fingerprint(otherModel); fp == plain {
		t.Error("model change should change the fingerprint")
	}

	otherThread, err := NewRequestSpec(registry, "lorem-fast", MessageThread{UserText("goodbye")})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if fp, _ := Fingerprint(otherThread); fp == plain {
		t.Error("thread change should change the fingerprint")
	}
}

func TestFingerprint_SchemaDefinitionChangesIdentity(t *testing.T) {
	registry := testRegistry(t)

	build := func(definition string) string {
		spec, err := NewRequestSpec(registry, "lorem-fast", MessageThread{UserText("hello")},
			WithOutputSchema(NewSchema("answer", json.RawMessage(definition))))
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		fp, err := Fingerprint(spec)
		if err != nil {
			t.Fatalf("Fingerprint() error = %v", err)
		}
		return fp
	}

	a := build(`{"type":"object","properties":{"x":{"type":"string"}}}`)
	b := build(`{"type":"object","properties":{"x":{"type":"integer"}}}`)
	if a == b {
		t.Error("same schema name with different definitions should fingerprint differently")
	}
}

func TestFingerprint_StreamingNotCacheable(t *testing.T) {
	registry := testRegistry(t)

	spec, err := NewRequestSpec(registry, "lorem-fast", MessageThread{UserText("hello")}, WithStreaming())
	if err != nil {
		t.Fatalf("error = %v", err)
	}

	_, err = Fingerprint(spec)
	if !errors.Is(err, ErrStreamingNotCacheable) {
		t.Errorf("expected ErrStreamingNotCacheable, got %v", err)
	}
}
