package llmdispatch

import (
	"errors"
	"testing"
)

func testRegistry(t *testing.T) *ModelRegistry {
	t.Helper()
	registry, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry() error = %v", err)
	}
	return registry
}

func TestNewPromptSpec_WrapsPromptInThread(t *testing.T) {
	registry := testRegistry(t)

	spec, err := NewPromptSpec(registry, "lorem-fast", "hello there")
	if err != nil {
		t.Fatalf("error = %v", err)
	}

	if len(spec.Thread) != 1 {
		t.Fatalf("expected 1 thread entry, got %d", len(spec.Thread))
	}
	if spec.Thread[0].Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, spec.Thread[0].Role)
	}
	if spec.Thread[0].Content.Text != "hello there" {
		t.Errorf("expected prompt text, got %q", spec.Thread[0].Content.Text)
	}
	if spec.Provider != ProviderLorem {
		t.Errorf("expected provider %q, got %q", ProviderLorem, spec.Provider)
	}
}

func TestNewPromptSpec_EmptyPrompt(t *testing.T) {
	registry := testRegistry(t)

	_, err := NewPromptSpec(registry, "lorem-fast", "")
	if err == nil {
		t.Fatal("expected error for empty prompt")
	}

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}

func TestNewRequestSpec_EmptyThread(t *testing.T) {
	registry := testRegistry(t)

	_, err := NewRequestSpec(registry, "lorem-fast", MessageThread{})
	if err == nil {
		t.Fatal("expected error for empty thread")
	}
	if !IsValidationFailure(err) {
		t.Errorf("expected validation failure, got %v", err)
	}
}

func TestNewRequestSpec_InvalidRole(t *testing.T) {
	registry := testRegistry(t)

	thread := MessageThread{
		{Role: Role("moderator"), Content: TextContent("hi")},
	}
	_, err := NewRequestSpec(registry, "lorem-fast", thread)
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestNewRequestSpec_EmptyContent(t *testing.T) {
	registry := testRegistry(t)

	thread := MessageThread{
		{Role: RoleUser, Content: Content{}},
	}
	_, err := NewRequestSpec(registry, "lorem-fast", thread)
	if err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestNewRequestSpec_UnknownModel(t *testing.T) {
	registry := testRegistry(t)

	_, err := NewRequestSpec(registry, "gpt-99-ultra", MessageThread{UserText("hi")})
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel, got %v", err)
	}
}

func TestNewRequestSpec_ResolvesAlias(t *testing.T) {
	registry := testRegistry(t)

	spec, err := NewRequestSpec(registry, "mock", MessageThread{UserText("hi")})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if spec.Model != "lorem-fast" {
		t.Errorf("expected alias to resolve to lorem-fast, got %q", spec.Model)
	}
}

func TestNewRequestSpec_TemperatureRanges(t *testing.T) {
	registry := testRegistry(t)

	tests := []struct {
		name        string
		model       string
		temperature float64
		wantErr     bool
	}{
		{"openai in range high", "gpt-4o-mini", 1.8, false},
		{"openai above range", "gpt-4o-mini", 2.5, true},
		{"anthropic in range", "claude-3-5-haiku-20241022", 0.9, false},
		{"anthropic above range", "claude-3-5-haiku-20241022", 1.5, true},
		{"ollama above range", "llama3.3:latest", 1.2, true},
		{"negative", "gpt-4o-mini", -0.1, true},
		{"zero boundary", "claude-3-5-haiku-20241022", 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRequestSpec(registry, tt.model, MessageThread{UserText("hi")},
				WithTemperature(tt.temperature))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected range error")
				}
				var rangeErr *RangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("expected *RangeError, got %T", err)
				}
				if !errors.Is(err, ErrInvalidSpec) {
					t.Errorf("expected ErrInvalidSpec in chain, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
		})
	}
}

func TestNewRequestSpec_ProviderOptionsMismatch(t *testing.T) {
	registry := testRegistry(t)

	// Anthropic options on an OpenAI model must be rejected.
	_, err := NewRequestSpec(registry, "gpt-4o-mini", MessageThread{UserText("hi")},
		WithProviderOptions(&AnthropicOptions{MaxTokens: intPtr(100)}))
	if err == nil {
		t.Fatal("expected error for mismatched provider options")
	}

	var mismatch *ProviderMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *ProviderMismatchError, got %T", err)
	}
}

func TestNewRequestSpec_DefaultOptions(t *testing.T) {
	registry := testRegistry(t)

	spec, err := NewRequestSpec(registry, "claude-3-5-haiku-20241022", MessageThread{UserText("hi")})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if spec.Options == nil {
		t.Fatal("expected default options to be populated")
	}
	if spec.Options.Provider() != ProviderAnthropic {
		t.Errorf("expected anthropic options, got %q", spec.Options.Provider())
	}
}

func TestNewRequestSpec_NilRegistry(t *testing.T) {
	_, err := NewRequestSpec(nil, "lorem-fast", MessageThread{UserText("hi")})
	if err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestRequestSpec_Preview(t *testing.T) {
	registry := testRegistry(t)

	spec, err := NewRequestSpec(registry, "lorem-fast", MessageThread{
		SystemText("You are terse."),
		UserText("first question"),
		AssistantText("first answer"),
		UserText("what   about\nwhitespace   handling in a very long prompt that keeps going and going"),
	})
	if err != nil {
		t.Fatalf("error = %v", err)
	}

	preview := spec.Preview()
	if len(preview) > 63 {
		t.Errorf("preview too long: %d chars", len(preview))
	}
	if want := "what about whitespace"; preview[:len(want)] != want {
		t.Errorf("expected preview of last user entry, got %q", preview)
	}
}
