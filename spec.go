package llmdispatch

import "strconv"

// RequestSpec is the normalized, validated description of one
// generation request. Construct it with NewRequestSpec or NewPromptSpec;
// a spec that exists has already passed validation. Adapters receive
// specs read-only and never mutate them.
type RequestSpec struct {
	// Model is the canonical model identifier (aliases already resolved).
	Model string

	// Provider is the backend the model resolved to.
	Provider ProviderID

	// Thread is the conversational input. Never empty after construction.
	Thread MessageThread

	// Temperature is the sampling temperature, nil when the provider
	// default should apply. Validated against the provider's range.
	Temperature *float64

	// OutputSchema, when set, asks the backend for a structured payload
	// conforming to the schema instead of free text.
	OutputSchema *SchemaHandle

	// Streaming selects the streaming call path. Streaming requests
	// bypass the response cache entirely.
	Streaming bool

	// Options is the provider-specific option bag. Its declared
	// provider always equals Provider.
	Options ProviderOptions

	// NoCache disables cache lookup and write for this spec.
	NoCache bool
}

// SpecOption customizes RequestSpec construction.
type SpecOption func(*RequestSpec)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) SpecOption {
	return func(s *RequestSpec) { s.Temperature = &t }
}

// WithOutputSchema requests structured output conforming to the schema.
func WithOutputSchema(schema *SchemaHandle) SpecOption {
	return func(s *RequestSpec) { s.OutputSchema = schema }
}

// WithStreaming selects the streaming call path.
func WithStreaming() SpecOption {
	return func(s *RequestSpec) { s.Streaming = true }
}

// WithProviderOptions attaches a provider-specific option bag. Its
// declared provider must match the provider the model resolves to.
func WithProviderOptions(opts ProviderOptions) SpecOption {
	return func(s *RequestSpec) { s.Options = opts }
}

// WithoutCache disables the response cache for this spec.
func WithoutCache() SpecOption {
	return func(s *RequestSpec) { s.NoCache = true }
}

// NewPromptSpec is the single-string convenience constructor: the
// prompt becomes a one-entry user-role thread.
func NewPromptSpec(registry *ModelRegistry, model, prompt string, opts ...SpecOption) (*RequestSpec, error) {
	if prompt == "" {
		return nil, &ValidationError{
			Field:  "prompt",
			Value:  prompt,
			Reason: "prompt must not be empty",
			Err:    ErrInvalidSpec,
		}
	}
	return NewRequestSpec(registry, model, MessageThread{UserText(prompt)}, opts...)
}

// NewRequestSpec validates and normalizes a request description.
// Steps, in order: validate the thread, resolve the model through the
// registry, derive the provider, validate temperature against the
// provider's range, check option-bag provider agreement, and default
// the option bag when none was supplied. No I/O happens here.
func NewRequestSpec(registry *ModelRegistry, model string, thread MessageThread, opts ...SpecOption) (*RequestSpec, error) {
	if registry == nil {
		return nil, &ValidationError{
			Field:  "registry",
			Reason: "model registry is required",
			Err:    ErrInvalidSpec,
		}
	}
	if len(thread) == 0 {
		return nil, &ValidationError{
			Field:  "thread",
			Reason: "message thread must not be empty",
			Err:    ErrInvalidSpec,
		}
	}
	for i, entry := range thread {
		if !entry.Role.IsValid() {
			return nil, &ValidationError{
				Field:  "thread",
				Value:  entry.Role,
				Reason: "unknown role at entry " + strconv.Itoa(i),
				Err:    ErrInvalidSpec,
			}
		}
		if entry.Content.IsZero() {
			return nil, &ValidationError{
				Field:  "thread",
				Reason: "empty content at entry " + strconv.Itoa(i),
				Err:    ErrInvalidSpec,
			}
		}
	}

	canonical, provider, err := registry.Resolve(model)
	if err != nil {
		return nil, err
	}

	spec := &RequestSpec{
		Model:    canonical,
		Provider: provider,
		Thread:   thread,
	}
	for _, opt := range opts {
		opt(spec)
	}

	if spec.Options != nil && spec.Options.Provider() != provider {
		return nil, &ProviderMismatchError{
			Declared: spec.Options.Provider(),
			Resolved: provider,
		}
	}
	if spec.Options == nil {
		defaults, err := DefaultOptionsFor(provider)
		if err != nil {
			return nil, err
		}
		spec.Options = defaults
	}

	if spec.Temperature != nil {
		min, max := spec.Options.TemperatureRange()
		if *spec.Temperature < min || *spec.Temperature > max {
			return nil, &RangeError{
				Provider: provider.String(),
				Field:    "temperature",
				Value:    *spec.Temperature,
				Min:      min,
				Max:      max,
			}
		}
	}

	return spec, nil
}

// Preview returns a short single-line excerpt of the request for
// progress reporting.
func (s *RequestSpec) Preview() string {
	return s.Thread.Preview(60)
}
