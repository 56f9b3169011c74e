package llmdispatch

// ProviderOptions is the provider-specific option bag attached to a
// RequestSpec. Each provider gets one flat variant implementing this
// interface; there is no inheritance chain between them. Adapters read
// the wire form, spec validation reads the temperature bounds.
type ProviderOptions interface {
	// Provider returns the provider this option bag is declared for.
	// Spec construction asserts it matches the resolved provider.
	Provider() ProviderID

	// TemperatureRange returns the provider's valid [min, max]
	// temperature bounds.
	TemperatureRange() (min, max float64)

	// ToWireFormat flattens the options into the key/value form the
	// backend expects. Nil-valued options are omitted.
	ToWireFormat() map[string]any
}

// DefaultOptionsFor returns the zero-valued option bag for a provider.
// Spec construction calls this when the caller supplies none.
func DefaultOptionsFor(provider ProviderID) (ProviderOptions, error) {
	switch provider {
	case ProviderOpenAI:
		return &OpenAIOptions{}, nil
	case ProviderAnthropic:
		return &AnthropicOptions{}, nil
	case ProviderGoogle:
		return &GoogleOptions{}, nil
	case ProviderOllama:
		return &OllamaOptions{}, nil
	case ProviderLorem:
		return &LoremOptions{}, nil
	default:
		return nil, &ModelError{
			Provider: provider.String(),
			Reason:   "no option bag defined for provider",
			Err:      ErrUnsupportedModel,
		}
	}
}

// OpenAIOptions holds options for OpenAI and OpenAI-wire-compatible
// backends. All fields are optional pointers to distinguish "not set"
// from "set to zero value".
type OpenAIOptions struct {
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`
	Seed             *int     `json:"seed,omitempty"`
}

func (o *OpenAIOptions) Provider() ProviderID { return ProviderOpenAI }

func (o *OpenAIOptions) TemperatureRange() (float64, float64) { return 0.0, 2.0 }

func (o *OpenAIOptions) ToWireFormat() map[string]any {
	wire := map[string]any{}
	if o.MaxTokens != nil {
		wire["max_tokens"] = *o.MaxTokens
	}
	if o.FrequencyPenalty != nil {
		wire["frequency_penalty"] = *o.FrequencyPenalty
	}
	if o.PresencePenalty != nil {
		wire["presence_penalty"] = *o.PresencePenalty
	}
	if len(o.Stop) > 0 {
		wire["stop"] = o.Stop
	}
	if o.Seed != nil {
		wire["seed"] = *o.Seed
	}
	return wire
}

// AnthropicOptions holds options for Anthropic's Messages API.
type AnthropicOptions struct {
	// MaxTokens is required by the Anthropic API; adapters fall back
	// to a model-appropriate default when unset.
	MaxTokens     *int     `json:"max_tokens,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
}

func (o *AnthropicOptions) Provider() ProviderID { return ProviderAnthropic }

func (o *AnthropicOptions) TemperatureRange() (float64, float64) { return 0.0, 1.0 }

func (o *AnthropicOptions) ToWireFormat() map[string]any {
	wire := map[string]any{}
	if o.MaxTokens != nil {
		wire["max_tokens"] = *o.MaxTokens
	}
	if o.TopK != nil {
		wire["top_k"] = *o.TopK
	}
	if o.TopP != nil {
		wire["top_p"] = *o.TopP
	}
	if len(o.StopSequences) > 0 {
		wire["stop_sequences"] = o.StopSequences
	}
	return wire
}

// GoogleOptions holds options for Gemini backends reached over the
// OpenAI-compatible endpoint.
type GoogleOptions struct {
	MaxTokens      *int              `json:"max_tokens,omitempty"`
	Stop           []string          `json:"stop,omitempty"`
	SafetySettings map[string]string `json:"safety_settings,omitempty"`
}

func (o *GoogleOptions) Provider() ProviderID { return ProviderGoogle }

func (o *GoogleOptions) TemperatureRange() (float64, float64) { return 0.0, 1.0 }

func (o *GoogleOptions) ToWireFormat() map[string]any {
	wire := map[string]any{}
	if o.MaxTokens != nil {
		wire["max_tokens"] = *o.MaxTokens
	}
	if len(o.Stop) > 0 {
		wire["stop"] = o.Stop
	}
	if len(o.SafetySettings) > 0 {
		wire["safety_settings"] = o.SafetySettings
	}
	return wire
}

// OllamaOptions holds options for a local Ollama server.
type OllamaOptions struct {
	// NumCtx is the context window to request. Left unset, the server
	// default applies.
	NumCtx        *int     `json:"num_ctx,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
	Stop          []string `json:"stop,omitempty"`
}

func (o *OllamaOptions) Provider() ProviderID { return ProviderOllama }

func (o *OllamaOptions) TemperatureRange() (float64, float64) { return 0.0, 1.0 }

func (o *OllamaOptions) ToWireFormat() map[string]any {
	wire := map[string]any{}
	if o.NumCtx != nil {
		wire["num_ctx"] = *o.NumCtx
	}
	if o.TopK != nil {
		wire["top_k"] = *o.TopK
	}
	if o.TopP != nil {
		wire["top_p"] = *o.TopP
	}
	if o.RepeatPenalty != nil {
		wire["repeat_penalty"] = *o.RepeatPenalty
	}
	if len(o.Stop) > 0 {
		wire["stop"] = o.Stop
	}
	return wire
}

// LoremOptions holds options for the mock Lorem provider.
type LoremOptions struct {
	// MaxWords bounds generated output length.
	MaxWords *int `json:"max_words,omitempty"`
}

func (o *LoremOptions) Provider() ProviderID { return ProviderLorem }

func (o *LoremOptions) TemperatureRange() (float64, float64) { return 0.0, 2.0 }

func (o *LoremOptions) ToWireFormat() map[string]any {
	wire := map[string]any{}
	if o.MaxWords != nil {
		wire["max_words"] = *o.MaxWords
	}
	return wire
}
