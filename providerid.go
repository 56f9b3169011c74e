package llmdispatch

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderOpenAI covers OpenAI and OpenAI-wire-compatible backends
	ProviderOpenAI ProviderID = "openai"

	// ProviderAnthropic is Anthropic's Claude API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderGoogle is Google's Gemini API
	ProviderGoogle ProviderID = "google"

	// ProviderOllama is a local Ollama inference server
	ProviderOllama ProviderID = "ollama"

	// ProviderLorem is the mock Lorem provider for testing
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderOllama, ProviderLorem:
		return true
	default:
		return false
	}
}
