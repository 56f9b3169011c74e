package llmdispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrUnsupportedModel indicates the requested model resolves to no
	// known provider.
	ErrUnsupportedModel = errors.New("llmdispatch: unsupported model")

	// ErrInvalidSpec indicates the request description failed
	// validation before any network activity.
	ErrInvalidSpec = errors.New("llmdispatch: invalid request spec")

	// ErrInvalidAPIKey indicates the API key is missing, malformed, or
	// unauthorized.
	ErrInvalidAPIKey = errors.New("llmdispatch: invalid API key")

	// ErrRateLimited indicates the backend's rate limit has been exceeded.
	ErrRateLimited = errors.New("llmdispatch: rate limit exceeded")

	// ErrProviderUnavailable indicates the backend is down or unreachable.
	ErrProviderUnavailable = errors.New("llmdispatch: provider unavailable")

	// ErrUnexpectedShape indicates an adapter could not classify the
	// backend's raw response as text, structured payload, or stream.
	ErrUnexpectedShape = errors.New("llmdispatch: unexpected result shape")

	// ErrStreamingNotCacheable indicates a fingerprint was requested
	// for a streaming spec. Streaming requests are never cached.
	ErrStreamingNotCacheable = errors.New("llmdispatch: streaming requests are not cacheable")
)

// ModelError reports a model that could not be resolved or is not
// supported by its provider.
type ModelError struct {
	Model    string // The model that was requested
	Provider string // The provider name, if one was determined
	Reason   string // Human-readable explanation
	Err      error  // Wrapped error (usually ErrUnsupportedModel)
}

func (e *ModelError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("model '%s' for provider '%s': %s", e.Model, e.Provider, e.Reason)
	}
	return fmt.Sprintf("model '%s': %s", e.Model, e.Reason)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request spec field that failed validation.
type ValidationError struct {
	Field  string // The field that failed validation
	Value  any    // The invalid value
	Reason string // Human-readable explanation
	Err    error  // Wrapped error (usually ErrInvalidSpec)
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for '%s' (value: %v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RangeError reports a sampling parameter outside the provider's
// declared bounds.
type RangeError struct {
	Provider string  // The provider whose bounds were violated
	Field    string  // The parameter field
	Value    float64 // The out-of-range value
	Min      float64
	Max      float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %g is out of range [%g, %g] for provider '%s'",
		e.Field, e.Value, e.Min, e.Max, e.Provider)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidSpec
}

// ProviderMismatchError reports provider options whose declared
// provider differs from the one the model resolved to.
type ProviderMismatchError struct {
	Declared ProviderID // Provider declared by the option bag
	Resolved ProviderID // Provider the model resolved to
}

func (e *ProviderMismatchError) Error() string {
	return fmt.Sprintf("provider options declare '%s' but model resolved to provider '%s'",
		e.Declared, e.Resolved)
}

func (e *ProviderMismatchError) Unwrap() error {
	return ErrInvalidSpec
}

// AdapterError reports a failed backend call: auth, network, rate
// limit, or a malformed backend response.
type AdapterError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code, if applicable
	Message    string // Error message from the backend
	Retryable  bool   // Whether the caller may retry
	Err        error  // Wrapped sentinel (ErrRateLimited, ErrUnexpectedShape, ...)
}

func (e *AdapterError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider '%s' error: %s", e.Provider, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// ConfigError reports a registry configuration integrity failure,
// surfaced at load time rather than query time.
type ConfigError struct {
	Source string // Where the config came from (path or "embedded")
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("registry config (%s): %s", e.Source, e.Reason)
}

// DeserializationError reports a cached payload that could not be
// decoded at all. The cache treats it as a miss.
type DeserializationError struct {
	Reason string
	Err    error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize cached result: %s", e.Reason)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is potentially retryable. The
// dispatcher never retries itself; this is for callers and adapters.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Retryable
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	return errors.Is(err, ErrProviderUnavailable)
}

// IsValidationFailure checks if an error came from spec construction.
// These never reach the network and are not retryable.
func IsValidationFailure(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidSpec) || errors.Is(err, ErrUnsupportedModel) {
		return true
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}

	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.StatusCode == 401 || adapterErr.StatusCode == 403
	}

	return false
}
