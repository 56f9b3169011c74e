package llmdispatch

import (
	"context"
	"fmt"
	"sync"
)

// Adapter is the uniform contract every backend implements. An adapter
// serializes a RequestSpec into the backend's wire shape, performs the
// call, extracts usage metering, and maps the backend's response into a
// Result. Adapters do not cache and do not retry; both belong to the
// dispatcher and the caller respectively. Each adapter enforces its own
// backend-appropriate timeout.
type Adapter interface {
	// Name returns the provider this adapter serves.
	Name() ProviderID

	// Query performs a blocking generation call.
	Query(ctx context.Context, spec *RequestSpec) (*Result, error)

	// Stream performs a streaming call. The channel is closed when the
	// stream completes or fails; the final event carries usage metering.
	Stream(ctx context.Context, spec *RequestSpec) (<-chan StreamEvent, error)

	// Tokenize returns the token count of text under the given model.
	Tokenize(ctx context.Context, model, text string) (int, error)
}

// StreamEvent is a single event on a streaming response channel.
// Exactly one of Delta, Usage, or Err is meaningful per event; Usage
// arrives once as the final event of a successful stream.
type StreamEvent struct {
	// Delta is an incremental chunk of generated text.
	Delta string

	// Usage carries final token metering when the stream completes.
	Usage *Usage

	// Err reports a mid-stream failure. The channel closes after it.
	Err error
}

// AdapterRegistry maps provider identifiers to adapters. It is
// populated once at process start; there is no string-driven dynamic
// lookup at call time.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[ProviderID]Adapter
}

// NewAdapterRegistry returns a registry holding the given adapters.
func NewAdapterRegistry(adapters ...Adapter) *AdapterRegistry {
	r := &AdapterRegistry{adapters: make(map[ProviderID]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Register adds or replaces the adapter for its provider.
func (r *AdapterRegistry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get returns the adapter for a provider.
func (r *AdapterRegistry) Get(provider ProviderID) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %q", provider)
	}
	return a, nil
}

// Providers returns the providers with a registered adapter.
func (r *AdapterRegistry) Providers() []ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderID, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	return out
}
