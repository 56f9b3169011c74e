package llmdispatch

import "time"

// Usage holds token metering from a backend call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined token count.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Result is the uniform outcome of one successful generation request,
// produced by an adapter or reconstructed from the response cache.
// Immutable once created.
type Result struct {
	// Content is the generated payload: text, a structured payload, or
	// a list of structured payloads.
	Content Content

	// Usage is the backend's token metering for this call. Zero for
	// cache reconstructions that predate usage recording.
	Usage Usage

	// Duration is the wall-clock time of the backend call. Zero for
	// cache hits.
	Duration time.Duration

	// Model is the canonical model that produced the content.
	Model string

	// Spec points back at the request that produced this result.
	// Not serialized into the cache; repopulated by the dispatcher on
	// cache hits.
	Spec *RequestSpec

	// CreatedAt is when the result was produced.
	CreatedAt time.Time
}

// Text returns the result rendered as plain text.
func (r *Result) Text() string {
	return r.Content.String()
}
