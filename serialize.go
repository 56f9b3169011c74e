package llmdispatch

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// portableVersion tags the cache envelope layout. Bump when the
// envelope changes shape; old entries then degrade to raw text instead
// of failing.
const portableVersion = 1

// portableResult is the flat, persistable form of a Result. The content
// travels in its tagged-union JSON form so nested structured payloads
// reconstruct exactly.
type portableResult struct {
	Version    int             `json:"version"`
	Content    json.RawMessage `json:"content"`
	Usage      Usage           `json:"usage"`
	DurationMS int64           `json:"duration_ms"`
	Model      string          `json:"model"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Serializer converts Results to and from their persistable form.
type Serializer struct {
	log zerolog.Logger
}

// NewSerializer returns a Serializer logging degradation warnings to
// the given logger. Pass zerolog.Nop() for silence.
func NewSerializer(log zerolog.Logger) *Serializer {
	return &Serializer{log: log}
}

// Encode flattens a Result into versioned JSON bytes. The source spec
// reference is intentionally not persisted.
func (s *Serializer) Encode(r *Result) ([]byte, error) {
	content, err := json.Marshal(r.Content)
	if err != nil {
		return nil, fmt.Errorf("encode result content: %w", err)
	}
	return json.Marshal(portableResult{
		Version:    portableVersion,
		Content:    content,
		Usage:      r.Usage,
		DurationMS: r.Duration.Milliseconds(),
		Model:      r.Model,
		CreatedAt:  r.CreatedAt,
	})
}

// Decode reconstructs a Result from its persistable form.
//
// Degradation contract: a payload that is valid JSON but has an
// unrecognized version or content shape is returned as a plain-text
// Result holding the raw JSON, with a logged warning. Only bytes that
// are not decodable at all produce a DeserializationError.
func (s *Serializer) Decode(data []byte) (*Result, error) {
	var portable portableResult
	if err := json.Unmarshal(data, &portable); err != nil {
		return nil, &DeserializationError{Reason: "payload is not valid JSON", Err: err}
	}

	if portable.Version != portableVersion {
		s.log.Warn().
			Int("payload_version", portable.Version).
			Int("supported_version", portableVersion).
			Msg("cached result version mismatch, returning raw form")
		return s.rawFallback(data, portable), nil
	}

	var content Content
	if err := json.Unmarshal(portable.Content, &content); err != nil {
		s.log.Warn().
			Err(err).
			Msg("cached result content unrecognized, returning raw form")
		return s.rawFallback(data, portable), nil
	}

	return &Result{
		Content:   content,
		Usage:     portable.Usage,
		Duration:  time.Duration(portable.DurationMS) * time.Millisecond,
		Model:     portable.Model,
		CreatedAt: portable.CreatedAt,
	}, nil
}

// rawFallback wraps an unrecognized payload as a text Result so the
// caller still gets something usable back.
func (s *Serializer) rawFallback(data []byte, portable portableResult) *Result {
	return &Result{
		Content:   TextContent(string(data)),
		Usage:     portable.Usage,
		Model:     portable.Model,
		CreatedAt: portable.CreatedAt,
	}
}
