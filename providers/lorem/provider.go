// Package lorem is a mock provider adapter that generates lorem ipsum
// text. It needs no API key and is used for tests, examples, and
// development against the dispatch core.
package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	llmdispatch "github.com/weftlabs/weft-llm-go"
)

// Adapter is the mock Lorem provider.
//
// Model names select behavior:
//   - lorem-fast:  near-instant responses
//   - lorem-slow:  ~300ms per response
//   - lorem-flaky: every call fails with a retryable adapter error
type Adapter struct {
	generator *loremgen.Lorem
}

// New creates a Lorem adapter.
func New() *Adapter {
	return &Adapter{generator: loremgen.New()}
}

// Name returns the provider identifier.
func (a *Adapter) Name() llmdispatch.ProviderID {
	return llmdispatch.ProviderLorem
}

func delayFor(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 300 * time.Millisecond
	}
	return 5 * time.Millisecond
}

func isFlaky(model string) bool {
	return strings.Contains(model, "flaky")
}

// Query generates a blocking lorem ipsum response.
func (a *Adapter) Query(ctx context.Context, spec *llmdispatch.RequestSpec) (*llmdispatch.Result, error) {
	if isFlaky(spec.Model) {
		return nil, &llmdispatch.AdapterError{
			Provider:  a.Name().String(),
			Message:   "simulated backend failure",
			Retryable: true,
			Err:       llmdispatch.ErrProviderUnavailable,
		}
	}

	select {
	case <-time.After(delayFor(spec.Model)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	maxWords := 40
	if opts, ok := spec.Options.(*llmdispatch.LoremOptions); ok && opts.MaxWords != nil {
		maxWords = *opts.MaxWords
	}
	text := a.generator.Sentence(maxWords/2, maxWords)

	content := llmdispatch.TextContent(text)
	if spec.OutputSchema != nil {
		fields, err := json.Marshal(map[string]string{"text": text})
		if err != nil {
			return nil, &llmdispatch.AdapterError{
				Provider: a.Name().String(),
				Message:  fmt.Sprintf("build structured payload: %v", err),
				Err:      llmdispatch.ErrUnexpectedShape,
			}
		}
		content = llmdispatch.StructuredContent(spec.OutputSchema.Name, fields)
	}

	inputTokens := 0
	for _, entry := range spec.Thread {
		inputTokens += len(strings.Fields(entry.Content.String()))
	}

	return &llmdispatch.Result{
		Content: content,
		Usage: llmdispatch.Usage{
			InputTokens:  inputTokens,
			OutputTokens: len(strings.Fields(text)),
		},
		Model:     spec.Model,
		CreatedAt: time.Now(),
	}, nil
}

// Stream generates lorem ipsum word by word. The final event carries
// usage metering; the channel closes afterwards.
func (a *Adapter) Stream(ctx context.Context, spec *llmdispatch.RequestSpec) (<-chan llmdispatch.StreamEvent, error) {
	if isFlaky(spec.Model) {
		return nil, &llmdispatch.AdapterError{
			Provider:  a.Name().String(),
			Message:   "simulated backend failure",
			Retryable: true,
			Err:       llmdispatch.ErrProviderUnavailable,
		}
	}

	words := strings.Fields(a.generator.Sentence(10, 30))
	events := make(chan llmdispatch.StreamEvent, 10)

	go func() {
		defer close(events)
		for i, word := range words {
			select {
			case <-ctx.Done():
				// Best-effort: the consumer may already be gone.
				select {
				case events <- llmdispatch.StreamEvent{Err: ctx.Err()}:
				default:
				}
				return
			case <-time.After(delayFor(spec.Model)):
			}
			delta := word
			if i < len(words)-1 {
				delta += " "
			}
			select {
			case events <- llmdispatch.StreamEvent{Delta: delta}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case events <- llmdispatch.StreamEvent{Usage: &llmdispatch.Usage{OutputTokens: len(words)}}:
		case <-ctx.Done():
		}
	}()

	return events, nil
}

// Tokenize approximates token count as the whitespace word count.
func (a *Adapter) Tokenize(_ context.Context, _ string, text string) (int, error) {
	return len(strings.Fields(text)), nil
}
