package openaicompat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	llmdispatch "github.com/weftlabs/weft-llm-go"
)

// Stream generates a streaming chat completion. Content deltas are
// forwarded as they arrive; usage arrives in the server's final chunk
// and is emitted as the last event before close.
func (a *Adapter) Stream(ctx context.Context, spec *llmdispatch.RequestSpec) (<-chan llmdispatch.StreamEvent, error) {
	body, err := buildBody(spec, true)
	if err != nil {
		return nil, err
	}

	httpReq, err := a.buildHTTPRequest(ctx, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llmdispatch.AdapterError{
			Provider:  a.provider.String(),
			Message:   err.Error(),
			Retryable: true,
			Err:       llmdispatch.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, a.handleErrorResponse(resp)
	}

	events := make(chan llmdispatch.StreamEvent, 10)

	go func() {
		defer close(events)
		defer resp.Body.Close()

		if err := a.streamEvents(ctx, resp.Body, events); err != nil {
			// Best-effort: the consumer may already be gone.
			select {
			case events <- llmdispatch.StreamEvent{Err: err}:
			default:
			}
		}
	}()

	return events, nil
}

// streamEvents reads SSE data lines and forwards content deltas.
func (a *Adapter) streamEvents(ctx context.Context, body io.Reader, events chan<- llmdispatch.StreamEvent) error {
	scanner := bufio.NewScanner(body)
	var usage *llmdispatch.Usage

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			var errResp wireError
			if json.Unmarshal([]byte(data), &errResp) == nil && errResp.Error.Message != "" {
				return &llmdispatch.AdapterError{
					Provider: a.provider.String(),
					Message:  errResp.Error.Message,
					Err:      llmdispatch.ErrProviderUnavailable,
				}
			}
			// Keep-alives and vendor extensions are skipped.
			continue
		}

		// The usage-only chunk has an empty choices array.
		if chunk.Usage != nil {
			usage = &llmdispatch.Usage{
				InputTokens:  chunk.Usage.PromptTokens,
				OutputTokens: chunk.Usage.CompletionTokens,
			}
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content == nil || *delta.Content == "" {
			continue
		}

		select {
		case events <- llmdispatch.StreamEvent{Delta: *delta.Content}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}

	if usage != nil {
		select {
		case events <- llmdispatch.StreamEvent{Usage: usage}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
