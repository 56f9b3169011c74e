// Package openaicompat adapts the dispatch core to any backend that
// speaks the OpenAI chat completions wire format. One adapter serves
// OpenAI itself, Google's OpenAI-compatible Gemini endpoint, and local
// Ollama servers; only the base URL and auth requirements differ.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	llmdispatch "github.com/weftlabs/weft-llm-go"
)

// Default endpoints per provider. Ollama has no hosted endpoint; the
// default targets a local server.
const (
	openAIBaseURL = "https://api.openai.com/v1"
	googleBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	ollamaBaseURL = "http://localhost:11434/v1"
)

// Adapter implements the llmdispatch.Adapter interface over the OpenAI
// chat completions wire format.
type Adapter struct {
	provider   llmdispatch.ProviderID
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithBaseURL overrides the provider's default endpoint.
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) { a.baseURL = baseURL }
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) { a.httpClient = client }
}

// New creates an adapter for one of the OpenAI-wire providers. The API
// key is required except for Ollama, which authenticates nothing.
func New(provider llmdispatch.ProviderID, apiKey string, opts ...Option) (*Adapter, error) {
	var baseURL string
	switch provider {
	case llmdispatch.ProviderOpenAI:
		baseURL = openAIBaseURL
	case llmdispatch.ProviderGoogle:
		baseURL = googleBaseURL
	case llmdispatch.ProviderOllama:
		baseURL = ollamaBaseURL
	default:
		return nil, fmt.Errorf("provider %q does not speak the OpenAI wire format", provider)
	}

	if apiKey == "" && provider != llmdispatch.ProviderOllama {
		return nil, llmdispatch.ErrInvalidAPIKey
	}

	a := &Adapter{
		provider:   provider,
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// NewOpenAI creates an adapter for the hosted OpenAI API.
func NewOpenAI(apiKey string, opts ...Option) (*Adapter, error) {
	return New(llmdispatch.ProviderOpenAI, apiKey, opts...)
}

// NewGoogle creates an adapter for Gemini models via Google's
// OpenAI-compatible endpoint.
func NewGoogle(apiKey string, opts ...Option) (*Adapter, error) {
	return New(llmdispatch.ProviderGoogle, apiKey, opts...)
}

// NewOllama creates an adapter for a local Ollama server.
func NewOllama(opts ...Option) (*Adapter, error) {
	return New(llmdispatch.ProviderOllama, "", opts...)
}

// Name returns the provider identifier.
func (a *Adapter) Name() llmdispatch.ProviderID {
	return a.provider
}

// buildBody constructs the chat completions request body. Provider
// option bags contribute their wire fields first so the spec's core
// fields always win on conflict.
func buildBody(spec *llmdispatch.RequestSpec, stream bool) (map[string]any, error) {
	body := map[string]any{}
	if spec.Options != nil {
		for key, value := range spec.Options.ToWireFormat() {
			body[key] = value
		}
	}

	messages := make([]chatMessage, 0, len(spec.Thread))
	for _, entry := range spec.Thread {
		messages = append(messages, chatMessage{
			Role:    string(entry.Role),
			Content: entry.Content.String(),
		})
	}

	body["model"] = spec.Model
	body["messages"] = messages
	body["stream"] = stream
	if stream {
		body["stream_options"] = map[string]any{"include_usage": true}
	}

	if spec.Temperature != nil {
		body["temperature"] = *spec.Temperature
	}

	if spec.OutputSchema != nil {
		body["response_format"] = responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaSpec{
				Name:   spec.OutputSchema.Name,
				Schema: spec.OutputSchema.Definition,
				Strict: true,
			},
		}
	}

	return body, nil
}

// buildHTTPRequest marshals the body into a POST to /chat/completions.
func (a *Adapter) buildHTTPRequest(ctx context.Context, body map[string]any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	return httpReq, nil
}

// Query generates a blocking chat completion.
func (a *Adapter) Query(ctx context.Context, spec *llmdispatch.RequestSpec) (*llmdispatch.Result, error) {
	body, err := buildBody(spec, false)
	if err != nil {
		return nil, err
	}

	httpReq, err := a.buildHTTPRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llmdispatch.AdapterError{
			Provider:  a.provider.String(),
			Message:   err.Error(),
			Retryable: true,
			Err:       llmdispatch.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.handleErrorResponse(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return nil, &llmdispatch.AdapterError{
			Provider: a.provider.String(),
			Message:  fmt.Sprintf("unparseable response body: %v", err),
			Err:      llmdispatch.ErrUnexpectedShape,
		}
	}
	if len(chatResp.Choices) == 0 {
		return nil, &llmdispatch.AdapterError{
			Provider: a.provider.String(),
			Message:  "response contained no choices",
			Err:      llmdispatch.ErrUnexpectedShape,
		}
	}

	content, err := a.convertContent(chatResp.Choices[0].Message.Content, spec.OutputSchema)
	if err != nil {
		return nil, err
	}

	model := chatResp.Model
	if model == "" {
		model = spec.Model
	}

	return &llmdispatch.Result{
		Content: content,
		Usage: llmdispatch.Usage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
		},
		Model: model,
	}, nil
}

// convertContent interprets the completion text. With an output schema
// the text must be the schema's JSON document; without one it is plain
// text.
func (a *Adapter) convertContent(text string, schema *llmdispatch.SchemaHandle) (llmdispatch.Content, error) {
	if schema == nil {
		return llmdispatch.TextContent(text), nil
	}

	if !json.Valid([]byte(text)) {
		return llmdispatch.Content{}, &llmdispatch.AdapterError{
			Provider: a.provider.String(),
			Message:  fmt.Sprintf("schema %q requested but response is not JSON", schema.Name),
			Err:      llmdispatch.ErrUnexpectedShape,
		}
	}
	return llmdispatch.StructuredContent(schema.Name, json.RawMessage(text)), nil
}

// handleErrorResponse maps HTTP error responses into the library's
// error taxonomy.
func (a *Adapter) handleErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var errResp wireError
	message := string(raw)
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	adapterErr := &llmdispatch.AdapterError{
		Provider:   a.provider.String(),
		StatusCode: resp.StatusCode,
		Message:    message,
	}

	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		adapterErr.Err = llmdispatch.ErrInvalidAPIKey
	case resp.StatusCode == 404:
		adapterErr.Err = llmdispatch.ErrUnsupportedModel
	case resp.StatusCode == 429:
		adapterErr.Retryable = true
		adapterErr.Err = llmdispatch.ErrRateLimited
	case resp.StatusCode >= 500:
		adapterErr.Retryable = true
		adapterErr.Err = llmdispatch.ErrProviderUnavailable
	default:
		adapterErr.Err = llmdispatch.ErrProviderUnavailable
	}

	return adapterErr
}

// Tokenize estimates token count. The chat completions wire format has
// no counting endpoint, so this uses the common four-bytes-per-token
// heuristic.
func (a *Adapter) Tokenize(_ context.Context, _ string, text string) (int, error) {
	if len(text) == 0 {
		return 0, nil
	}
	return (len(text) + 3) / 4, nil
}
