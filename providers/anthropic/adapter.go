// Package anthropic adapts the dispatch core to the Anthropic Messages
// API using the official SDK. Structured output is implemented with a
// forced tool call whose input schema is the request's output schema.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	llmdispatch "github.com/weftlabs/weft-llm-go"
)

const defaultMaxTokens = 4096

// Adapter implements the llmdispatch.Adapter interface for Claude models.
type Adapter struct {
	client *anthropic.Client
}

// New creates an Anthropic adapter with the given API key.
func New(apiKey string) (*Adapter, error) {
	if apiKey == "" {
		return nil, llmdispatch.ErrInvalidAPIKey
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Adapter{client: &client}, nil
}

// Name returns the provider identifier.
func (a *Adapter) Name() llmdispatch.ProviderID {
	return llmdispatch.ProviderAnthropic
}

// buildParams constructs Messages API parameters from a spec. Shared
// between Query and Stream.
func (a *Adapter) buildParams(spec *llmdispatch.RequestSpec) (anthropic.MessageNewParams, error) {
	system, messages, err := convertThread(spec.Thread)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(spec.Model),
		Messages:  messages,
		MaxTokens: defaultMaxTokens,
	}
	if len(system) > 0 {
		apiParams.System = system
	}

	if spec.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*spec.Temperature)
	}

	if opts, ok := spec.Options.(*llmdispatch.AnthropicOptions); ok {
		if opts.MaxTokens != nil {
			apiParams.MaxTokens = int64(*opts.MaxTokens)
		}
		if opts.TopP != nil {
			apiParams.TopP = anthropic.Float(*opts.TopP)
		}
		if opts.TopK != nil {
			apiParams.TopK = anthropic.Int(int64(*opts.TopK))
		}
		if len(opts.StopSequences) > 0 {
			apiParams.StopSequences = opts.StopSequences
		}
	}

	if spec.OutputSchema != nil {
		tool, choice, err := schemaTool(spec.OutputSchema)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		apiParams.Tools = []anthropic.ToolUnionParam{tool}
		apiParams.ToolChoice = choice
	}

	return apiParams, nil
}

// convertThread splits a message thread into the Anthropic system prompt
// and alternating conversation messages. System entries may appear
// anywhere in the thread; they are all hoisted into the system prompt.
func convertThread(thread llmdispatch.MessageThread) ([]anthropic.TextBlockParam, []anthropic.MessageParam, error) {
	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(thread))

	for i, entry := range thread {
		text := entry.Content.String()
		switch entry.Role {
		case llmdispatch.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Type: "text", Text: text})
		case llmdispatch.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		case llmdispatch.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			return nil, nil, fmt.Errorf("entry %d: unsupported role %q", i, entry.Role)
		}
	}

	return system, messages, nil
}

// schemaTool builds a single forced tool whose input schema is the
// requested output schema. Claude has no native JSON-schema response
// mode; a required tool call is the reliable equivalent.
func schemaTool(schema *llmdispatch.SchemaHandle) (anthropic.ToolUnionParam, anthropic.ToolChoiceUnionParam, error) {
	inputSchema := anthropic.ToolInputSchemaParam{}

	if len(schema.Definition) > 0 {
		var def map[string]any
		if err := json.Unmarshal(schema.Definition, &def); err != nil {
			return anthropic.ToolUnionParam{}, anthropic.ToolChoiceUnionParam{},
				fmt.Errorf("output schema %q: %w", schema.Name, err)
		}

		inputSchema.Properties = def["properties"]
		if required, ok := def["required"].([]any); ok {
			inputSchema.Required = make([]string, 0, len(required))
			for _, v := range required {
				if s, ok := v.(string); ok {
					inputSchema.Required = append(inputSchema.Required, s)
				}
			}
		}
		inputSchema.ExtraFields = make(map[string]any)
		for key, value := range def {
			if key != "type" && key != "properties" && key != "required" {
				inputSchema.ExtraFields[key] = value
			}
		}
	}

	tool := anthropic.ToolUnionParamOfTool(inputSchema, schema.Name)
	if tool.OfTool != nil {
		tool.OfTool.Description = anthropic.String("Record the response in the required structure.")
	}
	choice := anthropic.ToolChoiceParamOfTool(schema.Name)

	return tool, choice, nil
}

// Query generates a blocking response from Claude.
func (a *Adapter) Query(ctx context.Context, spec *llmdispatch.RequestSpec) (*llmdispatch.Result, error) {
	apiParams, err := a.buildParams(spec)
	if err != nil {
		return nil, err
	}

	message, err := a.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, a.wrapAPIError(err)
	}

	content, err := a.convertContent(message.Content, spec.OutputSchema)
	if err != nil {
		return nil, err
	}

	return &llmdispatch.Result{
		Content: content,
		Usage: llmdispatch.Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
		},
		Model: string(message.Model),
	}, nil
}

// convertContent flattens the response blocks into a single Content.
// With an output schema the tool_use block wins; otherwise text blocks
// are concatenated.
func (a *Adapter) convertContent(blocks []anthropic.ContentBlockUnion, schema *llmdispatch.SchemaHandle) (llmdispatch.Content, error) {
	var text strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if schema != nil && block.Name == schema.Name {
				return llmdispatch.StructuredContent(schema.Name, json.RawMessage(block.Input)), nil
			}
		}
	}

	if schema != nil {
		return llmdispatch.Content{}, &llmdispatch.AdapterError{
			Provider: a.Name().String(),
			Message:  fmt.Sprintf("no tool_use block for schema %q in response", schema.Name),
			Err:      llmdispatch.ErrUnexpectedShape,
		}
	}
	if text.Len() == 0 {
		return llmdispatch.Content{}, &llmdispatch.AdapterError{
			Provider: a.Name().String(),
			Message:  "response contained no text content",
			Err:      llmdispatch.ErrUnexpectedShape,
		}
	}
	return llmdispatch.TextContent(text.String()), nil
}

// Stream generates a streaming response from Claude. Text deltas are
// forwarded as they arrive; the final event carries accumulated usage.
func (a *Adapter) Stream(ctx context.Context, spec *llmdispatch.RequestSpec) (<-chan llmdispatch.StreamEvent, error) {
	apiParams, err := a.buildParams(spec)
	if err != nil {
		return nil, err
	}

	events := make(chan llmdispatch.StreamEvent, 10)

	go func() {
		defer close(events)

		// Sends never block on an abandoned consumer: terminal events
		// fall into the buffer or are dropped, delta sends bail out on
		// cancellation.
		trySend := func(event llmdispatch.StreamEvent) {
			select {
			case events <- event:
			default:
			}
		}

		stream := a.client.Messages.NewStreaming(ctx, apiParams)
		message := anthropic.Message{}

		for stream.Next() {
			event := stream.Current()
			if err := message.Accumulate(event); err != nil {
				trySend(llmdispatch.StreamEvent{Err: fmt.Errorf("accumulate stream event: %w", err)})
				return
			}

			variant, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok || variant.Delta.Type != "text_delta" {
				continue
			}

			select {
			case events <- llmdispatch.StreamEvent{Delta: variant.Delta.Text}:
			case <-ctx.Done():
				trySend(llmdispatch.StreamEvent{Err: ctx.Err()})
				return
			}
		}

		if err := stream.Err(); err != nil {
			trySend(llmdispatch.StreamEvent{Err: a.wrapAPIError(err)})
			return
		}

		select {
		case events <- llmdispatch.StreamEvent{
			Usage: &llmdispatch.Usage{
				InputTokens:  int(message.Usage.InputTokens),
				OutputTokens: int(message.Usage.OutputTokens),
			},
		}:
		case <-ctx.Done():
		}
	}()

	return events, nil
}

// Tokenize counts tokens server-side via the Messages count endpoint.
func (a *Adapter) Tokenize(ctx context.Context, model, text string) (int, error) {
	count, err := a.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model: anthropic.Model(model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return 0, a.wrapAPIError(err)
	}
	return int(count.InputTokens), nil
}

// wrapAPIError classifies SDK errors into the library's error taxonomy
// by HTTP status.
func (a *Adapter) wrapAPIError(err error) error {
	adapterErr := &llmdispatch.AdapterError{
		Provider: a.Name().String(),
		Message:  err.Error(),
		Err:      err,
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		adapterErr.StatusCode = apierr.StatusCode
		switch {
		case apierr.StatusCode == 401 || apierr.StatusCode == 403:
			adapterErr.Err = llmdispatch.ErrInvalidAPIKey
		case apierr.StatusCode == 429:
			adapterErr.Retryable = true
			adapterErr.Err = llmdispatch.ErrRateLimited
		case apierr.StatusCode >= 500:
			adapterErr.Retryable = true
			adapterErr.Err = llmdispatch.ErrProviderUnavailable
		}
	}

	return adapterErr
}
