package llmdispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContentKind discriminates the closed set of content payload shapes.
// Content is a tagged union rather than an open interface{} so that
// cache serialization can round-trip every payload exactly and
// switch statements over kinds stay exhaustive.
type ContentKind string

const (
	// KindText is plain text content.
	KindText ContentKind = "text"

	// KindStructured is a schema-tagged structured payload
	// (structured-output / function-calling style result).
	KindStructured ContentKind = "structured"

	// KindList is an ordered list of nested Content values.
	KindList ContentKind = "list"
)

// StructuredPayload is a structured-output object returned in place of
// free text. SchemaName identifies the schema the payload was validated
// against; Fields holds the raw JSON object.
type StructuredPayload struct {
	SchemaName string          `json:"schema_name"`
	Fields     json.RawMessage `json:"fields"`
}

// Content is the payload of a message entry or a result. Exactly one of
// Text, Structured, or Items is meaningful, selected by Kind.
type Content struct {
	Kind       ContentKind
	Text       string
	Structured *StructuredPayload
	Items      []Content
}

// TextContent builds a plain-text Content.
func TextContent(text string) Content {
	return Content{Kind: KindText, Text: text}
}

// StructuredContent builds a structured Content from a schema name and
// raw JSON fields.
func StructuredContent(schemaName string, fields json.RawMessage) Content {
	return Content{
		Kind:       KindStructured,
		Structured: &StructuredPayload{SchemaName: schemaName, Fields: fields},
	}
}

// ListContent builds a Content holding an ordered list of nested items.
func ListContent(items ...Content) Content {
	return Content{Kind: KindList, Items: items}
}

// IsZero reports whether the Content is the zero value (no kind set).
func (c Content) IsZero() bool {
	return c.Kind == ""
}

// String renders the content as human-readable text. Structured
// payloads render as their raw JSON, lists as newline-joined items.
func (c Content) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindStructured:
		if c.Structured == nil {
			return ""
		}
		return string(c.Structured.Fields)
	case KindList:
		var buf bytes.Buffer
		for i, item := range c.Items {
			if i > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(item.String())
		}
		return buf.String()
	default:
		return ""
	}
}

// Equal reports deep equality of two Content values. Structured fields
// compare by compacted JSON bytes so formatting differences don't
// matter.
func (c Content) Equal(other Content) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case KindText:
		return c.Text == other.Text
	case KindStructured:
		if (c.Structured == nil) != (other.Structured == nil) {
			return false
		}
		if c.Structured == nil {
			return true
		}
		if c.Structured.SchemaName != other.Structured.SchemaName {
			return false
		}
		return jsonEqual(c.Structured.Fields, other.Structured.Fields)
	case KindList:
		if len(c.Items) != len(other.Items) {
			return false
		}
		for i := range c.Items {
			if !c.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, a); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Compact(&cb, b); err != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// contentWire is the serialized form of Content. The kind tag travels
// with the payload so deserialization never has to guess shapes.
type contentWire struct {
	Kind       ContentKind        `json:"kind"`
	Text       string             `json:"text,omitempty"`
	Structured *StructuredPayload `json:"structured,omitempty"`
	Items      []Content          `json:"items,omitempty"`
}

// MarshalJSON encodes the content with its kind tag.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Kind == "" {
		return nil, fmt.Errorf("cannot marshal content with no kind")
	}
	return json.Marshal(contentWire{
		Kind:       c.Kind,
		Text:       c.Text,
		Structured: c.Structured,
		Items:      c.Items,
	})
}

// UnmarshalJSON decodes tagged content. An unknown kind is an error
// here; graceful degradation for cached payloads happens one level up
// in Serializer.Decode.
func (c *Content) UnmarshalJSON(data []byte) error {
	var wire contentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Kind {
	case KindText, KindStructured, KindList:
	default:
		return fmt.Errorf("unknown content kind %q", wire.Kind)
	}
	c.Kind = wire.Kind
	c.Text = wire.Text
	c.Structured = wire.Structured
	c.Items = wire.Items
	return nil
}
