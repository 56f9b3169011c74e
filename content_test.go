package llmdispatch

import (
	"encoding/json"
	"testing"
)

func TestContent_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content Content
	}{
		{"text", TextContent("plain words")},
		{"structured", StructuredContent("report", json.RawMessage(`{"score":7}`))},
		{"nested list", ListContent(
			TextContent("intro"),
			ListContent(TextContent("a"), TextContent("b")),
			StructuredContent("tail", json.RawMessage(`{"done":true}`)),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.content)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var decoded Content
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !decoded.Equal(tt.content) {
				t.Errorf("round trip changed content: %s", data)
			}
		})
	}
}

func TestContent_UnknownKind(t *testing.T) {
	var decoded Content
	err := json.Unmarshal([]byte(`{"kind":"hologram","text":"?"}`), &decoded)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestContent_EqualIgnoresJSONFormatting(t *testing.T) {
	a := StructuredContent("s", json.RawMessage(`{"x": 1, "y": 2}`))
	b := StructuredContent("s", json.RawMessage(`{"x":1,"y":2}`))
	if !a.Equal(b) {
		t.Error("formatting differences should not affect equality")
	}

	c := StructuredContent("s", json.RawMessage(`{"x":1,"y":3}`))
	if a.Equal(c) {
		t.Error("different field values must not be equal")
	}
}

func TestContent_String(t *testing.T) {
	if got := TextContent("hi").String(); got != "hi" {
		t.Errorf("text String() = %q", got)
	}

	list := ListContent(TextContent("a"), TextContent("b"))
	if got := list.String(); got != "a\nb" {
		t.Errorf("list String() = %q", got)
	}

	structured := StructuredContent("s", json.RawMessage(`{"k":"v"}`))
	if got := structured.String(); got != `{"k":"v"}` {
		t.Errorf("structured String() = %q", got)
	}
}

func TestThread_Preview(t *testing.T) {
	thread := MessageThread{
		SystemText("system stuff"),
		UserText("short"),
	}
	if got := thread.Preview(60); got != "short" {
		t.Errorf("Preview() = %q, want %q", got, "short")
	}

	long := MessageThread{
		UserText("one two   three\nfour\tfive six seven eight nine ten eleven twelve thirteen fourteen"),
	}
	preview := long.Preview(20)
	if len(preview) != 23 {
		t.Errorf("expected 20 chars plus ellipsis, got %d: %q", len(preview), preview)
	}
	if preview[:7] != "one two" {
		t.Errorf("whitespace should collapse to single spaces: %q", preview)
	}
}

func TestThread_PreviewPrefersLastUserEntry(t *testing.T) {
	thread := MessageThread{
		UserText("first question"),
		AssistantText("an answer"),
		UserText("second question"),
	}
	if got := thread.Preview(60); got != "second question" {
		t.Errorf("Preview() = %q, want last user entry", got)
	}
}
