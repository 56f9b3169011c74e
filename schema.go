package llmdispatch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SchemaHandle names and describes the structured-output schema a
// request expects. Definition holds the raw JSON Schema the backend is
// asked to conform to.
type SchemaHandle struct {
	Name       string          `json:"name"`
	Definition json.RawMessage `json:"definition,omitempty"`
}

// NewSchema builds a schema handle from a name and raw JSON Schema.
func NewSchema(name string, definition json.RawMessage) *SchemaHandle {
	return &SchemaHandle{Name: name, Definition: definition}
}

// Identity returns the cache-identity string for the schema: the name
// plus a structural digest of the definition. Two schemas sharing a
// name but differing in fields therefore never collide in the cache.
func (s *SchemaHandle) Identity() string {
	if s == nil {
		return "none"
	}
	if len(s.Definition) == 0 {
		return s.Name
	}
	var compact bytes.Buffer
	raw := []byte(s.Definition)
	if err := json.Compact(&compact, raw); err == nil {
		raw = compact.Bytes()
	}
	sum := sha256.Sum256(raw)
	return s.Name + "#" + hex.EncodeToString(sum[:8])
}
