package llmdispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// Fingerprint computes the deterministic digest identifying a spec's
// semantic content for cache lookup: model, full thread (role and
// content, order-preserving), temperature, and output schema identity.
// Two specs built from equivalent inputs fingerprint identically
// regardless of construction path. Streaming specs have no fingerprint.
func Fingerprint(spec *RequestSpec) (string, error) {
	if spec.Streaming {
		return "", ErrStreamingNotCacheable
	}

	threadJSON, err := json.Marshal(spec.Thread)
	if err != nil {
		return "", fmt.Errorf("fingerprint thread: %w", err)
	}

	temp := "none"
	if spec.Temperature != nil {
		temp = strconv.FormatFloat(*spec.Temperature, 'g', -1, 64)
	}

	h := sha256.New()
	h.Write(threadJSON)
	h.Write([]byte("|"))
	h.Write([]byte(spec.Model))
	h.Write([]byte("|"))
	h.Write([]byte(temp))
	h.Write([]byte("|"))
	h.Write([]byte(spec.OutputSchema.Identity()))
	return hex.EncodeToString(h.Sum(nil)), nil
}
