package task

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Fingerprint returns the deterministic identity of the task definition.
//
// It covers only the declarative fields: name, inputs, outputs and source.
// The work routine is opaque and excluded.
//
// Determinism rules:
//   - Inputs are treated as a set for identity and thus sorted.
//   - Outputs keep their declared order.
//   - All fields are length-prefixed to avoid ambiguity.
func (t Task) Fingerprint() string {
	h := sha256.New()

	writeField := func(data []byte) {
		length := uint64(len(data))
		lengthBytes := []byte{
			byte(length >> 56),
			byte(length >> 48),
			byte(length >> 40),
			byte(length >> 32),
			byte(length >> 24),
			byte(length >> 16),
			byte(length >> 8),
			byte(length),
		}
		h.Write(lengthBytes)
		h.Write(data)
	}

	writeField([]byte(t.Name))

	sortedInputs := make([]string, len(t.Inputs))
	copy(sortedInputs, t.Inputs)
	sort.Strings(sortedInputs)
	writeField([]byte{byte(len(sortedInputs))})
	for _, in := range sortedInputs {
		writeField([]byte(in))
	}

	writeField([]byte{byte(len(t.Outputs))})
	for _, out := range t.Outputs {
		writeField([]byte(out))
	}

	writeField([]byte(t.Source))

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}
