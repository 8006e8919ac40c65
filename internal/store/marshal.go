package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/qcanvas/internal/ir"
)

// marshalRecord converts a circuit to its JSON record TEXT for storage.
// HTML escaping is off so symbolic parameters read back byte-for-byte.
func marshalRecord(c *ir.Circuit) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c.Record()); err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalRecord rebuilds a circuit from stored record TEXT.
func unmarshalRecord(data string, opts ...ir.CircuitOption) (*ir.Circuit, error) {
	c, err := ir.DecodeJSON(strings.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return c, nil
}

// marshalPasses converts a pass list to canonical JSON TEXT.
func marshalPasses(passes []string) (string, error) {
	list := make([]any, len(passes))
	for i, p := range passes {
		list[i] = p
	}
	data, err := ir.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal passes: %w", err)
	}
	return string(data), nil
}

// unmarshalPasses parses pass list TEXT. Returns an empty slice, not nil.
func unmarshalPasses(data string) ([]string, error) {
	passes := []string{}
	if data == "" || data == "[]" {
		return passes, nil
	}
	if err := json.Unmarshal([]byte(data), &passes); err != nil {
		return nil, fmt.Errorf("unmarshal passes: %w", err)
	}
	return passes, nil
}
