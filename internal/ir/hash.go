package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainCircuit prefixes circuit fingerprints. The version suffix allows a
// future change of the hashed shape.
const DomainCircuit = "qcanvas/circuit/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The NUL separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the content address of the circuit: qubit count, gates
// and metadata. Cached statistics and the record version are excluded, so a
// circuit keeps its fingerprint across stats recomputation.
//
// Numeric parameters are hashed as their shortest round-trip decimal text,
// tagged to keep 1.5 and "1.5" distinct.
func (c *Circuit) Fingerprint() (string, error) {
	canonical, err := MarshalCanonical(c.canonicalObject())
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the circuit is known to be valid.
func (c *Circuit) MustFingerprint() string {
	fp, err := c.Fingerprint()
	if err != nil {
		panic(err)
	}
	return fp
}

func (c *Circuit) canonicalObject() map[string]any {
	gates := make([]any, len(c.gates))
	for i, g := range c.gates {
		params := make([]any, len(g.params))
		for j, p := range g.params {
			switch v := p.(type) {
			case Numeric:
				params[j] = map[string]any{"numeric": v.String()}
			case Symbolic:
				params[j] = map[string]any{"symbolic": v.String()}
			}
		}
		gates[i] = map[string]any{
			"name":       g.name,
			"targets":    intsToAny(g.targets),
			"controls":   intsToAny(g.controls),
			"parameters": params,
		}
	}
	obj := map[string]any{
		"num_qubits": c.numQubits,
		"gates":      gates,
	}
	if c.metadata != nil {
		obj["metadata"] = map[string]any{
			"name":        c.metadata.Name,
			"description": c.metadata.Description,
		}
	}
	return obj
}

func intsToAny(xs []int) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
