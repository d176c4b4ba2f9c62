package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainInvocation = "casebook/invocation/v1"
	DomainRecord     = "casebook/record/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InvocationID computes the content-addressed ID of one materialized
// invocation. The ID is stable across processes given the same scenario
// key, position and parameter record, so reports from separate runs of the
// same invocation can be correlated.
func InvocationID(scenario string, index int, params Record) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"scenario": scenario,
		"index":    int64(index),
		"params":   map[string]any(params),
	})
	if err != nil {
		return "", fmt.Errorf("InvocationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInvocation, canonical), nil
}

// RecordHash computes the content hash of a single parameter record.
func RecordHash(params Record) (string, error) {
	canonical, err := MarshalCanonical(map[string]any(params))
	if err != nil {
		return "", fmt.Errorf("RecordHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// MustInvocationID is like InvocationID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInvocationID(scenario string, index int, params Record) string {
	id, err := InvocationID(scenario, index, params)
	if err != nil {
		panic(err)
	}
	return id
}
