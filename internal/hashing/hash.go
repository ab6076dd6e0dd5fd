// Package hashing produces the record hashes anchored on-chain by the data
// registry. JSON objects are canonicalized with sorted keys before hashing
// so semantically equal payloads always hash the same.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonicalize renders a payload as the exact string that gets hashed.
// Strings pass through untouched; JSON objects are re-marshalled with keys
// sorted recursively, using ", " and ": " separators so digests line up with
// hashes already anchored by earlier ingestion tooling.
func Canonicalize(data any) (string, error) {
	switch v := data.(type) {
	case string:
		return v, nil
	case map[string]any:
		b, err := marshalSorted(v)
		if err != nil {
			return "", fmt.Errorf("canonicalize object: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("data must be a string or a JSON object, got %T", data)
	}
}

// Sum returns the SHA-256 digest of the canonical form of data.
func Sum(data any) ([]byte, error) {
	s, err := Canonicalize(data)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256([]byte(s))
	return digest[:], nil
}

// Hex returns the SHA-256 digest of data as a lowercase hex string.
func Hex(data any) (string, error) {
	digest, err := Sum(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}

func marshalSorted(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',', ' ')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':', ' ')

		vb, err := marshalValue(m[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

func marshalValue(v any) ([]byte, error) {
	switch t := v.(type) {
	case map[string]any:
		return marshalSorted(t)
	case []any:
		buf := []byte{'['}
		for i, e := range t {
			if i > 0 {
				buf = append(buf, ',', ' ')
			}
			eb, err := marshalValue(e)
			if err != nil {
				return nil, err
			}
			buf = append(buf, eb...)
		}
		return append(buf, ']'), nil
	default:
		return json.Marshal(v)
	}
}
