// Package content defines the site content document and the errors shared by
// its storage backends and HTTP layer.
//
// The document is opaque: the store checks only that it is a JSON object with
// at least one member, and keeps member values as raw JSON.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound means no document has ever been stored.
	ErrNotFound = errors.New("content not found")
	// ErrInvalidInput means a write carried a missing, null, non-object or empty document.
	ErrInvalidInput = errors.New("content must be a non-empty JSON object")
	// ErrRead wraps storage failures while loading the document.
	ErrRead = errors.New("content read failed")
	// ErrWrite wraps storage failures while replacing the document.
	ErrWrite = errors.New("content write failed")
)

// Document is the whole content document, keyed by top-level member.
type Document map[string]json.RawMessage

// Decode parses raw into a Document and validates it.
func Decode(raw []byte) (Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrInvalidInput
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrInvalidInput
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate rejects nil and zero-key documents.
func Validate(doc Document) error {
	if len(doc) == 0 {
		return ErrInvalidInput
	}
	return nil
}

// Encode serializes doc for storage. Member values are written as received;
// HTML characters are not escaped.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
