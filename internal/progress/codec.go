package progress

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/roach88/tally/internal/ir"
)

// ErrNotObject is returned by DecodeRaw when the top-level value is valid
// JSON but not an object.
var ErrNotObject = errors.New("snapshot root is not a JSON object")

// Encode serializes a snapshot to its wire form. Map keys are emitted in
// sorted order and nil collections are written as empty ones.
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, errors.New("encode snapshot: nil snapshot")
	}
	out := s.Clone()
	out.normalize()
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// EncodeIndent is Encode with two-space indentation, for files people read.
func EncodeIndent(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, errors.New("encode snapshot: nil snapshot")
	}
	out := s.Clone()
	out.normalize()
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeRaw decodes untrusted snapshot text into a loosely typed tree.
// Numbers are kept as json.Number so integers survive exactly. Trailing
// data after the first value is an error.
func DecodeRaw(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode snapshot: trailing data after top-level value")
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// Fingerprint returns the content address of a snapshot: the SHA-256 of
// its canonical JSON under ir.DomainSnapshot. Equal snapshots have equal
// fingerprints regardless of map ordering.
func Fingerprint(s *Snapshot) (string, error) {
	data, err := Encode(s)
	if err != nil {
		return "", err
	}
	root, err := DecodeRaw(string(data))
	if err != nil {
		return "", err
	}
	v, err := ir.FromDecoded(root)
	if err != nil {
		return "", fmt.Errorf("fingerprint snapshot: %w", err)
	}
	return ir.Fingerprint(ir.DomainSnapshot, v)
}
