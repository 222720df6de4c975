package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Loading errors. Callers classify failures with errors.Is; both kinds are
// logged and the affected file is omitted from the output table.
var (
	// ErrRead is returned when the record file cannot be read from disk.
	ErrRead = errors.New("record file unreadable")

	// ErrParse is returned when the record file is not valid JSON.
	ErrParse = errors.New("record is not valid JSON")
)

// Document is a parsed report record. Records have no fixed schema; field
// accessors perform best-effort lookups against the root value. The root
// is usually a JSON object, but any valid JSON document counts as parsed:
// a record whose root is an array, scalar, or null has no extractable
// fields, yet it keeps its output row and is still fed to the classifier.
type Document struct {
	root any
}

// Load reads and parses one JSON record from path.
//
// Numbers are decoded with json.Number so integer values such as file
// sizes survive the round trip to decimal text without float formatting
// artifacts.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Paths come from directory discovery
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	return Document{root: root}, nil
}

// object returns the root as a JSON object, or nil for any other root
// kind. Lookups against the nil map find nothing, so field accessors
// report absence without caring about the root's shape.
func (d Document) object() map[string]any {
	obj, _ := d.root.(map[string]any)
	return obj
}

// Canonical returns the compact, deterministic single-line serialization
// of the document used as the classifier's input payload. Map keys are
// emitted in sorted order by encoding/json, so the same document always
// produces the same bytes. Non-object roots serialize as-is.
func (d Document) Canonical() ([]byte, error) {
	data, err := json.Marshal(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize record: %w", err)
	}
	return data, nil
}
