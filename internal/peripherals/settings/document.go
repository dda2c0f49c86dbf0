package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
)

// Document is a decoded settings file.
type Document map[string]any

// Parse decodes JSONC data. Empty input is an empty document.
func Parse(data []byte) (Document, error) {
	stripped := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(stripped)) == 0 {
		return Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(stripped, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Encode renders the document as indented JSON.
func (d Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(map[string]any(d)); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return buf.Bytes(), nil
}

// Get returns the value at a dotted path.
func (d Document) Get(path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores value at a dotted path, creating intermediate objects. It
// reports whether the document changed. A non-object on the way is an error.
func (d Document) Set(path string, value any) (bool, error) {
	keys := strings.Split(path, ".")
	if path == "" || len(keys) == 0 {
		return false, errors.New("empty settings path")
	}

	m := map[string]any(d)
	for i, key := range keys[:len(keys)-1] {
		next, ok := m[key]
		if !ok {
			child := map[string]any{}
			m[key] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%s is not an object", strings.Join(keys[:i+1], "."))
		}
		m = child
	}

	last := keys[len(keys)-1]
	if old, ok := m[last]; ok && old == value {
		return false, nil
	}
	m[last] = value
	return true, nil
}

func (d Document) has(e Edit) bool {
	if e.Literal {
		_, ok := d[e.Path]
		return ok
	}
	_, ok := d.Get(e.Path)
	return ok
}

func (d Document) apply(e Edit) (bool, error) {
	if !e.Literal {
		return d.Set(e.Path, e.Value)
	}
	if old, ok := d[e.Path]; ok && old == any(e.Value) {
		return false, nil
	}
	d[e.Path] = e.Value
	return true, nil
}
