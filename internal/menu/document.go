package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Section is a named, ordered list of menu lines.
type Section struct {
	Name  string
	Items []string
}

// Document maps section names to their lines and remembers the order in
// which sections were first added. The zero value is an empty document.
type Document struct {
	sections []Section
	index    map[string]int
}

// NewDocument returns a document with an empty section for each name.
func NewDocument(names ...string) *Document {
	d := &Document{}
	for _, name := range names {
		d.Ensure(name)
	}
	return d
}

// Ensure creates an empty section if name is not present yet.
func (d *Document) Ensure(name string) {
	d.position(name)
}

// Append adds item to the end of the named section, creating it if needed.
func (d *Document) Append(name, item string) {
	i := d.position(name)
	d.sections[i].Items = append(d.sections[i].Items, item)
}

// Items returns the lines of a section, or nil if it does not exist.
func (d *Document) Items(name string) []string {
	if i, ok := d.index[name]; ok {
		return d.sections[i].Items
	}
	return nil
}

// Has reports whether the section exists.
func (d *Document) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Sections returns the sections in insertion order.
func (d *Document) Sections() []Section {
	out := make([]Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// Len returns the number of sections.
func (d *Document) Len() int {
	return len(d.sections)
}

// ItemCount returns the number of lines across all sections.
func (d *Document) ItemCount() int {
	n := 0
	for _, s := range d.sections {
		n += len(s.Items)
	}
	return n
}

func (d *Document) position(name string) int {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[name]; ok {
		return i
	}
	d.sections = append(d.sections, Section{Name: name, Items: []string{}})
	d.index[name] = len(d.sections) - 1
	return len(d.sections) - 1
}

func (d *Document) set(name string, items []string) {
	if items == nil {
		items = []string{}
	}
	i := d.position(name)
	d.sections[i].Items = items
}

// MarshalJSON writes the sections as a JSON object in insertion order.
// Empty sections are written as [] and HTML characters are left unescaped.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range d.sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeRaw(s.Name)
		if err != nil {
			return nil, err
		}
		items := s.Items
		if items == nil {
			items = []string{}
		}
		val, err := encodeRaw(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string arrays, keeping key order.
// A repeated key replaces the earlier value in place.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = Document{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("menu decode failed: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("menu decode failed: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("menu decode failed: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("menu decode failed: unexpected key %v", tok)
		}
		var items []string
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("menu decode failed for section %q: %w", name, err)
		}
		d.set(name, items)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("menu decode failed: %w", err)
	}
	return nil
}

func encodeRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
