package title

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/casebook/internal/ir"
)

// Group is one tag or brand entry: the category name, optionally followed
// by the configuration given to its annotation. It encodes as a JSON
// array, ["salesforce"] or ["salesforce", {...}].
type Group struct {
	Name      string
	Config    any
	HasConfig bool
}

// MarshalJSON implements json.Marshaler.
func (g Group) MarshalJSON() ([]byte, error) {
	if g.HasConfig {
		return marshalValue([]any{g.Name, g.Config})
	}
	return marshalValue([]any{g.Name})
}

// Metadata is everything besides the title that is folded into an
// encoded title.
type Metadata struct {
	Tags   []Group
	Brands []Group
	Meta   map[string]any
	Level  string
}

// IsEmpty reports whether there is nothing to fold into the title.
func (m Metadata) IsEmpty() bool {
	return len(m.Tags) == 0 && len(m.Brands) == 0 && len(m.Meta) == 0 && m.Level == ""
}

// Encode returns title verbatim when md is empty, otherwise a single JSON
// object carrying the title and the merged metadata.
func Encode(title string, md Metadata) (string, error) {
	if md.IsEmpty() {
		return title, nil
	}

	obj := &orderedObject{values: map[string]json.RawMessage{}}
	if err := obj.set("title", title); err != nil {
		return "", err
	}
	if len(md.Tags) > 0 {
		if err := obj.set("tags", md.Tags); err != nil {
			return "", err
		}
	}
	if len(md.Brands) > 0 {
		if err := obj.set("brands", md.Brands); err != nil {
			return "", err
		}
	}
	for _, k := range ir.SortedKeys(md.Meta) {
		if err := obj.set(k, md.Meta[k]); err != nil {
			return "", err
		}
	}
	if md.Level != "" {
		if err := obj.set("level", []string{md.Level}); err != nil {
			return "", err
		}
	}
	return obj.String(), nil
}

// orderedObject is a JSON object that remembers first-insertion order.
type orderedObject struct {
	keys   []string
	values map[string]json.RawMessage
}

func (o *orderedObject) set(key string, v any) error {
	raw, err := marshalValue(v)
	if err != nil {
		return fmt.Errorf("encode title field %q: %w", key, err)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
	return nil
}

func (o *orderedObject) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := marshalValue(k)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(o.values[k])
	}
	buf.WriteByte('}')
	return buf.String()
}

// marshalValue is json.Marshal without HTML escaping or a trailing newline.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
