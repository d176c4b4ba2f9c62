package title

import (
	"github.com/tidwall/gjson"
)

// Decoded is an invocation title parsed back into its parts.
type Decoded struct {
	Title  string         `json:"title"`
	Tags   []Group        `json:"tags,omitempty"`
	Brands []Group        `json:"brands,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
	Level  string         `json:"level,omitempty"`

	// Structured is false when s was a plain, unencoded title.
	Structured bool `json:"structured"`
}

// Decode parses a title produced by Encode. Anything that is not a JSON
// object with a string "title" field is returned as a plain title.
//
// Keys whose values no longer have the encoded shape (for instance free-form
// metadata that overwrote "tags") are returned in Meta instead.
func Decode(s string) Decoded {
	if !gjson.Valid(s) {
		return Decoded{Title: s}
	}
	root := gjson.Parse(s)
	if !root.IsObject() || root.Get("title").Type != gjson.String {
		return Decoded{Title: s}
	}

	d := Decoded{Structured: true}
	root.ForEach(func(key, value gjson.Result) bool {
		switch k := key.String(); k {
		case "title":
			d.Title = value.String()
		case "tags":
			if groups, ok := decodeGroups(value); ok {
				d.Tags = groups
				return true
			}
			d.setMeta(k, value)
		case "brands":
			if groups, ok := decodeGroups(value); ok {
				d.Brands = groups
				return true
			}
			d.setMeta(k, value)
		case "level":
			if lvl := value.Array(); value.IsArray() && len(lvl) == 1 && lvl[0].Type == gjson.String {
				d.Level = lvl[0].String()
				return true
			}
			d.setMeta(k, value)
		default:
			d.setMeta(k, value)
		}
		return true
	})
	return d
}

func (d *Decoded) setMeta(key string, value gjson.Result) {
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	d.Meta[key] = value.Value()
}

func decodeGroups(value gjson.Result) ([]Group, bool) {
	if !value.IsArray() {
		return nil, false
	}
	var groups []Group
	for _, entry := range value.Array() {
		parts := entry.Array()
		if !entry.IsArray() || len(parts) == 0 || len(parts) > 2 || parts[0].Type != gjson.String {
			return nil, false
		}
		g := Group{Name: parts[0].String()}
		if len(parts) == 2 {
			g.Config = parts[1].Value()
			g.HasConfig = true
		}
		groups = append(groups, g)
	}
	return groups, true
}
