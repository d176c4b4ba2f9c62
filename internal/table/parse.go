package table

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/casebook/internal/ir"
)

// ParseError reports a malformed table row.
type ParseError struct {
	Line    int // 1-based line within the table text
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("table line %d: %s", e.Line, e.Message)
}

// Parse turns a textual table into one record per data row.
// A table with a header and no data rows yields an empty, non-nil slice.
// Text with no rows at all is an error.
func Parse(text string) ([]ir.Record, error) {
	var header []string
	records := []ir.Record{}

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		cells, err := splitRow(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Message: err.Error()}
		}
		if isSeparator(cells) {
			continue
		}

		if header == nil {
			header, err = parseHeader(cells)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Message: err.Error()}
			}
			continue
		}

		if len(cells) != len(header) {
			return nil, &ParseError{
				Line:    lineNo,
				Message: fmt.Sprintf("row has %d cells, header has %d", len(cells), len(header)),
			}
		}

		rec := make(ir.Record, len(header))
		for j, cell := range cells {
			val, err := parseCell(cell)
			if err != nil {
				return nil, &ParseError{
					Line:    lineNo,
					Message: fmt.Sprintf("field %q: %v", header[j], err),
				}
			}
			rec[header[j]] = val
		}
		records = append(records, rec)
	}

	if header == nil {
		return nil, &ParseError{Line: 1, Message: "table has no header row"}
	}
	return records, nil
}

func parseHeader(cells []string) ([]string, error) {
	seen := make(map[string]bool, len(cells))
	for i, name := range cells {
		if name == "" {
			return nil, fmt.Errorf("header cell %d is empty", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate header field %q", name)
		}
		seen[name] = true
	}
	return cells, nil
}

// parseCell decodes one data cell as a YAML flow literal.
func parseCell(cell string) (any, error) {
	if cell == "" || cell == "undefined" {
		return nil, nil
	}

	var v any
	if err := yaml.Unmarshal([]byte(cell), &v); err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", cell, err)
	}
	return ir.Normalize(v)
}

// splitRow splits a row on '|' outside quotes and brackets.
// One leading and one trailing pipe are optional.
func splitRow(line string) ([]string, error) {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")

	var (
		cells []string
		cur   strings.Builder
		quote rune
		depth int
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q", r)
			}
		case r == '|' && depth == 0:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unclosed bracket")
	}
	return append(cells, strings.TrimSpace(cur.String())), nil
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if c == "" || strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}
