package store

import (
	"fmt"
	"strings"
)

// Predicate filters report rows. Only types in this package implement it.
//
// Predicates compile to parameterized SQL: values are never interpolated
// and fields are checked against the queried table's columns.
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose column equals a literal value.
type Equals struct {
	Field string
	Value any
}

// And matches rows satisfying every predicate. An empty And matches all.
type And struct {
	Predicates []Predicate
}

func (Equals) predicateNode() {}
func (And) predicateNode()    {}

// Columns that may appear in predicates, per table.
var (
	invocationColumns = []string{"id", "scenario", "idx", "title"}
	eventColumns      = []string{"seq", "type", "title", "error"}
)

// compileWhere returns a WHERE fragment (without the keyword) and its
// parameters. A nil predicate is always true.
func compileWhere(p Predicate, columns []string) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case Equals:
		if !containsColumn(columns, pred.Field) {
			return "", nil, fmt.Errorf("unknown filter field %q", pred.Field)
		}
		return pred.Field + " = ?", []any{pred.Value}, nil
	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := compileWhere(sub, columns)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func containsColumn(columns []string, field string) bool {
	for _, c := range columns {
		if c == field {
			return true
		}
	}
	return false
}
