package scenario

import (
	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/table"
)

// SourceKind discriminates the parameter source variants.
type SourceKind int

const (
	// SourceEmpty yields exactly one empty record.
	SourceEmpty SourceKind = iota
	// SourceTable is tabular text parsed into records.
	SourceTable
	// SourceRecords is an explicit record list, used as-is.
	SourceRecords
)

func (k SourceKind) String() string {
	switch k {
	case SourceTable:
		return "table"
	case SourceRecords:
		return "records"
	default:
		return "empty"
	}
}

// TableParser converts tabular text into records.
type TableParser func(text string) ([]ir.Record, error)

// Source describes where a scenario's parameter records come from.
// The zero value is the empty source.
type Source struct {
	kind    SourceKind
	text    string
	parse   TableParser
	records []ir.Record
	parsed  bool
}

// Table returns a source parsed from tabular text with table.Parse.
func Table(text string) Source {
	return TableWith(text, table.Parse)
}

// TableWith returns a tabular source parsed with a custom parser.
func TableWith(text string, parse TableParser) Source {
	if parse == nil {
		parse = table.Parse
	}
	return Source{kind: SourceTable, text: text, parse: parse}
}

// Records returns an explicit source. The records are used as given, one
// invocation per record.
func Records(recs ...ir.Record) Source {
	return Source{kind: SourceRecords, records: recs}
}

func (s Source) Kind() SourceKind { return s.kind }

// Text returns the raw table text of a tabular source.
func (s Source) Text() string { return s.text }

// prepare validates the source and, for tables, parses it once so that
// parse errors surface when the source is attached to a scenario.
func (s Source) prepare() (Source, error) {
	switch s.kind {
	case SourceTable:
		if s.parsed {
			return s, nil
		}
		recs, err := s.parse(s.text)
		if err != nil {
			return s, &ValidationError{Annotation: "examples", Message: "@examples table error", Err: err}
		}
		s.records = recs
		s.parsed = true
		return s, nil
	case SourceRecords:
		if len(s.records) == 0 {
			return s, invalid("examples", MsgExamplesInvalid)
		}
		for _, r := range s.records {
			if r == nil {
				return s, invalid("examples", MsgExamplesInvalid)
			}
		}
		return s, nil
	default:
		return s, nil
	}
}

// Resolve turns the source into its ordered record list. Every returned
// record is a fresh shallow copy, so callers may mutate them freely.
func (s Source) Resolve() ([]ir.Record, error) {
	switch s.kind {
	case SourceTable:
		prepared, err := s.prepare()
		if err != nil {
			return nil, err
		}
		return cloneRecords(prepared.records), nil
	case SourceRecords:
		return cloneRecords(s.records), nil
	default:
		return []ir.Record{{}}, nil
	}
}

func cloneRecords(recs []ir.Record) []ir.Record {
	out := make([]ir.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
