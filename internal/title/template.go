package title

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/roach88/casebook/internal/ir"
)

// SubstitutionError reports a title template that could not be rendered
// against a parameter record, typically a placeholder naming a field the
// record does not have.
type SubstitutionError struct {
	Template string
	Err      error
}

// Error implements the error interface.
func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("title template %q: %v", e.Template, e.Err)
}

// Unwrap returns the underlying template error.
func (e *SubstitutionError) Unwrap() error {
	return e.Err
}

// Compile substitutes the record's fields into the title template.
// Unresolved placeholders are errors, never rendered as "<no value>".
func Compile(tmpl string, rec ir.Record) (string, error) {
	t, err := template.New("title").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", &SubstitutionError{Template: tmpl, Err: err}
	}

	var b strings.Builder
	if err := t.Execute(&b, map[string]any(rec)); err != nil {
		return "", &SubstitutionError{Template: tmpl, Err: err}
	}
	return b.String(), nil
}
