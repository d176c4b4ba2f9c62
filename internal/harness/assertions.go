package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/casebook/internal/title"
)

// Expectation types.
const (
	ExpectTraceContains = "trace_contains"
	ExpectTraceOrder    = "trace_order"
	ExpectOutcomeCount  = "outcome_count"
)

// Expectation is a check over a run's trace. Titles match either the
// exact registered title or the plain title decoded from it, so suites
// do not have to spell out the metadata JSON.
type Expectation struct {
	// Type is one of trace_contains, trace_order, outcome_count.
	Type string `yaml:"type" json:"type"`

	// Title is the invocation title (trace_contains).
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Status is "passed", "failed" or "registered". For trace_contains it
	// is optional and defaults to any outcome; for outcome_count it is
	// required.
	Status string `yaml:"status,omitempty" json:"status,omitempty"`

	// Titles are expected in this order among outcomes (trace_order).
	Titles []string `yaml:"titles,omitempty" json:"titles,omitempty"`

	// Count is the exact number of events with Status (outcome_count).
	Count int `yaml:"count,omitempty" json:"count,omitempty"`
}

// ExpectationError describes a failed expectation.
type ExpectationError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\noutcomes:\n")
	for _, ev := range e.Trace {
		if ev.Type != EventRegistered {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", ev.Seq, ev.Type, ev.Title)
		}
	}
	return buf.String()
}

// Validate checks that the expectation carries the fields its type needs.
func (e Expectation) Validate() error {
	switch e.Type {
	case ExpectTraceContains:
		if e.Title == "" {
			return fmt.Errorf("title is required for %s", e.Type)
		}
		if e.Status != "" && !validStatus(e.Status) {
			return fmt.Errorf("unknown status %q", e.Status)
		}
	case ExpectTraceOrder:
		if len(e.Titles) == 0 {
			return fmt.Errorf("titles list is required for %s", e.Type)
		}
	case ExpectOutcomeCount:
		if !validStatus(e.Status) {
			return fmt.Errorf("status must be registered, passed or failed for %s", e.Type)
		}
		if e.Count < 0 {
			return fmt.Errorf("count must be non-negative for %s", e.Type)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown expectation type %q", e.Type)
	}
	return nil
}

func validStatus(s string) bool {
	return s == EventRegistered || s == EventPassed || s == EventFailed
}

func titleMatches(registered, want string) bool {
	return registered == want || title.Decode(registered).Title == want
}

func expectTraceContains(trace []TraceEvent, e Expectation) error {
	for _, ev := range trace {
		if !titleMatches(ev.Title, e.Title) {
			continue
		}
		if e.Status == "" && ev.Type != EventRegistered {
			return nil
		}
		if ev.Type == e.Status {
			return nil
		}
	}
	want := e.Title
	if e.Status != "" {
		want = fmt.Sprintf("%s (%s)", e.Title, e.Status)
	}
	return &ExpectationError{
		Type:     ExpectTraceContains,
		Expected: want,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// expectTraceOrder checks the first outcome position of each title.
// Other outcomes may appear in between.
func expectTraceOrder(trace []TraceEvent, e Expectation) error {
	positions := make([]int, len(e.Titles))
	for i, want := range e.Titles {
		positions[i] = -1
		for j, ev := range trace {
			if ev.Type != EventRegistered && titleMatches(ev.Title, want) {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			return &ExpectationError{
				Type:     ExpectTraceOrder,
				Expected: fmt.Sprintf("all titles present: %v", e.Titles),
				Actual:   fmt.Sprintf("missing title: %s", want),
				Trace:    trace,
			}
		}
	}
	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			return &ExpectationError{
				Type:     ExpectTraceOrder,
				Expected: fmt.Sprintf("titles in order: %v", e.Titles),
				Actual:   fmt.Sprintf("%s ran after %s", e.Titles[i-1], e.Titles[i]),
				Trace:    trace,
			}
		}
	}
	return nil
}

func expectOutcomeCount(trace []TraceEvent, e Expectation) error {
	count := 0
	for _, ev := range trace {
		if ev.Type == e.Status {
			count++
		}
	}
	if count != e.Count {
		return &ExpectationError{
			Type:     ExpectOutcomeCount,
			Expected: fmt.Sprintf("%d %s", e.Count, e.Status),
			Actual:   fmt.Sprintf("%d %s", count, e.Status),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateExpectations checks every expectation against result, records
// each failure on the result and returns the failure messages.
func EvaluateExpectations(result *Result, exps []Expectation) []string {
	var msgs []string
	for i, e := range exps {
		var err error
		switch e.Type {
		case ExpectTraceContains:
			err = expectTraceContains(result.Trace, e)
		case ExpectTraceOrder:
			err = expectTraceOrder(result.Trace, e)
		case ExpectOutcomeCount:
			err = expectOutcomeCount(result.Trace, e)
		default:
			err = fmt.Errorf("expectation[%d]: unknown type %q", i, e.Type)
		}
		if err != nil {
			msgs = append(msgs, err.Error())
			result.AddError(err.Error())
		}
	}
	return msgs
}
