package harness

// Trace event types.
const (
	EventRegistered = "registered"
	EventPassed     = "passed"
	EventFailed     = "failed"
)

// TraceEvent is one entry in a run's trace.
type TraceEvent struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Error string `json:"error,omitempty"`
	Seq   int64  `json:"seq"`
}

// Result is the outcome of executing every registered invocation.
type Result struct {
	RunID string `json:"run_id"`

	// Pass is true when every invocation passed and every expectation held.
	Pass bool `json:"pass"`

	// Trace holds registrations followed by outcomes, in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains one message per failed invocation or expectation.
	Errors []string `json:"errors,omitempty"`

	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// NewResult creates a passing, empty result.
func NewResult(runID string) *Result {
	return &Result{
		RunID:  runID,
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddRegistrationTrace appends a registered event.
func (r *Result) AddRegistrationTrace(title string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{Type: EventRegistered, Title: title, Seq: seq})
}

// AddOutcomeTrace appends a passed or failed event depending on err.
func (r *Result) AddOutcomeTrace(title string, err error, seq int64) {
	ev := TraceEvent{Type: EventPassed, Title: title, Seq: seq}
	if err != nil {
		ev.Type = EventFailed
		ev.Error = err.Error()
		r.Failed++
	} else {
		r.Passed++
	}
	r.Trace = append(r.Trace, ev)
}

// Outcomes returns only the passed and failed events.
func (r *Result) Outcomes() []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type != EventRegistered {
			out = append(out, ev)
		}
	}
	return out
}
