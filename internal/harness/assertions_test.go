package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult("run-1")
	r.AddRegistrationTrace(`{"title":"send 1","level":["p0"]}`, 1)
	r.AddRegistrationTrace("plain", 2)
	r.AddOutcomeTrace(`{"title":"send 1","level":["p0"]}`, nil, 3)
	r.AddOutcomeTrace("plain", assert.AnError, 4)
	return r
}

func TestEvaluateExpectations_Pass(t *testing.T) {
	r := sampleResult()
	msgs := EvaluateExpectations(r, []Expectation{
		{Type: ExpectTraceContains, Title: "send 1"},
		{Type: ExpectTraceContains, Title: "send 1", Status: EventPassed},
		{Type: ExpectTraceContains, Title: "plain", Status: EventFailed},
		{Type: ExpectTraceOrder, Titles: []string{"send 1", "plain"}},
		{Type: ExpectOutcomeCount, Status: EventRegistered, Count: 2},
		{Type: ExpectOutcomeCount, Status: EventPassed, Count: 1},
	})
	assert.Empty(t, msgs)
	assert.Empty(t, r.Errors)
}

func TestEvaluateExpectations_Failures(t *testing.T) {
	tests := []struct {
		name string
		exp  Expectation
		want string
	}{
		{"missing title", Expectation{Type: ExpectTraceContains, Title: "nope"}, "not found in trace"},
		{"wrong status", Expectation{Type: ExpectTraceContains, Title: "plain", Status: EventPassed}, "plain (passed)"},
		{"order reversed", Expectation{Type: ExpectTraceOrder, Titles: []string{"plain", "send 1"}}, "plain ran after send 1"},
		{"order missing", Expectation{Type: ExpectTraceOrder, Titles: []string{"send 1", "gone"}}, "missing title: gone"},
		{"count", Expectation{Type: ExpectOutcomeCount, Status: EventFailed, Count: 0}, "actual: 1 failed"},
		{"unknown", Expectation{Type: "final_state"}, `unknown type "final_state"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleResult()
			msgs := EvaluateExpectations(r, []Expectation{tt.exp})
			require.Len(t, msgs, 1)
			assert.Contains(t, msgs[0], tt.want)
			assert.Contains(t, r.Errors, msgs[0])
		})
	}
}

func TestExpectation_Validate(t *testing.T) {
	valid := []Expectation{
		{Type: ExpectTraceContains, Title: "a"},
		{Type: ExpectTraceOrder, Titles: []string{"a"}},
		{Type: ExpectOutcomeCount, Status: EventPassed},
	}
	for _, e := range valid {
		assert.NoError(t, e.Validate(), e.Type)
	}

	invalid := map[string]Expectation{
		"type is required":           {},
		"unknown expectation type":   {Type: "x"},
		"title is required":          {Type: ExpectTraceContains},
		"unknown status":             {Type: ExpectTraceContains, Title: "a", Status: "ok"},
		"titles list is required":    {Type: ExpectTraceOrder},
		"status must be registered":  {Type: ExpectOutcomeCount},
		"count must be non-negative": {Type: ExpectOutcomeCount, Status: EventFailed, Count: -1},
	}
	for want, e := range invalid {
		err := e.Validate()
		require.Error(t, err, want)
		assert.Contains(t, err.Error(), want)
	}
}
