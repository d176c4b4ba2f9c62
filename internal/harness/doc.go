// Package harness hosts materialized invocations.
//
// Two registrars are provided. Testing adapts a *testing.T so every
// invocation becomes a subtest. Harness records registrations and runs them
// later, in registration order, producing a Result whose trace is
// deterministic: sequence numbers come from a logical clock and the run ID
// from an injectable generator. Results can be checked against
// expectations (see EvaluateExpectations) and snapshotted with
// AssertGolden.
//
// Trace events have three types:
//
//	registered  the invocation was handed to the harness
//	passed      its callback returned nil
//	failed      its callback returned an error (recorded in Error)
package harness
