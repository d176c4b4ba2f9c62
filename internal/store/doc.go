// Package store keeps run reports in SQLite.
//
// A report is three append-only tables:
//   - runs: one row per execution of a suite (pass flag and counts)
//   - invocations: every materialized invocation of the run, with its
//     content-addressed ID and canonical JSON parameters
//   - events: the harness trace (registered, passed, failed)
//
// Ordering never relies on wall time. Runs are ordered by insertion,
// events by their logical seq, invocations by (scenario order, index).
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
