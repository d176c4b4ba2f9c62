// Package ir provides the parameter record value model for casebook.
//
// This package contains value types and their canonical serialization only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps records the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Record maps field names to parsed literal values: string, int64,
//     float64, bool, nil, []any and map[string]any
//   - Canonical JSON is the only encoding used for content-addressed IDs
//   - Object keys are ordered by UTF-16 code units (RFC 8785), never by Go map order
package ir
