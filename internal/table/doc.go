// Package table parses textual example tables into parameter records.
//
// A table is a block of pipe-delimited rows. The first non-empty row is
// the header naming the fields in order; each following row becomes one
// record:
//
//	| accountTag | contactType | smsMessage |
//	| 'us'       | false       | 1          |
//	| "uk"       | null        | [1, 2]     |
//
// Header cells are taken verbatim as field names. Data cells are parsed
// as YAML flow literals: quoted or bare strings, integers, floats,
// booleans, null, and flow sequences or mappings. The JavaScript-style
// word undefined and empty cells both parse to null. Rows made only of
// dashes and colons (markdown separators) are skipped.
package table
