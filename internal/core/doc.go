// Package core implements the customer batch validation engine.
//
// The engine is a composition of pure functions with no I/O and no
// database dependencies, so every rule is testable in isolation:
//
//  1. Field validators check one raw value each (name, CPF, email,
//     contract value, age) and either normalize it or return a typed
//     failure.
//  2. ValidateRow applies every field validator to one record in a
//     fixed order and collects all failures; it never stops at the
//     first one. A row with zero failures yields a normalized Customer.
//  3. ValidateBatch walks the whole input in order, partitions rows
//     into accepted customers and a flat, ordered error list, and
//     never aborts on a bad row.
//  4. FormatReport renders the collected errors as a plain-text report
//     grouped by row, with a per-field summary.
//
// Reading the source CSV and writing report artifacts are collaborator
// concerns; the only entry points that touch bytes are ParseCSV (which
// materializes Records from an in-memory CSV payload) and the Service,
// which orchestrates a full run against an optional persistence store.
package core
