package core

// report.go renders a BatchResult's errors as a plain-text report for
// humans. Formatting only: grouping, ordering, and labels. Where the
// report lands (file, HTTP response) and how the artifact is named with
// a timestamp is the caller's concern; ReportFileName is provided as
// the shared naming convention.

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const reportRule = "================================================================================"
const reportLine = "--------------------------------------------------------------------------------"

// FormatReport renders the validation outcome as a text report.
// Errors are grouped by row in input order; each group lists the field,
// the offending raw value, and the message. A clean batch produces an
// explicit "no errors" body so callers can tell "validated clean" from
// "not yet run".
func FormatReport(result BatchResult) string {
	var b strings.Builder

	b.WriteString(reportRule + "\n")
	b.WriteString("CUSTOMER DATA VALIDATION REPORT\n")
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Total records:    %d\n", result.Total)
	fmt.Fprintf(&b, "Valid records:    %d\n", len(result.Valid))
	fmt.Fprintf(&b, "Rows with errors: %d\n", result.InvalidRows())
	fmt.Fprintf(&b, "Total errors:     %d\n", len(result.Errors))
	b.WriteString(reportRule + "\n")

	if len(result.Errors) == 0 {
		b.WriteString("\nNo validation errors found. All records passed.\n")
		b.WriteString("\n" + reportRule + "\n")
		b.WriteString("END OF REPORT\n")
		b.WriteString(reportRule + "\n")
		return b.String()
	}

	currentRow := -1
	for _, e := range result.Errors {
		if e.Row != currentRow {
			currentRow = e.Row
			b.WriteString("\n" + reportLine + "\n")
			fmt.Fprintf(&b, "ROW %d\n", e.Row)
			b.WriteString(reportLine + "\n")
		}
		fmt.Fprintf(&b, "\n  Field: %s\n", e.Field)
		fmt.Fprintf(&b, "  Error: %s\n", e.Message)
		if e.Value != "" {
			fmt.Fprintf(&b, "  Value: %s\n", e.Value)
		}
	}

	b.WriteString("\n" + reportLine + "\n")
	b.WriteString("ERRORS BY FIELD\n")
	b.WriteString(reportLine + "\n")
	for _, fc := range ErrorsByField(result.Errors) {
		fmt.Fprintf(&b, "  %s: %d error(s)\n", fc.Field, fc.Count)
	}

	b.WriteString("\n" + reportRule + "\n")
	b.WriteString("END OF REPORT\n")
	b.WriteString(reportRule + "\n")
	return b.String()
}

// FieldErrorCount is the number of errors attributed to one field.
type FieldErrorCount struct {
	Field string
	Count int
}

// ErrorsByField aggregates errors per field, most frequent first.
// Ties break alphabetically so the summary is deterministic.
func ErrorsByField(errors []FieldError) []FieldErrorCount {
	counts := make(map[string]int)
	for _, e := range errors {
		counts[e.Field]++
	}

	result := make([]FieldErrorCount, 0, len(counts))
	for field, n := range counts {
		result = append(result, FieldErrorCount{Field: field, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Field < result[j].Field
	})
	return result
}

// ReportFileName returns the timestamped artifact name for an error
// report, e.g. "error_report_20250115_143005.txt".
func ReportFileName(t time.Time) string {
	return "error_report_" + t.Format("20060102_150405") + ".txt"
}
