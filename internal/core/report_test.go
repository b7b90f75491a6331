package core

import (
	"strings"
	"testing"
	"time"
)

func TestFormatReport_GroupsByRow(t *testing.T) {
	result := BatchResult{
		Total: 3,
		Valid: []ValidRecord{{Row: 1}, {Row: 3}},
		Errors: []FieldError{
			{Row: 2, Field: FieldEmail, Value: "user@@nodomain", Kind: KindInvalidEmail, Message: "value is not a valid email address"},
			{Row: 2, Field: FieldAge, Value: "151", Kind: KindOutOfRange, Message: "age must be between 1 and 150"},
		},
	}

	report := FormatReport(result)

	if !strings.Contains(report, "ROW 2") {
		t.Error("report is missing the row header")
	}
	if strings.Count(report, "ROW ") != 1 {
		t.Errorf("expected one row block, got %d", strings.Count(report, "ROW "))
	}
	for _, want := range []string{
		"Field: email",
		"Value: user@@nodomain",
		"value is not a valid email address",
		"Field: age",
		"Total records:    3",
		"Valid records:    2",
		"Rows with errors: 1",
		"Total errors:     2",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report is missing %q\n%s", want, report)
		}
	}
}

func TestFormatReport_NoErrors(t *testing.T) {
	report := FormatReport(BatchResult{Total: 5, Valid: make([]ValidRecord, 5)})

	if !strings.Contains(report, "No validation errors found") {
		t.Errorf("clean batch must produce an explicit no-errors body:\n%s", report)
	}
	if strings.Contains(report, "ROW ") {
		t.Error("clean report should not contain row blocks")
	}
}

func TestFormatReport_OmitsEmptyValue(t *testing.T) {
	result := BatchResult{
		Total: 1,
		Errors: []FieldError{
			{Row: 1, Field: FieldName, Kind: KindRequired, Message: "required field is empty"},
		},
	}

	report := FormatReport(result)
	if strings.Contains(report, "Value:") {
		t.Error("required-field errors have no value to show")
	}
}

func TestFormatReport_FieldSummary(t *testing.T) {
	result := BatchResult{
		Total: 4,
		Errors: []FieldError{
			{Row: 1, Field: FieldEmail, Kind: KindInvalidEmail, Message: "m"},
			{Row: 2, Field: FieldEmail, Kind: KindInvalidEmail, Message: "m"},
			{Row: 3, Field: FieldAge, Kind: KindOutOfRange, Message: "m"},
		},
	}

	report := FormatReport(result)
	emailIdx := strings.Index(report, "email: 2 error(s)")
	ageIdx := strings.Index(report, "age: 1 error(s)")
	if emailIdx < 0 || ageIdx < 0 {
		t.Fatalf("summary lines missing:\n%s", report)
	}
	if emailIdx > ageIdx {
		t.Error("summary must list the most frequent field first")
	}
}

func TestErrorsByField_Deterministic(t *testing.T) {
	errors := []FieldError{
		{Field: FieldAge},
		{Field: FieldEmail},
		{Field: FieldName},
		{Field: FieldEmail},
	}

	got := ErrorsByField(errors)
	want := []FieldErrorCount{
		{Field: FieldEmail, Count: 2},
		{Field: FieldAge, Count: 1},
		{Field: FieldName, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReportFileName(t *testing.T) {
	ts := time.Date(2025, 1, 15, 14, 30, 5, 0, time.UTC)
	if got := ReportFileName(ts); got != "error_report_20250115_143005.txt" {
		t.Errorf("ReportFileName() = %q", got)
	}
}
