package core

import "fmt"

// Field names of a customer record. ValidateRow checks them in exactly
// this order so error ordering within a row is stable.
const (
	FieldName          = "name"
	FieldNationalID    = "national_id"
	FieldEmail         = "email"
	FieldContractValue = "contract_value"
	FieldAge           = "age"
)

// FieldOrder is the fixed validation order for customer fields.
var FieldOrder = []string{
	FieldName,
	FieldNationalID,
	FieldEmail,
	FieldContractValue,
	FieldAge,
}

// ErrorKind classifies a field validation failure.
type ErrorKind string

const (
	KindRequired          ErrorKind = "required"
	KindLengthViolation   ErrorKind = "length_violation"
	KindInvalidIdentifier ErrorKind = "invalid_identifier"
	KindInvalidEmail      ErrorKind = "invalid_email"
	KindNotANumber        ErrorKind = "not_a_number"
	KindNegativeValue     ErrorKind = "negative_value"
	KindNotAnInteger      ErrorKind = "not_an_integer"
	KindOutOfRange        ErrorKind = "out_of_range"
)

// Record is one raw customer row as delivered by the input collaborator.
// Row is the 1-based position of the record in the source batch and is
// preserved through validation for traceability.
type Record struct {
	Row    int
	Fields map[string]string
}

// Get returns the raw value for a field, or "" if the field is absent.
func (r Record) Get(field string) string {
	return r.Fields[field]
}

// Customer is a normalized, accepted record: trimmed strings, a
// digits-only CPF, and parsed numeric values.
type Customer struct {
	Name          string  `json:"name"`
	NationalID    string  `json:"national_id"`
	Email         string  `json:"email"`
	ContractValue float64 `json:"contract_value"`
	Age           int     `json:"age"`
}

// Failure describes why a single field value was rejected.
// Field validators return Failures; ValidateRow attaches the row and
// field context to produce FieldErrors.
type Failure struct {
	Kind    ErrorKind
	Message string
}

// FieldError is a validation failure scoped to exactly one field of one row.
type FieldError struct {
	Row     int       `json:"row"`
	Field   string    `json:"field"`
	Value   string    `json:"value,omitempty"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
}

// RowResult is the outcome of validating a single record. Exactly one of
// the two states holds: zero errors and a populated Customer, or one
// error per failing field and a zero Customer.
type RowResult struct {
	Row      int
	Customer Customer
	Errors   []FieldError
}

// Valid reports whether the row passed every field validator.
func (r RowResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidRecord is an accepted, normalized record together with its
// original row position.
type ValidRecord struct {
	Row      int      `json:"row"`
	Customer Customer `json:"customer"`
}

// BatchResult is the aggregate outcome of validating a full batch.
// Both sequences preserve input row order; within a row, errors follow
// FieldOrder. Invariant: len(Valid) + InvalidRows() == Total.
type BatchResult struct {
	Total  int
	Valid  []ValidRecord
	Errors []FieldError
}

// InvalidRows returns the number of distinct rows that produced at
// least one field error.
func (b BatchResult) InvalidRows() int {
	seen := make(map[int]bool)
	for _, e := range b.Errors {
		seen[e.Row] = true
	}
	return len(seen)
}
