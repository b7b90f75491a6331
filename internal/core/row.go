package core

// row.go applies every field validator to one record. Validation does
// not short-circuit: the report must show every problem in a row at
// once, so all fields are checked and all failures collected. Error
// ordering within a row follows FieldOrder.

// ValidateRow validates a single record. When every field passes, the
// result carries a normalized Customer; otherwise it carries one
// FieldError per failing field, each tagged with the record's row.
func ValidateRow(rec Record) RowResult {
	result := RowResult{Row: rec.Row}
	var customer Customer

	for _, field := range FieldOrder {
		raw := rec.Get(field)

		var fail *Failure
		switch field {
		case FieldName:
			customer.Name, fail = ValidateName(raw)
		case FieldNationalID:
			customer.NationalID, fail = ValidateNationalID(raw)
		case FieldEmail:
			customer.Email, fail = ValidateEmail(raw)
		case FieldContractValue:
			customer.ContractValue, fail = ValidateContractValue(raw)
		case FieldAge:
			customer.Age, fail = ValidateAge(raw)
		}

		if fail != nil {
			result.Errors = append(result.Errors, FieldError{
				Row:     rec.Row,
				Field:   field,
				Value:   rec.Get(field),
				Kind:    fail.Kind,
				Message: fail.Message,
			})
		}
	}

	if len(result.Errors) == 0 {
		result.Customer = customer
	}
	return result
}
