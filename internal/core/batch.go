package core

// batch.go orchestrates validation across a full batch. The batch is
// never partially validated: every record is processed regardless of
// how many before it failed, and the outcome is a deterministic
// partition of the input. Running twice on the same input yields an
// identical BatchResult.

// ValidateBatch validates records in input order. Accepted rows are
// appended to Valid and every error from rejected rows to Errors, both
// preserving row order (and FieldOrder within a row).
func ValidateBatch(records []Record) BatchResult {
	result := BatchResult{Total: len(records)}

	for _, rec := range records {
		row := ValidateRow(rec)
		if row.Valid() {
			result.Valid = append(result.Valid, ValidRecord{
				Row:      row.Row,
				Customer: row.Customer,
			})
			continue
		}
		result.Errors = append(result.Errors, row.Errors...)
	}

	return result
}
