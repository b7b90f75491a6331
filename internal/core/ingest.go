package core

// ingest.go is the input boundary: it materializes an ordered sequence
// of Records from a raw CSV payload. It handles the messy reality of
// spreadsheet exports (UTF-8 BOM, invalid byte sequences, Excel ="..."
// cell prefixes, header rows preceded by title rows) and maps the
// source's Portuguese column names onto the engine's field names.
//
// A required column missing from the header is the one fatal condition:
// no row can be meaningfully validated without it, so ParseCSV reports
// it once and produces no records.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxHeaderSearchRows is how many leading rows are scanned for the
// header before giving up. Spreadsheet exports often carry title or
// note rows above the real header.
var MaxHeaderSearchRows = 20

// columnAliases maps each field to the column names accepted for it in
// the source file, matched case-insensitively. The Portuguese names
// come from the upstream spreadsheet contract.
var columnAliases = map[string][]string{
	FieldName:          {"name", "nome"},
	FieldNationalID:    {"national_id", "cpf"},
	FieldEmail:         {"email", "e-mail"},
	FieldContractValue: {"contract_value", "valor_contrato"},
	FieldAge:           {"age", "idade"},
}

// ParseCSV parses a CSV payload into ordered Records ready for
// ValidateBatch. Row numbers are 1-based over the data rows that follow
// the header; fully empty rows keep their position but yield no Record.
func ParseCSV(data []byte) ([]Record, error) {
	data = sanitizeUTF8(stripBOM(data))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	fieldIdx, headerRow, err := mapHeader(rows)
	if err != nil {
		return nil, err
	}

	dataRows := rows[headerRow+1:]
	records := make([]Record, 0, len(dataRows))
	for i, row := range dataRows {
		if isEmptyRow(row) {
			continue
		}

		fields := make(map[string]string, len(FieldOrder))
		for field, pos := range fieldIdx {
			if pos < len(row) {
				fields[field] = CleanCell(row[pos])
			}
		}
		records = append(records, Record{Row: i + 1, Fields: fields})
	}

	return records, nil
}

// mapHeader locates the header row and maps each field to its column
// position. It scans up to MaxHeaderSearchRows for a row where every
// required field resolves through columnAliases; if none qualifies, the
// first non-empty row is treated as the header and the missing fields
// are reported as a configuration error.
func mapHeader(rows [][]string) (map[string]int, int, error) {
	maxRows := MaxHeaderSearchRows
	if len(rows) < maxRows {
		maxRows = len(rows)
	}

	firstNonEmpty := -1
	for i := 0; i < maxRows; i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		if firstNonEmpty < 0 {
			firstNonEmpty = i
		}
		idx, missing := matchHeader(rows[i])
		if len(missing) == 0 {
			return idx, i, nil
		}
	}

	if firstNonEmpty < 0 {
		return nil, 0, fmt.Errorf("empty file")
	}

	_, missing := matchHeader(rows[firstNonEmpty])
	return nil, 0, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
}

// matchHeader resolves each field against a candidate header row.
// Returns the field→position index and the list of unresolved fields.
func matchHeader(header []string) (map[string]int, []string) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	idx := make(map[string]int, len(FieldOrder))
	var missing []string
	for _, field := range FieldOrder {
		found := false
		for _, alias := range columnAliases[field] {
			if pos, ok := positions[alias]; ok {
				idx[field] = pos
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, field)
		}
	}
	return idx, missing
}

// CleanCell removes common CSV artifacts from a cell value: surrounding
// whitespace, Excel formula prefixes (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// isEmptyRow reports whether every cell is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// stripBOM removes a leading UTF-8 byte order mark, commonly added by
// Windows spreadsheet exports.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the Unicode
// replacement character so the csv reader never sees broken encoding.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}

// CustomerCSV renders accepted records as CSV rows (header included)
// for the output collaborator to persist or serve as a download.
func CustomerCSV(valid []ValidRecord) [][]string {
	rows := make([][]string, 0, len(valid)+1)
	rows = append(rows, []string{FieldName, FieldNationalID, FieldEmail, FieldContractValue, FieldAge})
	for _, v := range valid {
		rows = append(rows, []string{
			v.Customer.Name,
			v.Customer.NationalID,
			v.Customer.Email,
			strconv.FormatFloat(v.Customer.ContractValue, 'f', -1, 64),
			strconv.Itoa(v.Customer.Age),
		})
	}
	return rows
}
