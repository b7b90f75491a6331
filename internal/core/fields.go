package core

// fields.go holds the per-field validators. Each one is a pure function
// of a single raw value: it either returns the normalized value or a
// Failure with the kind and message that end up in the error report.
// None of them panic; every bad input maps to a typed Failure.

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the upper bound on a customer name, in runes.
const MaxNameLength = 255

// Age bounds, inclusive.
const (
	MinAge = 1
	MaxAge = 150
)

// emailRegex is the canonical local-part@domain pattern: non-empty
// local part, dotted domain with a 2+ letter TLD, no whitespace.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// numericRegex validates a number after currency cleanup: integers,
// decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ValidateName checks a customer name: required, trimmed length within
// [1, MaxNameLength] runes. Accented and other multi-byte characters
// count as one.
func ValidateName(raw string) (string, *Failure) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &Failure{Kind: KindRequired, Message: "required field is empty"}
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return "", &Failure{
			Kind:    KindLengthViolation,
			Message: "name exceeds " + strconv.Itoa(MaxNameLength) + " characters",
		}
	}
	return name, nil
}

// ValidateNationalID checks a CPF and returns it normalized to its 11
// digits. Formatting characters ("123.456.789-09") are accepted and
// stripped.
func ValidateNationalID(raw string) (string, *Failure) {
	if strings.TrimSpace(raw) == "" {
		return "", &Failure{Kind: KindRequired, Message: "required field is empty"}
	}

	digits := CPFDigits(raw)
	if len(digits) != 11 {
		return "", &Failure{Kind: KindInvalidIdentifier, Message: "CPF must have 11 digits"}
	}
	if allSameDigit(digits) {
		return "", &Failure{Kind: KindInvalidIdentifier, Message: "CPF with repeated digits is not valid"}
	}
	if !ValidCPF(digits) {
		return "", &Failure{Kind: KindInvalidIdentifier, Message: "CPF check digits do not match"}
	}
	return digits, nil
}

// ValidateEmail checks an email address against the canonical pattern.
func ValidateEmail(raw string) (string, *Failure) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", &Failure{Kind: KindRequired, Message: "required field is empty"}
	}
	if !emailRegex.MatchString(email) {
		return "", &Failure{Kind: KindInvalidEmail, Message: "value is not a valid email address"}
	}
	return email, nil
}

// ValidateContractValue parses a monetary amount and requires it to be
// non-negative. Currency symbols, thousands separators, and accounting
// parentheses for negatives are tolerated ("R$ 1,234.56", "(10.00)").
func ValidateContractValue(raw string) (float64, *Failure) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &Failure{Kind: KindRequired, Message: "required field is empty"}
	}

	cleaned := cleanNumeric(s)
	if !numericRegex.MatchString(cleaned) {
		return 0, &Failure{Kind: KindNotANumber, Message: "value is not a number"}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &Failure{Kind: KindNotANumber, Message: "value is not a number"}
	}
	if v < 0 {
		return 0, &Failure{Kind: KindNegativeValue, Message: "contract value cannot be negative"}
	}
	return v, nil
}

// ValidateAge parses an age and requires it to be an integer within
// [MinAge, MaxAge].
func ValidateAge(raw string) (int, *Failure) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &Failure{Kind: KindRequired, Message: "required field is empty"}
	}

	age, err := strconv.Atoi(s)
	if err != nil {
		return 0, &Failure{Kind: KindNotAnInteger, Message: "age must be a whole number"}
	}
	if age < MinAge || age > MaxAge {
		return 0, &Failure{
			Kind: KindOutOfRange,
			Message: "age must be between " + strconv.Itoa(MinAge) +
				" and " + strconv.Itoa(MaxAge),
		}
	}
	return age, nil
}

// cleanNumeric removes currency symbols and thousands separators, and
// converts accounting-style "(123.45)" to "-123.45".
func cleanNumeric(s string) string {
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}
	return s
}
