package core

// cpf.go verifies Brazilian CPF identifiers (Cadastro de Pessoas
// Físicas). A CPF is 11 digits where the last two are check digits
// derived from the preceding ones:
//
//	digit 10 = weighted sum of digits 1..9 with weights 10..2, mod 11
//	digit 11 = weighted sum of digits 1..10 with weights 11..2, mod 11
//
// In both cases a remainder below 2 yields check digit 0, otherwise
// 11 - remainder. Sequences with all 11 digits identical satisfy the
// arithmetic but are officially invalid and rejected up front.

import "strings"

// CPFDigits strips every non-digit character from s, keeping only 0-9.
// Formatted input like "123.456.789-09" becomes "12345678909".
func CPFDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether s is a valid CPF. Formatting characters are
// stripped before checking; the normalized sequence must be exactly 11
// digits, must not be a repeated single digit, and both check digits
// must match.
func ValidCPF(s string) bool {
	digits := CPFDigits(s)
	if len(digits) != 11 {
		return false
	}
	if allSameDigit(digits) {
		return false
	}
	if cpfCheckDigit(digits[:9]) != int(digits[9]-'0') {
		return false
	}
	return cpfCheckDigit(digits[:10]) == int(digits[10]-'0')
}

// cpfCheckDigit computes the check digit for a partial CPF sequence.
// Weights descend from len(partial)+1 down to 2.
func cpfCheckDigit(partial string) int {
	sum := 0
	for i, d := range partial {
		sum += int(d-'0') * (len(partial) + 1 - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// allSameDigit reports whether every byte in digits equals the first.
func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
