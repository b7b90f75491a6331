package core

// messages.go maps technical errors to user-facing messages.
//
// Error codes reference:
//
// Field validation errors carry codes so users can quote them to
// support staff:
//
//	VAL001 - Required: a required field is empty
//	VAL002 - Length: name exceeds the 255 character limit
//	VAL003 - Identifier: CPF format or check digits are wrong
//	VAL004 - Email: value is not a valid email address
//	VAL005 - Number: contract value is not a number
//	VAL006 - Negative: contract value is negative
//	VAL007 - Integer: age is not a whole number
//	VAL008 - Range: age is outside 1-150
//
// Batch-level (fatal) conditions:
//
//	CFG001 - Missing column: a required column was not found in the file
//	FILE001 - Empty file: the file has no data rows
//	FILE002 - Invalid CSV: the file could not be parsed as CSV
//	ERR000  - Fallback for anything unmatched

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// kindMessages maps each field error kind to its user message.
var kindMessages = map[ErrorKind]UserMessage{
	KindRequired: {
		Message: "Required field is empty",
		Action:  "Fill in the field and resubmit the row",
		Code:    "VAL001",
	},
	KindLengthViolation: {
		Message: "Name is too long",
		Action:  "Shorten the name to at most 255 characters",
		Code:    "VAL002",
	},
	KindInvalidIdentifier: {
		Message: "CPF is not valid",
		Action:  "Check the CPF digits; formatting (dots/dash) is optional",
		Code:    "VAL003",
	},
	KindInvalidEmail: {
		Message: "Email address is not valid",
		Action:  "Use the form name@domain.com with no spaces",
		Code:    "VAL004",
	},
	KindNotANumber: {
		Message: "Contract value is not a number",
		Action:  "Remove stray characters and use a standard decimal format",
		Code:    "VAL005",
	},
	KindNegativeValue: {
		Message: "Contract value cannot be negative",
		Action:  "Enter zero or a positive amount",
		Code:    "VAL006",
	},
	KindNotAnInteger: {
		Message: "Age must be a whole number",
		Action:  "Enter the age without decimals",
		Code:    "VAL007",
	},
	KindOutOfRange: {
		Message: "Age is out of range",
		Action:  "Enter an age between 1 and 150",
		Code:    "VAL008",
	},
}

// errorPattern defines a substring to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps batch-level error text (case-insensitive) to user
// messages. First match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from the file",
			Action:  "Check that nome, cpf, email, valor_contrato and idade columns are present",
			Code:    "CFG001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no data rows",
			Action:  "Upload a CSV file with a header and at least one record",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file could not be parsed as CSV",
			Action:  "Export the data again as a comma-separated file",
			Code:    "FILE002",
		},
	},
}

// defaultMessage is the ERR000 fallback for unmatched errors. Check the
// application logs for the original technical error when users report it.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MessageForKind returns the user message for a field error kind.
// Unknown kinds fall back to ERR000.
func MessageForKind(kind ErrorKind) UserMessage {
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return defaultMessage
}

// MapError converts a batch-level error to a user-friendly message by
// matching known patterns case-insensitively. FieldErrors map through
// their kind instead.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if fieldErr, ok := err.(FieldError); ok {
		return MessageForKind(fieldErr.Kind)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
