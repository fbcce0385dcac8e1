package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	// PasswordSymbols is the accepted special-character set.
	PasswordSymbols = `!@#$%^&*(),.?":{}|<>`
)

// PasswordPolicyViolation returns the first rule pw breaks, or "" when it complies.
func PasswordPolicyViolation(pw string) string {
	if utf8.RuneCountInString(pw) < PasswordMinLength {
		return "must be at least 8 characters"
	}

	var upper, lower, digit, symbol bool
	for _, c := range pw {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case strings.ContainsRune(PasswordSymbols, c):
			symbol = true
		}
	}

	switch {
	case !upper:
		return "must contain an uppercase letter"
	case !lower:
		return "must contain a lowercase letter"
	case !digit:
		return "must contain a number"
	case !symbol:
		return "must contain a special character"
	}
	return ""
}

func CheckPasswordPolicy(pw string) error {
	if reason := PasswordPolicyViolation(pw); reason != "" {
		return ErrWeakPassword(reason)
	}
	return nil
}
