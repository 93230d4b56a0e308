// Package account validates registration and login form input before any
// request is made. Account forms fail fast: the first violation is returned
// alone, unlike workout drafts which accumulate every violation.
package account

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// User-facing messages, in Portuguese to match the product UI.
const (
	MsgNameRequired    = "O nome é obrigatório"
	MsgInvalidEmail    = "Por favor, insira um email válido (exemplo@dominio.com)"
	MsgInvalidPassword = "A senha deve conter pelo menos 8 caracteres, incluindo uma letra maiúscula, uma minúscula e um número."
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s has the basic local@domain.tld shape.
func ValidateEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidatePassword reports whether s is at least 8 characters long and
// contains at least one uppercase letter, one lowercase letter and one digit.
func ValidatePassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// ValidationError is a user-facing account form error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateRegistration checks registration fields in order and stops at the
// first violation. A nil return means the fields may be submitted.
func ValidateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Message: MsgNameRequired}
	}
	if !ValidateEmail(email) {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	if !ValidatePassword(password) {
		return &ValidationError{Message: MsgInvalidPassword}
	}
	return nil
}

// ValidateLogin checks login fields with the same fail-fast rule. The login
// form only requires the fields to be present; the server decides whether
// the credentials are valid.
func ValidateLogin(email, password string) error {
	if !ValidateEmail(email) {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	if password == "" {
		return &ValidationError{Message: MsgInvalidPassword}
	}
	return nil
}
