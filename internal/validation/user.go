// Package validation holds input rules shared by handlers and services.
package validation

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxEmailLength    = 254
)

// ValidateUsername enforces 3-30 letters, digits or underscores.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 3-30 characters and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks the address is a bare addr-spec with a dotted domain.
func ValidateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return errors.New("invalid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errors.New("invalid email address")
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidatePassword requires 8-128 characters with at least one letter and one digit.
func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	if n > maxPasswordLength {
		return errors.New("password must be at most 128 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}
	return nil
}
