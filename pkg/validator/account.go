package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email address is malformed
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrInvalidUsername indicates the username has the wrong length or characters
	ErrInvalidUsername = errors.New("username must be 3-64 characters of letters, digits, '.', '_' or '-'")

	// ErrPasswordTooShort indicates the password is shorter than MinPasswordLength
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrPasswordTooWeak indicates the password lacks a letter or a digit
	ErrPasswordTooWeak = errors.New("password must contain at least one letter and one digit")

	// ErrPasswordMismatch indicates password and confirmation differ
	ErrPasswordMismatch = errors.New("password and confirm_password do not match")
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]{3,64}$`)
)

// AccountValidator validates account registration input
type AccountValidator struct{}

// NewAccountValidator creates a new account validator instance
func NewAccountValidator() *AccountValidator {
	return &AccountValidator{}
}

// ValidateEmail returns the trimmed, lower-cased email or an error
func (v *AccountValidator) ValidateEmail(email string) (string, error) {
	sanitized := strings.ToLower(strings.TrimSpace(email))
	if sanitized == "" {
		return "", ErrEmptyEmail
	}
	if !emailRegex.MatchString(sanitized) {
		return "", ErrInvalidEmail
	}
	return sanitized, nil
}

// ValidateUsername returns the trimmed username or an error
func (v *AccountValidator) ValidateUsername(username string) (string, error) {
	sanitized := strings.TrimSpace(username)
	if !usernameRegex.MatchString(sanitized) {
		return "", ErrInvalidUsername
	}
	return sanitized, nil
}

// ValidatePassword checks strength and that confirm matches password
func (v *AccountValidator) ValidatePassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
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
		return ErrPasswordTooWeak
	}
	return nil
}
