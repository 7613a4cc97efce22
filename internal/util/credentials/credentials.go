package credentials

import (
	"errors"
	"strings"
	"unicode"
)

const (
	MinUsernameLength = 5
	MinPasswordLength = 8

	// Every character is literal, including the dash.
	specialChars = `.-_!@#$%^&/°|?¿+:*`
)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrUsernameTooShort   = errors.New("username must be at least 5 characters long")
	ErrUsernameCharacters = errors.New("username can only contain letters and numbers")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordWeak       = errors.New("password must contain an uppercase letter, a lowercase letter, a number and a special character")
)

// ValidateUsername checks that username is long enough and ASCII alphanumeric.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	for _, r := range username {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return ErrUsernameCharacters
		}
	}
	return nil
}

// ValidatePassword checks length and character classes.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return ErrPasswordWeak
	}
	return nil
}

func Validate(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return ValidatePassword(password)
}
