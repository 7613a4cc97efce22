package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		want     error
	}{
		{"alice", nil},
		{"Alice2026", nil},
		{"", ErrUsernameRequired},
		{"bob", ErrUsernameTooShort},
		{"alice!", ErrUsernameCharacters},
		{"al ice", ErrUsernameCharacters},
		{"álice", ErrUsernameCharacters},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUsername(tt.username))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Abcde1!2", nil},
		{"valid with dot", "Passw0rd.", nil},
		{"empty", "", ErrPasswordRequired},
		{"short", "Ab1!", ErrPasswordTooShort},
		{"no upper", "abcde1!2", ErrPasswordWeak},
		{"no lower", "ABCDE1!2", ErrPasswordWeak},
		{"no digit", "Abcdef!g", ErrPasswordWeak},
		{"no special", "Abcdef12", ErrPasswordWeak},
		{"letters and digits only", "Abcdefgh1", ErrPasswordWeak},
		{"semicolon is not special", "Abcdefg1;", ErrPasswordWeak},
		{"equals is not special", "Abcdefg1=", ErrPasswordWeak},
		{"degree sign", "Abcdefg1°", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("alice", "Abcde1!2"))
	assert.Equal(t, ErrUsernameTooShort, Validate("al", "Abcde1!2"))
	assert.Equal(t, ErrPasswordWeak, Validate("alice", "abcdefgh"))
}
