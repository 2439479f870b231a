package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	v := NewAccountValidator()

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{"Standard", "alice@example.com", "alice@example.com", nil},
		{"Trimmed and lowered", "  Alice@Example.COM ", "alice@example.com", nil},
		{"Plus addressing", "bob+trips@mail.example.org", "bob+trips@mail.example.org", nil},
		{"Empty", "   ", "", ErrEmptyEmail},
		{"Missing at", "alice.example.com", "", ErrInvalidEmail},
		{"Missing tld", "alice@example", "", ErrInvalidEmail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.ValidateEmail(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	v := NewAccountValidator()

	got, err := v.ValidateUsername(" jdoe_01 ")
	require.NoError(t, err)
	assert.Equal(t, "jdoe_01", got)

	for _, bad := range []string{"", "ab", "has space", "semi;colon"} {
		_, err := v.ValidateUsername(bad)
		assert.ErrorIs(t, err, ErrInvalidUsername, bad)
	}
}

func TestValidatePassword(t *testing.T) {
	v := NewAccountValidator()

	tests := []struct {
		name     string
		password string
		confirm  string
		err      error
	}{
		{"Valid", "s3cretpass", "s3cretpass", nil},
		{"Mismatch", "s3cretpass", "s3cretpasS", ErrPasswordMismatch},
		{"Too short", "ab1", "ab1", ErrPasswordTooShort},
		{"No digit", "onlyletters", "onlyletters", ErrPasswordTooWeak},
		{"No letter", "1234567890", "1234567890", ErrPasswordTooWeak},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidatePassword(tc.password, tc.confirm)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
