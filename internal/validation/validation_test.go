package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karanbsk/useradmin/internal/apperror"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid with special", "Abc123!@", true},
		{"valid long", `Str0ng.Passw0rd!`, true},
		{"missing special", "Abc12345", false},
		{"missing digit", "Abcdefg!", false},
		{"missing uppercase", "abc123!@", false},
		{"missing lowercase", "ABC123!@", false},
		{"too short", "Ab1!", false},
		{"empty", "", false},
		{"seven chars all classes", "Abc12!d", false},
		// "Ab1!€€" is 6 characters but 10 bytes; the minimum counts
		// characters, so it must still fail.
		{"six multibyte chars all classes", "Ab1!€€", false},
		{"eight chars with multibyte", "Ab1!€€€€", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
			}
		})
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"alice", true},
		{"alice.b_c-d", true},
		{"ab", false},
		{"", false},
		{"alice bob", false},
		{"alice'", false},
		{"' OR 1=1 --", false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := Username(tt.username)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSuspiciousUsername(t *testing.T) {
	suspicious := []string{
		"' OR 1=1 --",
		"admin'--",
		"a;DROP",
		"x UNION y",
		"select_me or not",
		"1 AND 2",
	}
	for _, s := range suspicious {
		assert.True(t, SuspiciousUsername(s), s)
	}

	clean := []string{"alice", "bob_smith", "j.doe-99", "sandor"}
	for _, s := range clean {
		assert.False(t, SuspiciousUsername(s), s)
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("a@example.com"))
	assert.NoError(t, Email("first.last@sub.example.org"))

	for _, bad := range []string{"", "plain", "a@b", "@example.com", "a @example.com", "a@exam ple.com"} {
		assert.Error(t, Email(bad), bad)
	}
}
