package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Username string `validate:"required,username"`
	Password string `validate:"required,password"`
	IsAdmin  bool
}

func TestV10Validator_Validate(t *testing.T) {
	t.Parallel()

	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      registerInput
		wantErr map[string]string
	}{
		{
			name: "valid",
			in:   registerInput{Username: "alice.smith@example.com", Password: "correct horse"},
		},
		{
			name: "missing fields",
			in:   registerInput{},
			wantErr: map[string]string{
				"username": "Username is a required field",
				"password": "Password is a required field",
			},
		},
		{
			name: "bad username",
			in:   registerInput{Username: "alice smith", Password: "correct horse"},
			wantErr: map[string]string{
				"username": "Username may contain only letters, digits and . _ @ - (max 64)",
			},
		},
		{
			name: "short password",
			in:   registerInput{Username: "alice", Password: "short"},
			wantErr: map[string]string{
				"password": "Password must be 8-72 bytes",
			},
		},
		{
			name: "long password",
			in:   registerInput{Username: "alice", Password: strings.Repeat("x", 73)},
			wantErr: map[string]string{
				"password": "Password must be 8-72 bytes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Values())
		})
	}
}
