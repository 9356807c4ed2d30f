package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, encoded, "argon2id$")

	ok, err := Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Verify("wrong password", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHash_saltsDiffer(t *testing.T) {
	first, err := Hash("sw0rdfish")
	require.NoError(t, err)

	second, err := Hash("sw0rdfish")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestVerify_invalidEncoding(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "wrong algorithm", encoded: "bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{name: "missing fields", encoded: "argon2id$v=19$c2FsdA"},
		{name: "bad base64 salt", encoded: "argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify("anything", tt.encoded)
			require.ErrorIs(t, err, ErrInvalidHash)
		})
	}
}
