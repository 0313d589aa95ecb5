package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenFailsClosed(t *testing.T) {
	valid, err := IssueToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	expired, err := IssueToken(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered", valid + "x"},
		{"expired", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, testSecret)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "other-secret")
	assert.Error(t, err)
	assert.Nil(t, claims)
}
