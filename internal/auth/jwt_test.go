package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "mangashelf-test",
		Duration: time.Hour,
	}
}

func TestSignAndParse(t *testing.T) {
	ts := testTokenService()
	u := &User{ID: "user-1", Username: "rin"}

	token, exp, err := ts.Sign(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "rin", claims.Username)
	assert.Equal(t, "mangashelf-test", claims.Issuer)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseRejectsBadTokens(t *testing.T) {
	ts := testTokenService()
	u := &User{ID: "user-1", Username: "rin"}

	valid, _, err := ts.Sign(u)
	require.NoError(t, err)

	otherSecret := TokenService{Secret: []byte("other-secret"), Issuer: ts.Issuer, Duration: ts.Duration}
	wrongKey, _, err := otherSecret.Sign(u)
	require.NoError(t, err)

	expiredSvc := TokenService{Secret: ts.Secret, Issuer: ts.Issuer, Duration: -time.Minute}
	expired, _, err := expiredSvc.Sign(u)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong signing key", wrongKey},
		{"expired", expired},
		{"truncated", valid[:len(valid)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Parse(tt.token)
			assert.Error(t, err)
		})
	}
}
