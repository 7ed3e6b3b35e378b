package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	ts := testTokenService()
	token, _, err := ts.Sign(&User{ID: "user-1", Username: "rin"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(ts), func(c *gin.Context) {
		claims := MustGetClaims(c)
		require.NotNil(t, claims)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "not-a-token", http.StatusUnauthorized},
		{"bearer garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"bare token", token, http.StatusOK},
		{"bearer token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), "user-1")
			}
		})
	}
}
