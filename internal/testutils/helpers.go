package testutils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// SignedToken returns an HS256 JWT whose exp claim is exp, like the backend issues at login.
// It fails the test immediately on error.
func SignedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "test",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err, "Failed to sign token")
	return tok
}
