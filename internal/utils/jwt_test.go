package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTUtil_Issue(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	tokenString, err := jwtUtil.Issue(jwt.MapClaims{"sub": "1"})

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	// Verify the token to ensure it's well-formed and carries the claims
	claims, err := jwtUtil.Verify(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "1", claims["sub"])

	exp, err := claims.GetExpirationTime()
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func TestJWTUtil_Issue_CopiesClaims(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	data := jwt.MapClaims{"sub": "42", "role": "admin"}

	tokenString, err := jwtUtil.Issue(data)
	assert.NoError(t, err)

	// The input map is not mutated even though exp is added to the token
	_, hasExp := data["exp"]
	assert.False(t, hasExp)

	claims, err := jwtUtil.Verify(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
	_, hasExp = claims["exp"]
	assert.True(t, hasExp)
}

func TestJWTUtil_Issue_OverwritesExp(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	// Caller-supplied exp in the past must not survive
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))
	tokenString, err := jwtUtil.Issue(jwt.MapClaims{"sub": "1", "exp": past})
	assert.NoError(t, err)

	claims, err := jwtUtil.Verify(tokenString)
	assert.NoError(t, err)
	exp, err := claims.GetExpirationTime()
	assert.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
}

func TestJWTUtil_Verify_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	_, err := jwtUtil.Verify("invalid.token.string")
	assert.Error(t, err)
}

func TestJWTUtil_Verify_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	tokenString, err := jwtUtil.IssueWithTTL(jwt.MapClaims{"sub": "1"}, 0)
	require.NoError(t, err)

	// Wait for a moment to ensure the token is definitely expired
	time.Sleep(1 * time.Second)

	_, err = jwtUtil.Verify(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_Verify_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", time.Hour)
	jwtUtil2 := NewJWTUtil("secret2", time.Hour)

	tokenString, _ := jwtUtil1.Issue(jwt.MapClaims{"sub": "1"})

	_, err := jwtUtil2.Verify(tokenString)
	assert.Error(t, err)
}

func TestJWTUtil_Verify_TamperedToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	tokenString, err := jwtUtil.Issue(jwt.MapClaims{"sub": "1"})
	require.NoError(t, err)

	// Flip one character of the payload segment
	parts := strings.Split(tokenString, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)
	tampered := strings.Join(parts, ".")

	_, err = jwtUtil.Verify(tampered)
	assert.Error(t, err)
}

func TestJWTUtil_Verify_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	// Sign with a non-HMAC method; the parse must refuse it
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1",
		"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtUtil.Verify(tokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
}
