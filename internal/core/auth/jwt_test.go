package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	j := NewJWTer("secret", "airport-ops", time.Hour)
	tok, err := j.Issue("u-1", "manager")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UID)
	assert.Equal(t, "manager", c.Role)
	assert.Equal(t, "airport-ops", c.Issuer)
}

func TestParse_Rejects(t *testing.T) {
	j := NewJWTer("secret", "airport-ops", time.Hour)
	tok, err := j.Issue("u-1", "traveller")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTer("other", "airport-ops", time.Hour).Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewJWTer("secret", "someone-else", time.Hour).Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("expired beyond leeway", func(t *testing.T) {
		old, err := NewJWTer("secret", "airport-ops", -2*time.Minute).Issue("u-1", "traveller")
		require.NoError(t, err)
		_, err = j.Parse(old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := j.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("alg none", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UID: "u-1", Role: "manager",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "airport-ops", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}})
		s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = j.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
