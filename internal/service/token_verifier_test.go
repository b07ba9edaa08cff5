package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.ActorClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() models.ActorClaims {
	return models.ActorClaims{
		UserID:   "bhp-user",
		Role:     models.RoleBHP,
		BHPID:    "bhp-1",
		FullName: "Dana Reviewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenVerifierAcceptsValidToken(t *testing.T) {
	verifier := NewTokenVerifier("secret", "idp")
	claims, err := verifier.Verify(signToken(t, jwt.SigningMethodHS256, []byte("secret"), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "bhp-1", claims.BHPID)
	assert.Equal(t, models.RoleBHP, claims.Actor().Role)
}

func TestTokenVerifierRejects(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noRole := validClaims()
	noRole.Role = "JANITOR"
	otherIssuer := validClaims()
	otherIssuer.Issuer = "someone-else"

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"wrong method": signToken(t, jwt.SigningMethodHS512, []byte("secret"), validClaims()),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("secret"), expired),
		"unknown role": signToken(t, jwt.SigningMethodHS256, []byte("secret"), noRole),
		"issuer":       signToken(t, jwt.SigningMethodHS256, []byte("secret"), otherIssuer),
		"garbage":      "not-a-token",
	}
	verifier := NewTokenVerifier("secret", "idp")
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(token)
			require.Error(t, err)
			assert.True(t, appErrors.IsCode(err, appErrors.ErrUnauthorized))
		})
	}
}
