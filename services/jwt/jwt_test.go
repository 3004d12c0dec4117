package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	access, refresh, err := GenerateTokenPair("jane@example.com", testSecret, 42, "authority")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateAndGetClaims(access, testSecret)
	require.NoError(t, err)

	assert.Equal(t, float64(42), claims["id"])
	assert.Equal(t, "jane@example.com", claims["email"])
	assert.Equal(t, "authority", claims["role"])
}

func TestValidateAndGetClaims_WrongSecret(t *testing.T) {
	access, _, err := GenerateTokenPair("jane@example.com", testSecret, 42, "user")
	require.NoError(t, err)

	_, err = ValidateAndGetClaims(access, "other-secret")
	assert.Error(t, err)
}

func TestValidateAndGetClaims_Expired(t *testing.T) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"id":  float64(1),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateAndGetClaims(signed, testSecret)
	assert.Error(t, err)
}

func TestValidateAndGetClaims_WrongSigningMethod(t *testing.T) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"id": float64(1)})
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateAndGetClaims(signed, testSecret)
	assert.Error(t, err)
}

func TestValidateAndGetClaims_Garbage(t *testing.T) {
	_, err := ValidateAndGetClaims("not-a-token", testSecret)
	assert.Error(t, err)
}
