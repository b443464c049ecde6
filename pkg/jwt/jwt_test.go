package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key-for-unit-tests"

var ana = Identity{UserID: "u-1", Name: "Ana Souza", Email: "ana@example.com"}

func TestGenerateYParse(t *testing.T) {
	tok, err := Generate(secret, ana, "comisiones-test", 60)
	require.NoError(t, err)

	got, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, ana, got)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := Generate(secret, ana, "comisiones-test", -1)
	require.NoError(t, err)
	_, err = Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := Generate(secret, ana, "comisiones-test", 60)
	require.NoError(t, err)
	_, err = Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestParse_SinUserID(t *testing.T) {
	tok, err := Generate(secret, Identity{Name: "Sem ID"}, "comisiones-test", 60)
	require.NoError(t, err)
	_, err = Parse(secret, tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", ana, "x", 60)
	assert.Error(t, err)
	_, err = Parse("", "abc")
	assert.Error(t, err)
}
