package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vectorMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestSessionKeyDerivation(t *testing.T) {
	svc := NewKeyService()

	key, err := svc.SessionKey(vectorMnemonic, "")
	require.NoError(t, err)

	assert.Equal(t, "1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727", key.PrivateKeyHex)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", key.Address)
}

func TestSessionKeyRejectsInvalidMnemonic(t *testing.T) {
	svc := NewKeyService()

	_, err := svc.SessionKey("not a real mnemonic", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestGenerateMnemonic(t *testing.T) {
	svc := NewKeyService()

	mnemonic, err := svc.GenerateMnemonic()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 12)

	// A fresh mnemonic derives a usable session key.
	key, err := svc.SessionKey(mnemonic, "")
	require.NoError(t, err)
	assert.Len(t, key.PrivateKeyHex, 64)
	assert.True(t, strings.HasPrefix(key.Address, "0x"))
}
