package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCustody(t *testing.T) {
	custody, err := GenerateCustody("aaaaa-aa")
	require.NoError(t, err)

	assert.Len(t, custody.PrivateKey, 64)
	assert.True(t, ValidAddress(custody.Address))
	assert.Equal(t, VaultSubaccount("aaaaa-aa", 0), custody.VaultSubaccount)
	assert.Len(t, custody.VaultSubaccount, 64)

	recovered, err := AddressFromPrivateKey(custody.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, custody.Address, recovered)
}

func TestGenerateCustody_RequiresPrincipal(t *testing.T) {
	_, err := GenerateCustody("")
	assert.Error(t, err)
}

func TestVaultSubaccount(t *testing.T) {
	a := VaultSubaccount("aaaaa-aa", 0)
	assert.Equal(t, a, VaultSubaccount("aaaaa-aa", 0))
	assert.NotEqual(t, a, VaultSubaccount("aaaaa-aa", 1))
	assert.NotEqual(t, a, VaultSubaccount("bbbbb-bb", 0))
}

func TestValidAddress(t *testing.T) {
	custody, err := GenerateCustody("aaaaa-aa")
	require.NoError(t, err)

	assert.False(t, ValidAddress(""))
	assert.False(t, ValidAddress("not-base58-0OIl"))
	tampered := []byte(custody.Address)
	if tampered[5] == 'A' {
		tampered[5] = 'B'
	} else {
		tampered[5] = 'A'
	}
	assert.False(t, ValidAddress(string(tampered)))
}

func TestAddressFromPrivateKey_Invalid(t *testing.T) {
	_, err := AddressFromPrivateKey("zz")
	assert.Error(t, err)
	_, err = AddressFromPrivateKey("00")
	assert.Error(t, err)
}

func TestSign(t *testing.T) {
	custody, err := GenerateCustody("aaaaa-aa")
	require.NoError(t, err)
	other, err := GenerateCustody("bbbbb-bb")
	require.NoError(t, err)

	payload := []byte(`{"ledger":"a","amount":100}`)
	sig, err := Sign(custody.PrivateKey, payload)
	require.NoError(t, err)

	assert.Len(t, sig, 130)
	again, err := Sign(custody.PrivateKey, payload)
	require.NoError(t, err)
	assert.Equal(t, sig, again)
	otherSig, err := Sign(other.PrivateKey, payload)
	require.NoError(t, err)
	assert.NotEqual(t, sig, otherSig)

	_, err = Sign("zz", payload)
	assert.Error(t, err)
}

func TestVerifyCustody(t *testing.T) {
	custody, err := GenerateCustody("aaaaa-aa")
	require.NoError(t, err)
	other, err := GenerateCustody("bbbbb-bb")
	require.NoError(t, err)

	assert.NoError(t, VerifyCustody(custody.PrivateKey, custody.Address))
	assert.ErrorIs(t, VerifyCustody(other.PrivateKey, custody.Address), ErrKeyMismatch)
	assert.Error(t, VerifyCustody(custody.PrivateKey, "TAlice"))
	assert.Error(t, VerifyCustody("zz", custody.Address))
}
