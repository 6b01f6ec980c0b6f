package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentials_HashVerify(t *testing.T) {
	c := NewCredentials(bcrypt.MinCost)

	hash, err := c.Hash("starboard")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.NotEqual(t, "starboard", hash)

	ok, upgrade := c.Verify(hash, "starboard")
	assert.True(t, ok)
	assert.False(t, upgrade)

	ok, upgrade = c.Verify(hash, "wrong")
	assert.False(t, ok)
	assert.False(t, upgrade)
}

func TestCredentials_VerifyPlaintext(t *testing.T) {
	c := NewCredentials(bcrypt.MinCost)

	tests := []struct {
		name        string
		stored      string
		password    string
		wantOK      bool
		wantUpgrade bool
	}{
		{name: "matching plaintext", stored: "starboard", password: "starboard", wantOK: true, wantUpgrade: true},
		{name: "wrong plaintext", stored: "starboard", password: "starboarD"},
		{name: "prefix only", stored: "starboard", password: "star"},
		{name: "empty stored", stored: "", password: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, upgrade := c.Verify(tt.stored, tt.password)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantUpgrade, upgrade)
		})
	}
}

func TestNewCredentials_DefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewCredentials(0).cost)
	assert.Equal(t, bcrypt.MinCost, NewCredentials(bcrypt.MinCost).cost)
}
