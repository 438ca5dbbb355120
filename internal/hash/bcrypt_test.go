package hash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/feedhub/feedhub-server/internal/hash"
)

func TestBcrypt_HashAndCompare(t *testing.T) {
	h := hash.NewBcrypt(bcrypt.MinCost)

	hashed, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hashed)

	assert.True(t, h.Compare("secret", hashed))
	assert.False(t, h.Compare("wrong", hashed))
}

func TestBcrypt_HashesDiffer(t *testing.T) {
	h := hash.NewBcrypt(bcrypt.MinCost)

	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)

	// bcrypt salts every hash, so equal inputs give different outputs.
	assert.NotEqual(t, first, second)
}

func TestBcrypt_OutOfRangeCostFallsBack(t *testing.T) {
	h := hash.NewBcrypt(100)

	hashed, err := h.Hash("secret")
	require.NoError(t, err)
	assert.True(t, h.Compare("secret", hashed))
}
