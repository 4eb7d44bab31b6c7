package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"valuta/internal/security"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := security.NewBcryptHasher()

	digest, err := hasher.Hash("Valid1!x")
	assert.NoError(t, err)
	assert.NotEqual(t, "Valid1!x", digest)
	assert.True(t, hasher.Verify("Valid1!x", digest))
}

func TestBcryptHasher_Salted(t *testing.T) {
	hasher := security.NewBcryptHasher()

	first, err := hasher.Hash("Valid1!x")
	assert.NoError(t, err)
	second, err := hasher.Hash("Valid1!x")
	assert.NoError(t, err)

	// Same plaintext, different salts, but both digests still verify.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("Valid1!x", first))
	assert.True(t, hasher.Verify("Valid1!x", second))
}

func TestBcryptHasher_Verify_Mismatch(t *testing.T) {
	hasher := security.NewBcryptHasher()

	digest, err := hasher.Hash("Valid1!x")
	assert.NoError(t, err)

	assert.False(t, hasher.Verify("Other2@y", digest))
	assert.False(t, hasher.Verify("", digest))
}

func TestBcryptHasher_Verify_MalformedDigest(t *testing.T) {
	hasher := security.NewBcryptHasher()

	// Verify never panics or errors, it just reports false.
	assert.False(t, hasher.Verify("Valid1!x", "not-a-bcrypt-digest"))
	assert.False(t, hasher.Verify("Valid1!x", ""))
}
