package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService(t *testing.T) {
	// MinCost keeps the test fast; the work factor is orthogonal to
	// correctness.
	svc := newPasswordServiceWithCost(bcrypt.MinCost)

	t.Run("hash verifies the original password only", func(t *testing.T) {
		hash, err := svc.Hash("hunter22")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter22", hash)

		assert.True(t, svc.Verify(hash, "hunter22"))
		assert.False(t, svc.Verify(hash, "hunter23"))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		h1, err := svc.Hash("hunter22")
		require.NoError(t, err)
		h2, err := svc.Hash("hunter22")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		_, err := svc.Hash("")
		assert.Error(t, err)
	})

	t.Run("over-long password is rejected rather than truncated", func(t *testing.T) {
		_, err := svc.Hash(strings.Repeat("x", 73))
		assert.Error(t, err)
	})

	t.Run("verify against garbage hash is false", func(t *testing.T) {
		assert.False(t, svc.Verify("not-a-hash", "anything"))
	})
}
