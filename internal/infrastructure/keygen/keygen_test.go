package keygen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceFormat(t *testing.T) {
	g := New("sk_live_")

	ref := g.Reference("TRF")

	re := regexp.MustCompile(`^TRF_\d+_[0-9a-f]{16}$`)
	assert.True(t, re.MatchString(ref), "unexpected reference format: %s", ref)
}

func TestReferenceUnique(t *testing.T) {
	g := New("sk_live_")

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		ref := g.Reference("DEP")
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference generated: %s", ref)
		seen[ref] = struct{}{}
	}
}

func TestWalletNumber(t *testing.T) {
	g := New("sk_live_")

	re := regexp.MustCompile(`^[0-9]{13}$`)
	for i := 0; i < 100; i++ {
		num := g.WalletNumber()
		assert.True(t, re.MatchString(num), "unexpected wallet number: %s", num)
	}
}

func TestNewKey(t *testing.T) {
	g := New("sk_live_")

	plain, hash := g.NewKey()

	assert.True(t, strings.HasPrefix(plain, "sk_live_"))
	assert.Len(t, hash, 64)
	assert.Equal(t, g.Hash(plain), hash)
}

func TestVerify(t *testing.T) {
	g := New("sk_live_")

	plain, hash := g.NewKey()

	assert.True(t, g.Verify(plain, hash))
	assert.False(t, g.Verify(plain+"x", hash))
	assert.False(t, g.Verify("", hash))
}
