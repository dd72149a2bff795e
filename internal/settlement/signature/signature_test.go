package signature_test

import (
	"testing"

	"github.com/gowander/waypost/internal/settlement/signature"
	"github.com/stretchr/testify/assert"
)

func TestComputeIsDeterministic(t *testing.T) {
	a := signature.Compute("secret", "ord_1", "pay_1")
	b := signature.Compute("secret", "ord_1", "pay_1")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestVerify(t *testing.T) {
	sig := signature.Compute("secret", "ord_1", "pay_1")

	assert.True(t, signature.Verify("secret", "ord_1", "pay_1", sig))
	assert.False(t, signature.Verify("secret", "ord_1", "pay_2", sig))
	assert.False(t, signature.Verify("secret", "ord_2", "pay_1", sig))
	assert.False(t, signature.Verify("other", "ord_1", "pay_1", sig))
	assert.False(t, signature.Verify("secret", "ord_1", "pay_1", sig[:63]+"0"))
}

func TestSeparatorPreventsAmbiguity(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide.
	assert.NotEqual(t,
		signature.Compute("secret", "ab", "c"),
		signature.Compute("secret", "a", "bc"),
	)
}
