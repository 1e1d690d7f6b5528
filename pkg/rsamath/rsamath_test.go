package rsamath

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModInverse(t *testing.T) {
	m := big.NewInt(101)
	for a := int64(1); a < 101; a++ {
		inv, err := ModInverse(big.NewInt(a), m)
		require.NoError(t, err)
		assert.True(t, inv.Sign() >= 0 && inv.Cmp(m) < 0, "inverse must be normalized into [0, m)")
		prod := new(big.Int).Mul(inv, big.NewInt(a))
		prod.Mod(prod, m)
		assert.Equal(t, int64(1), prod.Int64())
	}
}

func TestModInverseNotInvertible(t *testing.T) {
	_, err := ModInverse(big.NewInt(6), big.NewInt(15))
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestIntKthRootRoundTrip(t *testing.T) {
	// floor((x^k)^(1/k)) == x must hold exactly, including for values far
	// beyond float64 precision.
	for _, bits := range []int{8, 64, 256, 1024} {
		for _, k := range []int{1, 2, 3, 5, 7} {
			x, err := rand.Prime(rand.Reader, bits)
			require.NoError(t, err)
			pow := new(big.Int).Exp(x, big.NewInt(int64(k)), nil)
			root, err := IntKthRoot(pow, k)
			require.NoError(t, err)
			assert.Zero(t, root.Cmp(x), "k=%d bits=%d", k, bits)
		}
	}
}

func TestIntKthRootFloor(t *testing.T) {
	// Just below and just above a perfect power.
	x := big.NewInt(12345)
	cube := new(big.Int).Exp(x, big.NewInt(3), nil)

	below := new(big.Int).Sub(cube, big.NewInt(1))
	root, err := IntKthRoot(below, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12344), root.Int64())

	above := new(big.Int).Add(cube, big.NewInt(1))
	root, err = IntKthRoot(above, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), root.Int64())
}

func TestIntKthRootEdgeCases(t *testing.T) {
	root, err := IntKthRoot(big.NewInt(0), 5)
	require.NoError(t, err)
	assert.Zero(t, root.Sign())

	root, err = IntKthRoot(big.NewInt(1), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), root.Int64())

	_, err = IntKthRoot(big.NewInt(-8), 3)
	assert.Error(t, err)

	_, err = IntKthRoot(big.NewInt(8), 0)
	assert.Error(t, err)
}

func TestFloorRootPow(t *testing.T) {
	n := big.NewInt(1 << 20)
	// n^(1/2) of 2^20 is 2^10.
	r, err := FloorRootPow(n, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), r.Int64())

	// 2^(20*13/50) = 2^5.2 -> floor is 36.
	r, err = FloorRootPow(n, 13, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(36), r.Int64())
}

func TestCRTCombineRoundTrip(t *testing.T) {
	moduli := make([]*big.Int, 3)
	for i, bits := range []int{128, 130, 132} {
		p, err := rand.Prime(rand.Reader, bits)
		require.NoError(t, err)
		moduli[i] = p
	}

	m, err := rand.Int(rand.Reader, moduli[0])
	require.NoError(t, err)

	residues := make([]*big.Int, len(moduli))
	for i, n := range moduli {
		residues[i] = new(big.Int).Mod(m, n)
	}

	got, err := CRTCombine(moduli, residues)
	require.NoError(t, err)
	assert.Zero(t, got.Cmp(m))
}

func TestCRTCombineRejectsBadInput(t *testing.T) {
	_, err := CRTCombine(nil, nil)
	assert.Error(t, err)

	_, err = CRTCombine([]*big.Int{big.NewInt(15), big.NewInt(21)},
		[]*big.Int{big.NewInt(1), big.NewInt(2)})
	assert.Error(t, err, "moduli sharing a factor must be rejected by the inverse step")
}
