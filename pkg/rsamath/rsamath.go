// Package rsamath provides the exact big-integer arithmetic primitives shared
// by the RSA attacks: modular inversion, integer k-th roots and Chinese
// Remainder Theorem combination.
//
// Everything here is exact. None of the operations fall back to floating
// point, since attack inputs routinely exceed the float64 mantissa by
// thousands of bits.
package rsamath

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrNotInvertible is returned by ModInverse when gcd(a, m) != 1.
var ErrNotInvertible = errors.New("rsamath: element is not invertible")

var one = big.NewInt(1)

// ModInverse returns the inverse of a modulo m, normalized into [0, m).
//
// Returns ErrNotInvertible when a has no inverse modulo m.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, errors.Errorf("rsamath: invalid modulus %s", m)
	}
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, ErrNotInvertible
	}
	return inv, nil
}

// IntKthRoot returns floor(x^(1/k)) for x >= 0 and k >= 1.
//
// The root is bracketed by repeated doubling and then isolated by bisection,
// so the result is exact even for perfect powers of numbers far beyond
// floating-point range.
func IntKthRoot(x *big.Int, k int) (*big.Int, error) {
	if x.Sign() < 0 {
		return nil, errors.Errorf("rsamath: negative radicand %s", x)
	}
	if k < 1 {
		return nil, errors.Errorf("rsamath: invalid root index %d", k)
	}
	if k == 1 || x.Sign() == 0 || x.Cmp(one) == 0 {
		return new(big.Int).Set(x), nil
	}

	kBig := big.NewInt(int64(k))

	// Find an upper bracket: smallest power of two with high^k > x.
	high := big.NewInt(1)
	for {
		p := new(big.Int).Exp(high, kBig, nil)
		if p.Cmp(x) > 0 {
			break
		}
		high.Lsh(high, 1)
	}

	// Bisect on the invariant low^k <= x < high^k.
	low := new(big.Int).Rsh(high, 1)
	mid := new(big.Int)
	for {
		mid.Add(low, high)
		mid.Rsh(mid, 1)
		if mid.Cmp(low) == 0 {
			return low, nil
		}
		p := new(big.Int).Exp(mid, kBig, nil)
		if p.Cmp(x) > 0 {
			high.Set(mid)
		} else {
			low.Set(mid)
		}
	}
}

// FloorRootPow returns floor(n^(num/den)) for n >= 0, computed exactly as
// IntKthRoot(n^num, den). Used for fractional attack bounds such as
// floor(n^0.26) = FloorRootPow(n, 13, 50).
func FloorRootPow(n *big.Int, num, den int) (*big.Int, error) {
	if num < 0 || den < 1 {
		return nil, errors.Errorf("rsamath: invalid exponent %d/%d", num, den)
	}
	p := new(big.Int).Exp(n, big.NewInt(int64(num)), nil)
	return IntKthRoot(p, den)
}

// CRTCombine returns the unique x modulo the product of the moduli with
// x = residues[i] (mod moduli[i]) for every i.
//
// The moduli must be pairwise coprime; this is a caller responsibility and is
// not checked here.
func CRTCombine(moduli, residues []*big.Int) (*big.Int, error) {
	if len(moduli) == 0 || len(moduli) != len(residues) {
		return nil, errors.Errorf("rsamath: mismatched CRT input (%d moduli, %d residues)", len(moduli), len(residues))
	}

	prod := big.NewInt(1)
	for _, m := range moduli {
		if m.Cmp(one) <= 0 {
			return nil, errors.Errorf("rsamath: invalid CRT modulus %s", m)
		}
		prod.Mul(prod, m)
	}

	sum := new(big.Int)
	for i, m := range moduli {
		p := new(big.Int).Div(prod, m)
		inv, err := ModInverse(p, m)
		if err != nil {
			return nil, errors.Wrapf(err, "rsamath: moduli %d not coprime with the rest", i)
		}
		term := new(big.Int).Mul(residues[i], inv)
		term.Mul(term, p)
		sum.Add(sum, term)
	}
	return sum.Mod(sum, prod), nil
}
