// Package polynomial implements the exact polynomial arithmetic needed by the
// lattice attacks: univariate and bivariate polynomials over big.Int
// coefficients, resultants via fraction-free elimination, and exact integer
// root extraction. It is deliberately minimal and not a general
// computer-algebra system.
package polynomial

import (
	"math/big"

	"github.com/pkg/errors"
)

// Uni is a univariate polynomial with arbitrary-precision integer
// coefficients, stored lowest degree first. The zero polynomial is any slice
// whose coefficients are all zero (including the empty slice).
type Uni []*big.Int

// NewUni builds a polynomial from int64 coefficients, lowest degree first.
// Convenience for tests and small constants.
func NewUni(coeffs ...int64) Uni {
	p := make(Uni, len(coeffs))
	for i, c := range coeffs {
		p[i] = big.NewInt(c)
	}
	return p.trim()
}

func (p Uni) trim() Uni {
	n := len(p)
	for n > 0 && p[n-1].Sign() == 0 {
		n--
	}
	return p[:n]
}

// Degree returns the degree of p, or -1 for the zero polynomial.
func (p Uni) Degree() int {
	return len(p.trim()) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p Uni) IsZero() bool {
	return len(p.trim()) == 0
}

// Clone returns a deep copy of p.
func (p Uni) Clone() Uni {
	out := make(Uni, len(p))
	for i, c := range p {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

// Eval returns p(x) by Horner's rule.
func (p Uni) Eval(x *big.Int) *big.Int {
	res := new(big.Int)
	for i := len(p) - 1; i >= 0; i-- {
		res.Mul(res, x)
		res.Add(res, p[i])
	}
	return res
}

// Derivative returns dp/dz.
func (p Uni) Derivative() Uni {
	p = p.trim()
	if len(p) <= 1 {
		return Uni{}
	}
	out := make(Uni, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = new(big.Int).Mul(p[i], big.NewInt(int64(i)))
	}
	return out.trim()
}

// Add returns p + q.
func (p Uni) Add(q Uni) Uni {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Uni, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int)
		if i < len(p) {
			out[i].Add(out[i], p[i])
		}
		if i < len(q) {
			out[i].Add(out[i], q[i])
		}
	}
	return out.trim()
}

// Sub returns p - q.
func (p Uni) Sub(q Uni) Uni {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Uni, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int)
		if i < len(p) {
			out[i].Add(out[i], p[i])
		}
		if i < len(q) {
			out[i].Sub(out[i], q[i])
		}
	}
	return out.trim()
}

// Mul returns p * q.
func (p Uni) Mul(q Uni) Uni {
	p, q = p.trim(), q.trim()
	if len(p) == 0 || len(q) == 0 {
		return Uni{}
	}
	out := make(Uni, len(p)+len(q)-1)
	for i := range out {
		out[i] = new(big.Int)
	}
	for i, a := range p {
		for j, b := range q {
			out[i+j].Add(out[i+j], new(big.Int).Mul(a, b))
		}
	}
	return out
}

// Neg returns -p.
func (p Uni) Neg() Uni {
	out := make(Uni, len(p))
	for i, c := range p {
		out[i] = new(big.Int).Neg(c)
	}
	return out
}

// DivExact returns p / q and fails if q does not divide p exactly over the
// integers. Callers in the Bareiss elimination rely on divisibility being
// guaranteed; a nonzero remainder there indicates a bookkeeping bug rather
// than an input condition.
func (p Uni) DivExact(q Uni) (Uni, error) {
	p, q = p.trim(), q.trim()
	if len(q) == 0 {
		return nil, errors.New("polynomial: division by zero polynomial")
	}
	if len(p) == 0 {
		return Uni{}, nil
	}
	if len(p) < len(q) {
		return nil, errors.New("polynomial: inexact division (degree underflow)")
	}

	rem := p.Clone()
	lead := q[len(q)-1]
	quot := make(Uni, len(p)-len(q)+1)
	for i := range quot {
		quot[i] = new(big.Int)
	}
	for d := len(rem) - 1; d >= len(q)-1; d-- {
		if rem[d].Sign() == 0 {
			continue
		}
		c, m := new(big.Int).QuoRem(rem[d], lead, new(big.Int))
		if m.Sign() != 0 {
			return nil, errors.New("polynomial: inexact division (coefficient)")
		}
		shift := d - (len(q) - 1)
		quot[shift].Set(c)
		for j, qc := range q {
			rem[shift+j].Sub(rem[shift+j], new(big.Int).Mul(c, qc))
		}
	}
	if !rem.IsZero() {
		return nil, errors.New("polynomial: inexact division (remainder)")
	}
	return quot.trim(), nil
}

// RootBound returns the Cauchy bound: every real root r of p satisfies
// |r| < 1 + max|a_i| / |a_deg|.
func (p Uni) RootBound() *big.Int {
	p = p.trim()
	if len(p) <= 1 {
		return big.NewInt(1)
	}
	lead := new(big.Int).Abs(p[len(p)-1])
	max := new(big.Int)
	for _, c := range p[:len(p)-1] {
		a := new(big.Int).Abs(c)
		if a.Cmp(max) > 0 {
			max.Set(a)
		}
	}
	// ceil(max/lead) + 1
	b := new(big.Int).Add(max, new(big.Int).Sub(lead, big.NewInt(1)))
	b.Quo(b, lead)
	return b.Add(b, big.NewInt(1))
}
