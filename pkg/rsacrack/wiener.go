package rsacrack

import (
	"context"
	"math/big"
)

// Wiener recovers keys whose secret exponent satisfies d < n^0.25 / 3 by
// scanning the continued-fraction convergents of e/n for the ratio k/d.
type Wiener struct {
	// MaxConvergents caps the number of convergents examined. The true k/d
	// always appears among the convergents when the bound on d holds, and
	// for practical key sizes it shows up within a few hundred terms.
	MaxConvergents int
}

func NewWiener() *Wiener {
	return &Wiener{MaxConvergents: 4096}
}

func (w *Wiener) Name() string { return "wiener" }

func (w *Wiener) MultiKey() bool { return false }

func (w *Wiener) Attempt(ctx context.Context, t *Target) (*Result, error) {
	key := t.Keys[0]
	n, e := key.N, key.E
	if e.Cmp(n) >= 0 {
		return nil, nil
	}

	// Walk the continued-fraction expansion of e/n, maintaining the
	// convergent numerators k_i and denominators d_i by the standard
	// recurrence h_i = a_i*h_{i-1} + h_{i-2}.
	num := new(big.Int).Set(e)
	den := new(big.Int).Set(n)
	k0, k1 := big.NewInt(0), big.NewInt(1)
	d0, d1 := big.NewInt(1), big.NewInt(0)

	q := new(big.Int)
	r := new(big.Int)
	for i := 0; i < w.MaxConvergents && den.Sign() != 0; i++ {
		if i%64 == 0 && ctx.Err() != nil {
			return nil, nil
		}
		q.QuoRem(num, den, r)

		k := new(big.Int).Mul(q, k1)
		k.Add(k, k0)
		d := new(big.Int).Mul(q, d1)
		d.Add(d, d0)
		k0, k1 = k1, k
		d0, d1 = d1, d
		num.Set(den)
		den, r = r, den

		if res := w.check(n, e, k1, d1); res != nil {
			return res, nil
		}
	}
	return nil, nil
}

// check tests one convergent k/d as a candidate for (ed-1)/phi over d.
func (w *Wiener) check(n, e, k, d *big.Int) *Result {
	if k.Sign() == 0 || d.Sign() == 0 {
		return nil
	}
	// phi = (e*d - 1) / k must divide exactly.
	phi := new(big.Int).Mul(e, d)
	phi.Sub(phi, one)
	var rem big.Int
	phi.QuoRem(phi, k, &rem)
	if rem.Sign() != 0 {
		return nil
	}

	// p and q are the roots of x^2 - s*x + n with s = n - phi + 1.
	s := new(big.Int).Sub(n, phi)
	s.Add(s, one)
	disc := new(big.Int).Mul(s, s)
	disc.Sub(disc, new(big.Int).Lsh(n, 2))
	if disc.Sign() < 0 {
		return nil
	}
	root := new(big.Int).Sqrt(disc)
	if new(big.Int).Mul(root, root).Cmp(disc) != 0 {
		return nil
	}
	p := new(big.Int).Add(s, root)
	p.Rsh(p, 1)
	q := new(big.Int).Sub(s, root)
	q.Rsh(q, 1)
	if p.Sign() <= 0 || q.Sign() <= 0 || new(big.Int).Mul(p, q).Cmp(n) != 0 {
		return nil
	}

	priv, err := PrivateKeyFromFactors(p, q, e, n)
	if err != nil {
		return nil
	}
	return &Result{PrivateKey: priv}
}
