package rsacrack

import (
	"context"
	"math/big"
)

// Fermat factors moduli whose primes are close together. Writing n = a^2 - b^2
// with a near sqrt(n), each round increments a and tests whether a^2 - n is a
// perfect square.
type Fermat struct {
	// Rounds caps the number of candidate values of a tried above sqrt(n).
	// Primes generated from a shared high half fall out within a handful of
	// rounds; properly generated keys never will.
	Rounds int
}

func NewFermat() *Fermat {
	return &Fermat{Rounds: 1 << 16}
}

func (f *Fermat) WithRounds(r int) *Fermat {
	f.Rounds = r
	return f
}

func (f *Fermat) Name() string { return "fermat" }

func (f *Fermat) MultiKey() bool { return false }

func (f *Fermat) Attempt(ctx context.Context, t *Target) (*Result, error) {
	key := t.Keys[0]
	n := key.N
	if n.Bit(0) == 0 {
		// Even modulus: trivially 2 * n/2.
		p := big.NewInt(2)
		q := new(big.Int).Rsh(n, 1)
		priv, err := PrivateKeyFromFactors(p, q, key.E, n)
		if err != nil {
			return nil, nil
		}
		return &Result{PrivateKey: priv}, nil
	}

	a := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(a, a).Cmp(n) < 0 {
		a.Add(a, one)
	}

	b2 := new(big.Int)
	b := new(big.Int)
	for i := 0; i < f.Rounds; i++ {
		if i%256 == 0 && ctx.Err() != nil {
			return nil, nil
		}
		b2.Mul(a, a)
		b2.Sub(b2, n)
		b.Sqrt(b2)
		if new(big.Int).Mul(b, b).Cmp(b2) == 0 {
			p := new(big.Int).Add(a, b)
			q := new(big.Int).Sub(a, b)
			if q.Cmp(one) <= 0 {
				return nil, nil
			}
			priv, err := PrivateKeyFromFactors(p, q, key.E, n)
			if err != nil {
				return nil, nil
			}
			return &Result{PrivateKey: priv}, nil
		}
		a.Add(a, one)
	}
	return nil, nil
}
