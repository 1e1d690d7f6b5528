package rsacrack

import (
	"context"
	"math/big"

	"github.com/tuneinsight/lattigo/v5/utils/factorization"

	"github.com/ctfkit/rsacrack/pkg/rsamath"
)

// Factorization handles degenerate moduli directly: primes, moduli with a
// small prime factor, and moduli small enough to factor outright with
// Pollard's rho or Lenstra's ECM.
type Factorization struct {
	// TrialLimit bounds the primes tried by trial division.
	TrialLimit int64
	// MaxBits bounds the modulus size handed to rho and ECM. Anything
	// larger is out of reach for general-purpose factoring here.
	MaxBits int
}

func NewFactorization() *Factorization {
	return &Factorization{TrialLimit: 1 << 20, MaxBits: 96}
}

func (f *Factorization) Name() string { return "factorization" }

func (f *Factorization) MultiKey() bool { return false }

func (f *Factorization) Attempt(ctx context.Context, t *Target) (*Result, error) {
	key := t.Keys[0]
	n, e := key.N, key.E

	// A prime modulus is a broken key: phi = n - 1 is public.
	if factorization.IsPrime(n) {
		d, err := rsamath.ModInverse(e, new(big.Int).Sub(n, one))
		if err != nil {
			return nil, nil
		}
		t.Logf("factorization: modulus is prime")
		priv := &PrivateKey{
			N: new(big.Int).Set(n),
			E: new(big.Int).Set(e),
			D: d,
		}
		return &Result{PrivateKey: priv}, nil
	}

	if p := f.trialDivide(ctx, n); p != nil {
		q := new(big.Int).Div(n, p)
		if priv, err := PrivateKeyFromFactors(p, q, e, n); err == nil {
			return &Result{PrivateKey: priv}, nil
		}
		return nil, nil
	}

	if n.BitLen() > f.MaxBits {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil
	}
	p := factorization.GetFactorPollardRho(n)
	if p == nil || p.Cmp(one) == 0 || p.Cmp(n) == 0 {
		p = factorization.GetFactorECM(n)
	}
	if p == nil || p.Cmp(one) == 0 || p.Cmp(n) == 0 {
		return nil, nil
	}
	q := new(big.Int).Div(n, p)
	priv, err := PrivateKeyFromFactors(p, q, e, n)
	if err != nil {
		return nil, nil
	}
	return &Result{PrivateKey: priv}, nil
}

// trialDivide returns a prime factor of n below TrialLimit, provided the
// cofactor is prime, or nil.
func (f *Factorization) trialDivide(ctx context.Context, n *big.Int) *big.Int {
	r := new(big.Int)
	q := new(big.Int)
	d := new(big.Int)
	try := func(v int64) *big.Int {
		d.SetInt64(v)
		q.QuoRem(n, d, r)
		if r.Sign() != 0 {
			return nil
		}
		if q.Cmp(d) <= 0 || !factorization.IsPrime(q) {
			return nil
		}
		return new(big.Int).Set(d)
	}
	if p := try(2); p != nil {
		return p
	}
	for v, checked := int64(3), 0; v <= f.TrialLimit; v, checked = v+2, checked+1 {
		if checked%4096 == 0 && ctx.Err() != nil {
			return nil
		}
		if p := try(v); p != nil {
			return p
		}
	}
	return nil
}
