package rsacrack

import (
	"context"
	"math/big"
)

// CommonFactor factors moduli that share a prime with another key in the
// batch, a failure mode of low-entropy key generation. Every pair of moduli
// is tested with a single GCD.
type CommonFactor struct{}

func NewCommonFactor() *CommonFactor { return &CommonFactor{} }

func (c *CommonFactor) Name() string { return "commonfactor" }

func (c *CommonFactor) MultiKey() bool { return true }

func (c *CommonFactor) Attempt(ctx context.Context, t *Target) (*Result, error) {
	if len(t.Keys) < 2 {
		return nil, nil
	}
	g := new(big.Int)
	for i := 0; i < len(t.Keys); i++ {
		if ctx.Err() != nil {
			return nil, nil
		}
		ni := t.Keys[i].N
		for j := i + 1; j < len(t.Keys); j++ {
			nj := t.Keys[j].N
			if ni.Cmp(nj) == 0 {
				continue
			}
			g.GCD(nil, nil, ni, nj)
			if g.Cmp(one) == 0 {
				continue
			}
			t.Logf("commonfactor: keys %d and %d share a %d-bit factor", i, j, g.BitLen())
			q := new(big.Int).Div(ni, g)
			priv, err := PrivateKeyFromFactors(new(big.Int).Set(g), q, t.Keys[i].E, ni)
			if err != nil {
				continue
			}
			res := &Result{PrivateKey: priv, KeyIndex: i}
			if i < len(t.Ciphertexts) && len(t.Ciphertexts[i]) > 0 {
				res.Plaintext = priv.Decrypt(t.Ciphertexts[i])
			}
			return res, nil
		}
	}
	return nil, nil
}
