package rsacrack

import (
	"context"
	"math/big"

	"github.com/ctfkit/rsacrack/pkg/rsamath"
)

// Hastad recovers a plaintext broadcast to several recipients with the same
// small public exponent. With e ciphertexts of the same message under
// pairwise coprime moduli, the CRT combination equals m^e over the integers
// and an exact e-th root recovers m.
type Hastad struct {
	// MaxExponent bounds the public exponents considered small enough to
	// attack; keys with a larger e are skipped.
	MaxExponent int64
}

func NewHastad() *Hastad {
	return &Hastad{MaxExponent: 11}
}

func (h *Hastad) WithMaxExponent(e int64) *Hastad {
	h.MaxExponent = e
	return h
}

func (h *Hastad) Name() string { return "hastad" }

func (h *Hastad) MultiKey() bool { return true }

func (h *Hastad) Attempt(ctx context.Context, t *Target) (*Result, error) {
	if len(t.Ciphertexts) < 2 || len(t.Keys) != len(t.Ciphertexts) {
		return nil, nil
	}

	// Keep the pairs whose exponent is small; they must all share one e.
	var e *big.Int
	var moduli []*big.Int
	var residues []*big.Int
	for i, k := range t.Keys {
		if !k.E.IsInt64() || k.E.Int64() >= h.MaxExponent {
			continue
		}
		if e == nil {
			e = k.E
		} else if e.Cmp(k.E) != 0 {
			return nil, nil
		}
		moduli = append(moduli, k.N)
		residues = append(residues, t.Ciphertexts[i].Int())
	}
	if len(moduli) < 2 {
		return nil, nil
	}
	if int64(len(moduli)) < e.Int64() {
		// A short enough message still satisfies m^e < n1*...*nk, so the
		// combination is attempted regardless; the exact-root check below
		// is the real gate.
		t.Logf("hastad: e=%s with only %d ciphertexts, trying anyway", e, len(moduli))
	}
	if err := ctx.Err(); err != nil {
		return nil, nil
	}

	combined, err := rsamath.CRTCombine(moduli, residues)
	if err != nil {
		// Shared factors mean the common-factor attack applies instead.
		t.Logf("hastad: moduli not pairwise coprime: %v", err)
		return nil, nil
	}

	m, err := rsamath.IntKthRoot(combined, int(e.Int64()))
	if err != nil {
		return nil, nil
	}
	// Only an exact root is the plaintext.
	if new(big.Int).Exp(m, e, nil).Cmp(combined) != 0 {
		return nil, nil
	}
	return &Result{Plaintext: m.Bytes()}, nil
}
