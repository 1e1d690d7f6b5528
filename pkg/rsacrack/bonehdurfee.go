package rsacrack

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/ctfkit/rsacrack/pkg/lattice"
	"github.com/ctfkit/rsacrack/pkg/polynomial"
	"github.com/ctfkit/rsacrack/pkg/rsamath"
)

// BonehDurfee recovers keys with d < n^delta for delta up to about 0.26,
// beyond the continued-fraction range, using the Herrmann-May lattice
// refinement of the Boneh-Durfee attack.
//
// The key equation e*d = 1 + k*phi(n) becomes, modulo e,
//
//	1 + x*(A + y) = 0  with  A = (n+1)/2, x = 2k, y = -(p+q)/2,
//
// and small roots |x| < X = 2*n^delta, |y| < Y = sqrt(n). Shift polynomials
// of that equation span a lattice whose short vectors, found by LLL, yield
// two integer polynomials sharing the root (x, y); a resultant and integer
// root extraction finish the job. The substitution u = x*y + 1 (unravelled
// linearization) keeps the lattice dimension down.
type BonehDurfee struct {
	// M is the shift-polynomial depth. Dimension and entry sizes grow
	// quickly with M; 4 handles the textbook delta = 0.26 cases.
	M int
	// DeltaNum/DeltaDen is the assumed bound exponent: d < n^(num/den).
	DeltaNum int
	DeltaDen int
	// Strict makes a failed determinant bound an ErrBoundExceeded error
	// instead of a logged warning, so callers can retune M or delta.
	Strict bool
	// HelpfulOnly prunes lattice rows that cannot contribute a vector
	// under the bound before reduction.
	HelpfulOnly bool
	// MinDim is the pruning floor.
	MinDim int
	// MaxModulusBits rejects moduli whose lattice would be hopeless to
	// reduce; such keys return ErrUnsupportedSize.
	MaxModulusBits int
}

func NewBonehDurfee() *BonehDurfee {
	return &BonehDurfee{
		M:              4,
		DeltaNum:       13,
		DeltaDen:       50,
		HelpfulOnly:    true,
		MinDim:         7,
		MaxModulusBits: 8192,
	}
}

func (a *BonehDurfee) WithM(m int) *BonehDurfee {
	a.M = m
	return a
}

func (a *BonehDurfee) WithDelta(num, den int) *BonehDurfee {
	a.DeltaNum, a.DeltaDen = num, den
	return a
}

func (a *BonehDurfee) WithStrict(strict bool) *BonehDurfee {
	a.Strict = strict
	return a
}

func (a *BonehDurfee) WithHelpfulOnly(on bool) *BonehDurfee {
	a.HelpfulOnly = on
	return a
}

func (a *BonehDurfee) Name() string { return "bonehdurfee" }

func (a *BonehDurfee) MultiKey() bool { return false }

// monomial u^U * x^X * y^Y; u stands for x*y + 1.
type bdMonomial struct {
	u, x, y int
}

func (a *BonehDurfee) Attempt(ctx context.Context, t *Target) (*Result, error) {
	key := t.Keys[0]
	n, e := key.N, key.E

	if n.BitLen() > a.MaxModulusBits {
		return nil, errors.Wrapf(ErrUnsupportedSize, "bonehdurfee: %d-bit modulus", n.BitLen())
	}
	if n.Bit(0) == 0 {
		return nil, nil
	}
	// d < n^delta forces e > n^(1-delta); anything smaller cannot have a
	// weak exponent in range and would only waste a reduction.
	if 2*e.BitLen() <= n.BitLen() {
		return nil, nil
	}
	if a.M < 1 || a.DeltaNum < 1 || a.DeltaDen <= 2*a.DeltaNum {
		return nil, errors.Errorf("bonehdurfee: bad parameters m=%d delta=%d/%d", a.M, a.DeltaNum, a.DeltaDen)
	}

	m := a.M
	tt := (a.DeltaDen - 2*a.DeltaNum) * m / a.DeltaDen

	X, err := rsamath.FloorRootPow(n, a.DeltaNum, a.DeltaDen)
	if err != nil {
		return nil, nil
	}
	X.Lsh(X, 1)
	Y := new(big.Int).Sqrt(n)
	A := new(big.Int).Add(n, one)
	A.Rsh(A, 1)
	U := new(big.Int).Mul(X, Y)
	U.Add(U, one)

	basis, mons, err := a.buildLattice(m, tt, e, A, U, X, Y)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil
	}

	eM := new(big.Int).Exp(e, big.NewInt(int64(m)), nil)
	if a.HelpfulOnly {
		var kept []int
		basis, kept = lattice.Prune(basis, eM, a.MinDim)
		pruned := make([]bdMonomial, len(kept))
		for i, idx := range kept {
			pruned[i] = mons[idx]
		}
		mons = pruned
	}

	// The Howgrave-Graham condition needs vectors of norm below e^m; the
	// triangular determinant tells us up front whether the lattice can
	// deliver them.
	nn := len(basis)
	det := new(big.Int).Abs(lattice.TriangularDet(basis))
	detBound := new(big.Int).Exp(e, big.NewInt(int64(m*nn)), nil)
	if det.Cmp(detBound) >= 0 {
		if a.Strict {
			return nil, errors.Wrapf(ErrBoundExceeded, "bonehdurfee: determinant %d bits vs bound %d bits", det.BitLen(), detBound.BitLen())
		}
		t.Logf("bonehdurfee: determinant above bound (%d vs %d bits), solution unlikely", det.BitLen(), detBound.BitLen())
	}

	reduced, err := lattice.Reduce(basis)
	if err != nil {
		t.Logf("bonehdurfee: reduction failed: %v", err)
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil
	}

	pol1, err := rowPolynomial(reduced[0], mons, U, X, Y)
	if err != nil {
		t.Logf("bonehdurfee: %v", err)
		return nil, nil
	}
	if pol1.IsZero() {
		return nil, nil
	}

	// The shortest vector pairs with the first later vector that is
	// algebraically independent of it; consecutive reduced rows are often
	// parallel as polynomials.
	var rr polynomial.Uni
	for j := 1; j < len(reduced) && j <= 5; j++ {
		pol2, err := rowPolynomial(reduced[j], mons, U, X, Y)
		if err != nil || pol2.IsZero() {
			continue
		}
		res, err := polynomial.ResultantW(pol1, pol2)
		if err != nil || res.IsZero() {
			continue
		}
		rr = res
		break
	}
	if rr == nil {
		t.Logf("bonehdurfee: short vectors not independent, try a larger m")
		return nil, nil
	}

	for _, y0 := range rr.IntRoots() {
		if err := ctx.Err(); err != nil {
			return nil, nil
		}
		// y0 = -(p+q)/2 factors n directly.
		if res := a.factorFromY(key, y0); res != nil {
			return res, nil
		}
		for _, x0 := range pol1.SubstituteZ(y0).IntRoots() {
			if res := a.keyFromRoot(key, A, x0, y0); res != nil {
				return res, nil
			}
		}
	}
	return nil, nil
}

// buildLattice constructs the triangular shift-polynomial basis. Row order
// and column order follow the same monomial enumeration, so the diagonal of
// row (k, i) is u^k x^i (x-shifts) or u^k y^j (y-shifts).
func (a *BonehDurfee) buildLattice(m, tt int, e, A, U, X, Y *big.Int) ([][]*big.Int, []bdMonomial, error) {
	var mons []bdMonomial
	for s := 0; s <= m; s++ {
		for j := 0; j <= s; j++ {
			mons = append(mons, bdMonomial{u: j, x: s - j})
		}
	}
	if tt > 0 {
		for j := 1; j <= tt; j++ {
			for k := (m / tt) * j; k <= m; k++ {
				mons = append(mons, bdMonomial{u: k, y: j})
			}
		}
	}

	col := make(map[bdMonomial]int, len(mons))
	scale := make([]*big.Int, len(mons))
	for i, mon := range mons {
		col[mon] = i
		s := new(big.Int).Exp(U, big.NewInt(int64(mon.u)), nil)
		s.Mul(s, new(big.Int).Exp(X, big.NewInt(int64(mon.x)), nil))
		s.Mul(s, new(big.Int).Exp(Y, big.NewInt(int64(mon.y)), nil))
		scale[i] = s
	}

	ePow := make([]*big.Int, m+1)
	for k := 0; k <= m; k++ {
		ePow[k] = new(big.Int).Exp(e, big.NewInt(int64(k)), nil)
	}

	nn := len(mons)
	basis := make([][]*big.Int, nn)
	for i := range basis {
		basis[i] = make([]*big.Int, nn)
		for j := range basis[i] {
			basis[i][j] = new(big.Int)
		}
	}

	add := func(row int, mon bdMonomial, c *big.Int) error {
		if c.Sign() == 0 {
			return nil
		}
		idx, ok := col[mon]
		if !ok {
			return errors.Errorf("bonehdurfee: monomial u^%d x^%d y^%d outside basis", mon.u, mon.x, mon.y)
		}
		basis[row][idx].Add(basis[row][idx], new(big.Int).Mul(c, scale[idx]))
		return nil
	}

	// x-shifts: x^i * (u + A*x)^k * e^(m-k), enumerated in column order.
	row := 0
	for s := 0; s <= m; s++ {
		for k := 0; k <= s; k++ {
			i := s - k
			for j := 0; j <= k; j++ {
				c := new(big.Int).Binomial(int64(k), int64(j))
				c.Mul(c, new(big.Int).Exp(A, big.NewInt(int64(k-j)), nil))
				c.Mul(c, ePow[m-k])
				if err := add(row, bdMonomial{u: j, x: i + k - j}, c); err != nil {
					return nil, nil, err
				}
			}
			row++
		}
	}

	// y-shifts: y^j * (u + A*x)^k * e^(m-k), rewritten without mixed x*y
	// terms via x*y = u - 1.
	for j := 1; j <= tt; j++ {
		for k := (m / tt) * j; k <= m; k++ {
			for i := 0; i <= k; i++ {
				base := new(big.Int).Binomial(int64(k), int64(i))
				base.Mul(base, new(big.Int).Exp(A, big.NewInt(int64(k-i)), nil))
				base.Mul(base, ePow[m-k])
				xp := k - i
				// x^xp * y^j = x^(xp-s) * y^(j-s) * (u-1)^s, s = min(xp, j).
				s := xp
				if j < s {
					s = j
				}
				for c := 0; c <= s; c++ {
					term := new(big.Int).Binomial(int64(s), int64(c))
					term.Mul(term, base)
					if (s-c)%2 == 1 {
						term.Neg(term)
					}
					mon := bdMonomial{u: i + c, x: xp - s, y: j - s}
					if err := add(row, mon, term); err != nil {
						return nil, nil, err
					}
				}
			}
			row++
		}
	}
	return basis, mons, nil
}

// rowPolynomial turns a reduced lattice row back into a polynomial in (x, y),
// undoing the column scaling and the u = x*y + 1 substitution. The scaling
// must divide exactly; a remainder means the vector is not a genuine integer
// combination of the shifts.
func rowPolynomial(row []*big.Int, mons []bdMonomial, U, X, Y *big.Int) (polynomial.Biv, error) {
	p := polynomial.NewBiv()
	rem := new(big.Int)
	for idx, mon := range mons {
		if row[idx].Sign() == 0 {
			continue
		}
		s := new(big.Int).Exp(U, big.NewInt(int64(mon.u)), nil)
		s.Mul(s, new(big.Int).Exp(X, big.NewInt(int64(mon.x)), nil))
		s.Mul(s, new(big.Int).Exp(Y, big.NewInt(int64(mon.y)), nil))
		q := new(big.Int)
		q.QuoRem(row[idx], s, rem)
		if rem.Sign() != 0 {
			return nil, errors.Errorf("inexact unscaling at u^%d x^%d y^%d", mon.u, mon.x, mon.y)
		}
		// u^a x^i y^j = (x*y + 1)^a x^i y^j.
		for b := 0; b <= mon.u; b++ {
			c := new(big.Int).Binomial(int64(mon.u), int64(b))
			c.Mul(c, q)
			p.AddTerm(mon.x+b, mon.y+b, c)
		}
	}
	return p, nil
}

// factorFromY rebuilds p and q from a resultant root y0 = -(p+q)/2.
func (a *BonehDurfee) factorFromY(key *PublicKey, y0 *big.Int) *Result {
	if y0.Sign() >= 0 {
		return nil
	}
	s := new(big.Int).Lsh(y0, 1)
	s.Neg(s)
	disc := new(big.Int).Mul(s, s)
	disc.Sub(disc, new(big.Int).Lsh(key.N, 2))
	if disc.Sign() < 0 {
		return nil
	}
	r := new(big.Int).Sqrt(disc)
	if new(big.Int).Mul(r, r).Cmp(disc) != 0 {
		return nil
	}
	p := new(big.Int).Add(s, r)
	p.Rsh(p, 1)
	q := new(big.Int).Sub(s, r)
	q.Rsh(q, 1)
	if q.Cmp(one) <= 0 || new(big.Int).Mul(p, q).Cmp(key.N) != 0 {
		return nil
	}
	priv, err := PrivateKeyFromFactors(p, q, key.E, key.N)
	if err != nil {
		return nil
	}
	return &Result{PrivateKey: priv}
}

// keyFromRoot rebuilds d from a bivariate root: e*d = 1 + x0*(A + y0).
func (a *BonehDurfee) keyFromRoot(key *PublicKey, A, x0, y0 *big.Int) *Result {
	num := new(big.Int).Add(A, y0)
	num.Mul(num, x0)
	num.Add(num, one)
	d := new(big.Int)
	rem := new(big.Int)
	d.QuoRem(num, key.E, rem)
	if rem.Sign() != 0 || d.Sign() <= 0 {
		return nil
	}
	// Round-trip check before trusting d.
	probe := big.NewInt(2)
	c := new(big.Int).Exp(probe, key.E, key.N)
	if new(big.Int).Exp(c, d, key.N).Cmp(probe) != 0 {
		return nil
	}
	priv, err := PrivateKeyFromExponent(key.N, key.E, d)
	if err != nil {
		return nil
	}
	return &Result{PrivateKey: priv}
}
