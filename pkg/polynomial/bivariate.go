package polynomial

import (
	"math/big"

	"github.com/pkg/errors"
)

// Biv is a sparse bivariate polynomial in (w, z) over big.Int coefficients,
// keyed by [wDegree, zDegree].
type Biv map[[2]int]*big.Int

// NewBiv returns an empty (zero) bivariate polynomial.
func NewBiv() Biv {
	return make(Biv)
}

// AddTerm adds c * w^i * z^j.
func (p Biv) AddTerm(i, j int, c *big.Int) {
	if c.Sign() == 0 {
		return
	}
	key := [2]int{i, j}
	if cur, ok := p[key]; ok {
		cur.Add(cur, c)
		if cur.Sign() == 0 {
			delete(p, key)
		}
		return
	}
	p[key] = new(big.Int).Set(c)
}

// IsZero reports whether p has no terms.
func (p Biv) IsZero() bool {
	return len(p) == 0
}

// IsConstant reports whether p has no term of positive degree.
func (p Biv) IsConstant() bool {
	for key := range p {
		if key[0] != 0 || key[1] != 0 {
			return false
		}
	}
	return true
}

// DegreeW returns the degree of p in w, or -1 for the zero polynomial.
func (p Biv) DegreeW() int {
	d := -1
	for key := range p {
		if key[0] > d {
			d = key[0]
		}
	}
	return d
}

// CoeffsW collects p as a polynomial in w with coefficients in Z[z]:
// the i-th entry is the coefficient of w^i.
func (p Biv) CoeffsW() []Uni {
	d := p.DegreeW()
	if d < 0 {
		return nil
	}
	out := make([]Uni, d+1)
	for key, c := range p {
		i, j := key[0], key[1]
		if len(out[i]) <= j {
			grown := make(Uni, j+1)
			for k := range grown {
				grown[k] = new(big.Int)
			}
			copy(grown, out[i])
			out[i] = grown
		}
		out[i][j].Add(out[i][j], c)
	}
	for i := range out {
		out[i] = out[i].trim()
	}
	return out
}

// SubstituteZ returns p(w, z0) as a univariate polynomial in w.
func (p Biv) SubstituteZ(z0 *big.Int) Uni {
	d := p.DegreeW()
	if d < 0 {
		return Uni{}
	}
	out := make(Uni, d+1)
	for i := range out {
		out[i] = new(big.Int)
	}
	for key, c := range p {
		zp := new(big.Int).Exp(z0, big.NewInt(int64(key[1])), nil)
		out[key[0]].Add(out[key[0]], zp.Mul(zp, c))
	}
	return out.trim()
}

// ResultantW eliminates w from p and q: the returned univariate polynomial in
// z vanishes exactly at the z-coordinates of common roots. Computed as the
// determinant of the Sylvester matrix over Z[z] by fraction-free Bareiss
// elimination, so every intermediate value stays an exact integer polynomial.
func ResultantW(p, q Biv) (Uni, error) {
	dp, dq := p.DegreeW(), q.DegreeW()
	if dp < 0 || dq < 0 {
		return Uni{}, nil
	}
	if dp == 0 && dq == 0 {
		// No w to eliminate; the resultant is conventionally 1 and carries
		// no root information.
		return Uni{big.NewInt(1)}, nil
	}

	pc, qc := p.CoeffsW(), q.CoeffsW()
	n := dp + dq
	m := make([][]Uni, n)
	for i := range m {
		m[i] = make([]Uni, n)
		for j := range m[i] {
			m[i][j] = Uni{}
		}
	}
	// Rows 0..dq-1 carry shifted copies of p, rows dq..n-1 of q.
	for r := 0; r < dq; r++ {
		for i := 0; i <= dp; i++ {
			m[r][r+dp-i] = pc[i].Clone()
		}
	}
	for r := 0; r < dp; r++ {
		for i := 0; i <= dq; i++ {
			m[dq+r][r+dq-i] = qc[i].Clone()
		}
	}
	return bareissDet(m)
}

// bareissDet computes the determinant of a matrix over Z[z] by fraction-free
// Gaussian elimination. Destroys its input.
func bareissDet(m [][]Uni) (Uni, error) {
	n := len(m)
	sign := 1
	prev := Uni{big.NewInt(1)}
	for k := 0; k < n-1; k++ {
		if m[k][k].IsZero() {
			swapped := false
			for r := k + 1; r < n; r++ {
				if !m[r][k].IsZero() {
					m[k], m[r] = m[r], m[k]
					sign = -sign
					swapped = true
					break
				}
			}
			if !swapped {
				return Uni{}, nil
			}
		}
		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				num := m[k][k].Mul(m[i][j]).Sub(m[i][k].Mul(m[k][j]))
				quot, err := num.DivExact(prev)
				if err != nil {
					return nil, errors.Wrap(err, "polynomial: Bareiss elimination lost exactness")
				}
				m[i][j] = quot
			}
			m[i][k] = Uni{}
		}
		prev = m[k][k]
	}
	det := m[n-1][n-1]
	if sign < 0 {
		det = det.Neg()
	}
	return det.trim(), nil
}
