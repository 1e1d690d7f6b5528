// Package lattice implements LLL basis reduction for integer lattices.
//
// The reduction runs entirely over arbitrary-precision integers using the
// all-integer formulation (Cohen, Algorithm 2.6.3): Gram determinants d_i and
// scaled Gram-Schmidt coefficients lambda_{i,j} are maintained as big.Int
// values, so bases with entries of thousands of bits reduce without any
// precision loss. The reduction parameter is fixed at delta = 3/4.
package lattice

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrDependentRows is returned when the input rows do not form a basis.
var ErrDependentRows = errors.New("lattice: input rows are linearly dependent")

// Reduce returns an LLL-reduced basis spanning the same lattice as the input
// rows. The input is not modified. The rows must be linearly independent.
func Reduce(basis [][]*big.Int) ([][]*big.Int, error) {
	n := len(basis)
	if n == 0 {
		return nil, errors.New("lattice: empty basis")
	}
	cols := len(basis[0])
	b := make([][]*big.Int, n+1) // 1-based
	for i, row := range basis {
		if len(row) != cols {
			return nil, errors.Errorf("lattice: ragged basis row %d", i)
		}
		b[i+1] = copyRow(row)
	}

	// d[i] is the Gram determinant of the first i vectors, d[0] = 1.
	// lam[i][j] = d[j] * mu_{i,j} for j < i; all integers.
	d := make([]*big.Int, n+1)
	d[0] = big.NewInt(1)
	for i := 1; i <= n; i++ {
		d[i] = new(big.Int)
	}
	lam := make([][]*big.Int, n+1)
	for i := 1; i <= n; i++ {
		lam[i] = make([]*big.Int, n+1)
		for j := 1; j < i; j++ {
			lam[i][j] = new(big.Int)
		}
	}

	d[1].Set(dot(b[1], b[1]))
	if d[1].Sign() == 0 {
		return nil, ErrDependentRows
	}

	k, kmax := 2, 1
	for k <= n {
		if k > kmax {
			kmax = k
			for j := 1; j <= k; j++ {
				u := dot(b[k], b[j])
				for i := 1; i < j; i++ {
					// u = (d[i]*u - lam[k][i]*lam[j][i]) / d[i-1], exactly.
					u.Mul(u, d[i])
					u.Sub(u, new(big.Int).Mul(lam[k][i], lam[j][i]))
					u.Quo(u, d[i-1])
				}
				if j < k {
					lam[k][j].Set(u)
				} else {
					d[k].Set(u)
					if d[k].Sign() == 0 {
						return nil, ErrDependentRows
					}
				}
			}
		}

		for {
			reduceRow(b, d, lam, k, k-1)

			// Lovasz condition with delta = 3/4:
			// swap when 4*(d[k]*d[k-2] + lam[k][k-1]^2) < 3*d[k-1]^2.
			lhs := new(big.Int).Mul(d[k], d[k-2])
			lhs.Add(lhs, new(big.Int).Mul(lam[k][k-1], lam[k][k-1]))
			lhs.Lsh(lhs, 2)
			rhs := new(big.Int).Mul(d[k-1], d[k-1])
			rhs.Mul(rhs, big.NewInt(3))

			if lhs.Cmp(rhs) < 0 {
				swapRows(b, d, lam, k, kmax)
				if k > 2 {
					k--
				}
				continue
			}
			for l := k - 2; l >= 1; l-- {
				reduceRow(b, d, lam, k, l)
			}
			k++
			break
		}
	}

	out := make([][]*big.Int, n)
	for i := 1; i <= n; i++ {
		out[i-1] = b[i]
	}
	return out, nil
}

// reduceRow performs the size reduction b[k] -= q*b[l] with q the nearest
// integer to lam[k][l]/d[l].
func reduceRow(b [][]*big.Int, d []*big.Int, lam [][]*big.Int, k, l int) {
	twoLam := new(big.Int).Lsh(new(big.Int).Abs(lam[k][l]), 1)
	if twoLam.Cmp(d[l]) <= 0 {
		return
	}
	// q = round(lam[k][l] / d[l]); d[l] > 0, floor division of the shifted
	// numerator gives round-half-up.
	q := new(big.Int).Lsh(lam[k][l], 1)
	q.Add(q, d[l])
	q.Div(q, new(big.Int).Lsh(d[l], 1))

	for i := range b[k] {
		b[k][i].Sub(b[k][i], new(big.Int).Mul(q, b[l][i]))
	}
	lam[k][l].Sub(lam[k][l], new(big.Int).Mul(q, d[l]))
	for i := 1; i < l; i++ {
		lam[k][i].Sub(lam[k][i], new(big.Int).Mul(q, lam[l][i]))
	}
}

// swapRows exchanges b[k] and b[k-1] and fixes up the d and lam state.
func swapRows(b [][]*big.Int, d []*big.Int, lam [][]*big.Int, k, kmax int) {
	b[k], b[k-1] = b[k-1], b[k]
	for j := 1; j <= k-2; j++ {
		lam[k][j], lam[k-1][j] = lam[k-1][j], lam[k][j]
	}

	l := new(big.Int).Set(lam[k][k-1])
	// B = (d[k-2]*d[k] + l^2) / d[k-1], exactly.
	B := new(big.Int).Mul(d[k-2], d[k])
	B.Add(B, new(big.Int).Mul(l, l))
	B.Quo(B, d[k-1])

	for i := k + 1; i <= kmax; i++ {
		t := new(big.Int).Set(lam[i][k])
		// lam[i][k] = (d[k]*lam[i][k-1] - l*t) / d[k-1]
		lam[i][k].Mul(d[k], lam[i][k-1])
		lam[i][k].Sub(lam[i][k], new(big.Int).Mul(l, t))
		lam[i][k].Quo(lam[i][k], d[k-1])
		// lam[i][k-1] = (B*t + l*lam[i][k]) / d[k]
		lam[i][k-1].Mul(B, t)
		lam[i][k-1].Add(lam[i][k-1], new(big.Int).Mul(l, lam[i][k]))
		lam[i][k-1].Quo(lam[i][k-1], d[k])
	}
	d[k-1].Set(B)
}

// TriangularDet returns the determinant of a lower-triangular basis, i.e. the
// product of its diagonal entries.
func TriangularDet(basis [][]*big.Int) *big.Int {
	det := big.NewInt(1)
	for i, row := range basis {
		det.Mul(det, row[i])
	}
	return det
}

func copyRow(row []*big.Int) []*big.Int {
	out := make([]*big.Int, len(row))
	for i, v := range row {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

func dot(a, b []*big.Int) *big.Int {
	sum := new(big.Int)
	for i := range a {
		sum.Add(sum, new(big.Int).Mul(a[i], b[i]))
	}
	return sum
}
