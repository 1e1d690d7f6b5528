package polynomial

import (
	"math/big"
	"sort"
)

// IntRoots returns the integer roots of p in ascending order, without
// multiplicity. The zero polynomial has no meaningful roots and returns nil.
//
// Roots are isolated exactly: the real roots of the derivative chain
// partition the line into monotone segments, and integer bisection on sign
// changes pins each candidate down to a unit interval whose endpoints are
// then verified by exact evaluation. Only a sign-free root whose floor never
// surfaces through the derivative chain could escape; for resultants of
// independent reduced lattice vectors the roots are simple and this does not
// arise.
func (p Uni) IntRoots() []*big.Int {
	p = p.trim()
	if len(p) <= 1 {
		return nil
	}

	var roots []*big.Int

	// Factor out z^v first; zero is a root whenever the constant term is.
	v := 0
	for v < len(p) && p[v].Sign() == 0 {
		v++
	}
	if v > 0 {
		roots = append(roots, new(big.Int))
		p = p[v:].trim()
		if len(p) <= 1 {
			return roots
		}
	}

	bound := p.RootBound()
	lo := new(big.Int).Neg(bound)
	floors := p.realRootFloors(lo, bound)

	seen := make(map[string]bool)
	add := func(x *big.Int) {
		if !seen[x.String()] {
			seen[x.String()] = true
			roots = append(roots, new(big.Int).Set(x))
		}
	}
	one := big.NewInt(1)
	for _, c := range floors {
		if p.Eval(c).Sign() == 0 {
			add(c)
		}
		c1 := new(big.Int).Add(c, one)
		if p.Eval(c1).Sign() == 0 {
			add(c1)
		}
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots
}

// realRootFloors returns a set of integers covering every real root of p in
// [lo, hi]: for each real root r there is a returned c with c <= r <= c+1.
// The set may contain integers that cover no root.
func (p Uni) realRootFloors(lo, hi *big.Int) []*big.Int {
	p = p.trim()
	deg := len(p) - 1
	if deg <= 0 {
		return nil
	}
	one := big.NewInt(1)

	if deg == 1 {
		r := floorDiv(new(big.Int).Neg(p[0]), p[1])
		return []*big.Int{clamp(r, lo, hi)}
	}

	// Critical points of p are real roots of p'; carrying the whole covering
	// set upward keeps multiple roots covered through the derivative chain.
	crit := p.Derivative().realRootFloors(lo, hi)

	pts := []*big.Int{new(big.Int).Set(lo), new(big.Int).Set(hi)}
	for _, c := range crit {
		pts = append(pts, clamp(c, lo, hi), clamp(new(big.Int).Add(c, one), lo, hi))
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Cmp(pts[j]) < 0 })
	pts = dedupe(pts)

	found := append([]*big.Int{}, crit...)
	for _, pt := range pts {
		if p.Eval(pt).Sign() == 0 {
			found = append(found, new(big.Int).Set(pt))
		}
	}

	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		sa, sb := p.Eval(a).Sign(), p.Eval(b).Sign()
		if sa == 0 || sb == 0 || sa == sb {
			continue
		}
		gap := new(big.Int).Sub(b, a)
		if gap.Cmp(one) == 0 {
			// Unit interval: the (non-integer) root's floor is a.
			found = append(found, new(big.Int).Set(a))
			continue
		}
		// p is monotone on (a, b): no critical point survives between two
		// consecutive partition points more than one apart.
		loI, hiI := new(big.Int).Set(a), new(big.Int).Set(b)
		for new(big.Int).Sub(hiI, loI).Cmp(one) > 0 {
			mid := new(big.Int).Add(loI, hiI)
			mid.Rsh(mid, 1)
			sm := p.Eval(mid).Sign()
			if sm == 0 {
				loI.Set(mid)
				break
			}
			if sm == sa {
				loI.Set(mid)
			} else {
				hiI.Set(mid)
			}
		}
		found = append(found, loI)
	}
	return found
}

func floorDiv(a, b *big.Int) *big.Int {
	if b.Sign() < 0 {
		a, b = new(big.Int).Neg(a), new(big.Int).Neg(b)
	}
	q := new(big.Int)
	q.Div(a, b)
	return q
}

func clamp(x, lo, hi *big.Int) *big.Int {
	if x.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	if x.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	return new(big.Int).Set(x)
}

func dedupe(xs []*big.Int) []*big.Int {
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x.Cmp(out[len(out)-1]) != 0 {
			out = append(out, x)
		}
	}
	return out
}
