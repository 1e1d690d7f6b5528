package lattice

import "math/big"

// Prune drops basis rows (and their matching columns) whose diagonal entry is
// already at or above bound, provided removal cannot disturb the remaining
// rows. A row is removable when no later row has a nonzero entry in its
// column, or when exactly one does, that row affects nothing further, and its
// diagonal is closer to the bound than the candidate's.
//
// This is an optional pre-reduction optimization: every vector it removes
// could never contribute a short vector below bound, so correctness of the
// subsequent reduction is unaffected. The basis never shrinks below minDim
// rows.
//
// The input is not modified. Prune returns the pruned square matrix together
// with the indices of the surviving rows, so callers can keep any row
// labelling in sync.
func Prune(basis [][]*big.Int, bound *big.Int, minDim int) ([][]*big.Int, []int) {
	n := len(basis)
	work := make([][]*big.Int, n)
	for i := range basis {
		work[i] = copyRow(basis[i])
	}
	kept := make([]int, n)
	for i := range kept {
		kept[i] = i
	}

	work, kept = prunePass(work, kept, bound, minDim, n-1)
	return work, kept
}

func prunePass(work [][]*big.Int, kept []int, bound *big.Int, minDim, current int) ([][]*big.Int, []int) {
	if current < 0 || len(work) <= minDim {
		return work, kept
	}

	for ii := current; ii >= 0; ii-- {
		if work[ii][ii].Cmp(bound) < 0 {
			continue
		}

		affected := 0
		affectedIdx := 0
		for jj := ii + 1; jj < len(work); jj++ {
			if work[jj][ii].Sign() != 0 {
				affected++
				affectedIdx = jj
			}
		}

		if affected == 0 {
			work, kept = dropRowCol(work, kept, ii)
			return prunePass(work, kept, bound, minDim, ii-1)
		}

		if affected == 1 {
			// The single dependent row may itself be expendable if nothing
			// below depends on it and it is the less helpful of the two.
			deeper := true
			for kk := affectedIdx + 1; kk < len(work); kk++ {
				if work[kk][affectedIdx].Sign() != 0 {
					deeper = false
				}
			}
			distAffected := new(big.Int).Sub(bound, work[affectedIdx][affectedIdx])
			distCurrent := new(big.Int).Sub(bound, work[ii][ii])
			if deeper && distAffected.CmpAbs(distCurrent) < 0 {
				work, kept = dropRowCol(work, kept, affectedIdx)
				work, kept = dropRowCol(work, kept, ii)
				return prunePass(work, kept, bound, minDim, ii-1)
			}
		}
	}
	return work, kept
}

func dropRowCol(work [][]*big.Int, kept []int, idx int) ([][]*big.Int, []int) {
	work = append(work[:idx], work[idx+1:]...)
	for i, row := range work {
		work[i] = append(row[:idx], row[idx+1:]...)
	}
	kept = append(kept[:idx], kept[idx+1:]...)
	return work, kept
}
