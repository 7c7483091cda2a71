package rel

import (
	"github.com/pkg/errors"
)

// eliminateTail removes the last n columns from a constraint system by exact
// substitution and projection. Equality rows with a unit coefficient on a
// column are used for Gaussian substitution, which also rewrites division
// numerators. Columns without such a pivot are projected away with
// Fourier-Motzkin combination of their lower and upper bounds; this is only
// possible when no division numerator mentions the column.
//
// The returned rows still have the original width; the eliminated columns
// are zero in every row.
func eliminateTail(eq, ineq [][]int64, divs []Div, width, n int) ([][]int64, [][]int64, []Div, error) {
	eq = cloneRows(eq)
	ineq = cloneRows(ineq)
	nd := make([]Div, len(divs))
	for i, d := range divs {
		nd[i] = Div{Num: cloneRow(d.Num), Den: d.Den}
	}
	divs = nd

	for c := width - n; c < width; c++ {
		pivot := -1
		for i, row := range eq {
			if row[c] == 1 || row[c] == -1 {
				pivot = i
				break
			}
		}
		if pivot >= 0 {
			p := eq[pivot]
			s := p[c]
			subst := func(row []int64) []int64 {
				if row[c] == 0 {
					return row
				}
				return addMul(-row[c]*s, row, p)
			}
			var keep [][]int64
			for i, row := range eq {
				if i == pivot {
					continue
				}
				keep = append(keep, subst(row))
			}
			eq = keep
			for i, row := range ineq {
				ineq[i] = subst(row)
			}
			for i := range divs {
				divs[i].Num = subst(divs[i].Num)
			}
			continue
		}
		for _, d := range divs {
			if d.Num[c] != 0 {
				return nil, nil, nil, errors.Errorf(
					"cannot eliminate column %d: used by a division without a unit defining equality", c)
			}
		}
		// no unit pivot: turn remaining equalities on c into inequality pairs
		var keep [][]int64
		for _, row := range eq {
			if row[c] == 0 {
				keep = append(keep, row)
				continue
			}
			ineq = append(ineq, cloneRow(row), negate(row))
		}
		eq = keep
		var lower, upper, rest [][]int64
		for _, row := range ineq {
			switch {
			case row[c] > 0:
				lower = append(lower, row)
			case row[c] < 0:
				upper = append(upper, row)
			default:
				rest = append(rest, row)
			}
		}
		for _, l := range lower {
			for _, up := range upper {
				// (-up[c])*l + l[c]*up cancels column c
				nr := make([]int64, width)
				for i := 0; i < width; i++ {
					nr[i] = -up[c]*l[i] + l[c]*up[i]
				}
				rest = append(rest, reduceRow(nr))
			}
		}
		ineq = rest
	}
	return eq, ineq, divs, nil
}
