package pip

import (
	"github.com/arbelos/polysched/rel"
)

// A Matrix is a constraint system in the solver's wire layout. Every row is
//
//	[tag | extra-front | unknowns | parameters | extra-back | constant]
//
// with tag 0 for an equality and tag 1 for an inequality. The same layout
// with zero unknowns encodes a parameter context.
type Matrix struct {
	NCol int
	Rows [][]int64
}

// FromBasicRel encodes a basic relation, whose rows are laid out as
// [constant | parameters | input | output | divisions], into the solver
// layout. The first pipParam variable columns become solver parameters and
// the remaining columns, divisions included, become unknowns. Divisions with
// a known definition contribute their two bracketing inequalities, so the
// matrix is self-contained.
func FromBasicRel(b *rel.BasicRel, pipParam, extraFront, extraBack int) *Matrix {
	total := b.NParam() + b.NIn() + b.NOut() + b.NDiv()
	pipVar := total - pipParam
	m := &Matrix{NCol: 2 + extraFront + pipVar + pipParam + extraBack}

	conv := func(tag int64, row []int64) []int64 {
		nr := make([]int64, m.NCol)
		nr[0] = tag
		nr[m.NCol-1] = row[0]
		copy(nr[1+extraFront:], row[1+pipParam:1+total])
		copy(nr[1+extraFront+pipVar:], row[1:1+pipParam])
		return nr
	}

	for _, row := range b.Eq {
		m.Rows = append(m.Rows, conv(0, row))
	}
	for _, row := range b.Ineq {
		m.Rows = append(m.Rows, conv(1, row))
	}
	for i, d := range b.Divs {
		if d.Den == 0 {
			continue
		}
		// m*d <= f <= m*d + m - 1
		col := b.Space.Width() + i
		lo := make([]int64, 1+total)
		copy(lo, d.Num)
		lo[col] -= d.Den
		up := make([]int64, len(lo))
		for j, v := range lo {
			up[j] = -v
		}
		up[0] += d.Den - 1
		m.Rows = append(m.Rows, conv(1, lo), conv(1, up))
	}
	return m
}
