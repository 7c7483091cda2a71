// Package pip solves parametric integer linear programs: given a system of
// affine constraints over unknowns and parameters, it computes the
// lexicographic minimum (or maximum) of the unknowns as a piecewise-affine
// function of the parameters. The result is a quast, a decision tree whose
// guards split the parameter space and whose leaves carry one affine
// expression per unknown.
package pip

// A Newparm introduces an integer-division parameter at a quast node:
// a fresh parameter z = floor(Num / Den), where Num is an affine expression
// over the parameters in scope at the node, constant last. Rank is the
// column the new parameter occupies in every vector below the node.
type Newparm struct {
	Rank int
	Num  []int64
	Den  int64
}

// A Quast is one node of the solver's decision tree. Newparms are the
// division parameters introduced at the node. A branch node carries a guard
// Cond (affine over the parameters in scope, constant last, taken as
// Cond >= 0) with Then and Else subtrees. A leaf either holds one solution
// vector per unknown (HasSol) or marks the guarded region as having no
// solution.
type Quast struct {
	Newparms []*Newparm
	Cond     []int64
	Then     *Quast
	Else     *Quast
	HasSol   bool
	Sols     [][]int64
}

// maxRank returns the largest Rank of any division parameter in the tree,
// or -1 when there is none.
func (q *Quast) maxRank() int {
	if q == nil {
		return -1
	}
	m := -1
	for _, p := range q.Newparms {
		if p.Rank > m {
			m = p.Rank
		}
	}
	if r := q.Then.maxRank(); r > m {
		m = r
	}
	if r := q.Else.maxRank(); r > m {
		m = r
	}
	return m
}
