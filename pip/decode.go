package pip

import (
	"github.com/arbelos/polysched/rel"
)

// scanData is the shared state of one quast walk: a mutable working
// relation that accumulates the constraints of the current tree path, the
// residual set collecting unsolvable regions, and the table mapping solver
// parameter columns to local division indices.
type scanData struct {
	bmap *rel.BasicRel
	rest *rel.Set
	pos  []int
}

// copyConstraintFrom translates a solver vector, laid out as
// [parameters+inputs | division columns | constant], into a working-relation
// row. Division entries are routed through the position table and may merge
// onto one local division.
func copyConstraintFrom(b *rel.BasicRel, vec []int64, pos []int) []int64 {
	np, nin, nout := b.NParam(), b.NIn(), b.NOut()
	dst := make([]int64, b.Width())
	dst[0] = vec[len(vec)-1]
	copy(dst[1:], vec[:np+nin])
	for i := 0; i+np+nin < len(vec)-1; i++ {
		dst[1+np+nin+nout+pos[i]] += vec[np+nin+i]
	}
	return dst
}

// addDivConstraints appends the bracketing pair of division div:
//
//	f - m*d >= 0
//	-(f-(m-1)) + m*d >= 0
//
// the second being the negation of f - m*d >= m.
func addDivConstraints(b *rel.BasicRel, p *Newparm, pos []int, div int) {
	divCol := b.Space.Width() + div
	lo := copyConstraintFrom(b, p.Num, pos)
	lo[divCol] -= p.Den
	b.AddIneq(lo)

	up := make([]int64, len(lo))
	for i, v := range lo {
		up[i] = -v
	}
	up[0] += p.Den - 1
	b.AddIneq(up)
}

// findDiv resolves a solver division parameter to a local division of the
// working relation, reusing an existing division with the same definition.
// A new division also gets its bracketing constraints; the caller rolls
// both back when leaving the subtree.
func findDiv(b *rel.BasicRel, p *Newparm, pos []int) int {
	num := copyConstraintFrom(b, p.Num, pos)
	for j := range b.Divs {
		if b.SameDiv(j, num, p.Den) {
			return j
		}
	}
	i := b.AddDiv(num, p.Den)
	addDivConstraints(b, p, pos, i)
	return i
}

// scan walks the quast depth-first, collecting one disjunct per solution
// leaf into res. Constraints and divisions added for a subtree are removed
// on the way out, so sibling subtrees never observe each other's state.
func (d *scanData) scan(q *Quast, res *rel.Rel) {
	b := d.bmap
	oldNDiv := b.NDiv()
	pipParam := b.NParam() + b.NIn()

	for _, p := range q.Newparms {
		d.pos[p.Rank-pipParam] = findDiv(b, p, d.pos)
	}

	switch {
	case q.Cond != nil:
		idx := b.AddIneq(copyConstraintFrom(b, q.Cond, d.pos))
		d.scan(q.Then, res)
		b.NegateIneq(idx)
		d.scan(q.Else, res)
		b.RemoveLastIneqs(1)
	case q.HasSol:
		// with no requested outputs only the guarded domain matters,
		// not the solution values
		n := b.NOut()
		if len(q.Sols) < n {
			n = len(q.Sols)
		}
		for j := 0; j < n; j++ {
			row := copyConstraintFrom(b, q.Sols[j], d.pos)
			row[1+b.NParam()+b.NIn()+j] = -1
			b.AddEq(row)
		}
		res.AddBasic(b.Copy())
		b.RemoveLastEqs(n)
	case d.rest != nil && res.IsEmpty():
		d.rest.AddBasic(dropOutputs(b))
	}

	added := b.NDiv() - oldNDiv
	b.RemoveLastIneqs(2 * added)
	b.RemoveLastDivs(added)
}

// dropOutputs projects the working relation onto its parameter and input
// columns. On a no-solution path no constraint mentions an output, so the
// columns are simply removed.
func dropOutputs(b *rel.BasicRel) *rel.BasicRel {
	np, nin, nout := b.NParam(), b.NIn(), b.NOut()
	at := 1 + np + nin
	drop := func(row []int64) []int64 {
		nr := make([]int64, 0, len(row)-nout)
		nr = append(nr, row[:at]...)
		if len(row) > at+nout {
			nr = append(nr, row[at+nout:]...)
		}
		return nr
	}
	nb := &rel.BasicRel{Space: rel.SetSpace(b.Space.Params, b.Space.In.Copy())}
	for _, row := range b.Eq {
		nb.Eq = append(nb.Eq, drop(row))
	}
	for _, row := range b.Ineq {
		nb.Ineq = append(nb.Ineq, drop(row))
	}
	for _, dv := range b.Divs {
		num := drop(dv.Num)
		nb.Divs = append(nb.Divs, rel.Div{Num: num, Den: dv.Den})
	}
	return nb
}

// mapFromQuast decodes a quast into a relation with dom as domain and the
// first keep solver unknowns as range. When wantRest is set, the regions of
// dom covered only by no-solution leaves are collected as a set.
func mapFromQuast(q *Quast, keep int, dom *rel.BasicRel, space *rel.Space, wantRest bool) (*rel.Rel, *rel.Set, error) {
	np, nin := dom.NParam(), dom.NOut()

	// the working relation starts as dom with keep unconstrained outputs
	work := &rel.BasicRel{Space: space.Copy()}
	at := 1 + np + nin
	widen := func(row []int64) []int64 {
		nr := make([]int64, 0, len(row)+keep)
		nr = append(nr, row[:at]...)
		nr = append(nr, make([]int64, keep)...)
		nr = append(nr, row[at:]...)
		return nr
	}
	for _, row := range dom.Eq {
		work.Eq = append(work.Eq, widen(row))
	}
	for _, row := range dom.Ineq {
		work.Ineq = append(work.Ineq, widen(row))
	}
	for _, dv := range dom.Divs {
		work.Divs = append(work.Divs, rel.Div{Num: widen(dv.Num), Den: dv.Den})
	}

	size := dom.NDiv()
	if n := q.maxRank() + 1 - (np + nin); n > size {
		size = n
	}
	pos := make([]int, size)
	for i := 0; i < dom.NDiv(); i++ {
		pos[i] = i
	}

	data := &scanData{bmap: work, pos: pos}
	if wantRest {
		data.rest = rel.Empty(rel.SetSpace(space.Params, space.In.Copy()))
	}
	res := rel.Empty(space)
	data.scan(q, res)
	return res, data.rest, nil
}
