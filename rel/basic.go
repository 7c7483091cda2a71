package rel

import (
	"fmt"
)

// A Div is an existentially quantified integer division variable
// d = floor(Num / Den). Num is a full-width constraint row that may refer to
// parameters, input and output dimensions and earlier divisions only; the
// entries for the division itself and for later divisions are zero. A zero
// Den marks a division whose definition is not (yet) known.
type Div struct {
	Num []int64
	Den int64
}

// A BasicRel is a conjunction of affine equalities and inequalities over the
// columns [constant | parameters | input | output | divisions]. Every
// constraint row has length Space.Width() + len(Divs).
type BasicRel struct {
	Space *Space
	Eq    [][]int64
	Ineq  [][]int64
	Divs  []Div
}

// NewBasicRel returns the universe relation of the given space: no
// constraints, no divisions.
func NewBasicRel(space *Space) *BasicRel {
	return &BasicRel{Space: space.Copy()}
}

func (b *BasicRel) NParam() int { return b.Space.NParam() }
func (b *BasicRel) NIn() int    { return b.Space.NIn() }
func (b *BasicRel) NOut() int   { return b.Space.NOut() }
func (b *BasicRel) NDiv() int   { return len(b.Divs) }

// Width is the current length of every constraint row.
func (b *BasicRel) Width() int {
	return b.Space.Width() + len(b.Divs)
}

// divCol returns the column of division i.
func (b *BasicRel) divCol(i int) int {
	return b.Space.Width() + i
}

func (b *BasicRel) Copy() *BasicRel {
	nb := &BasicRel{
		Space: b.Space.Copy(),
		Eq:    cloneRows(b.Eq),
		Ineq:  cloneRows(b.Ineq),
		Divs:  make([]Div, len(b.Divs)),
	}
	for i, d := range b.Divs {
		nb.Divs[i] = Div{Num: cloneRow(d.Num), Den: d.Den}
	}
	return nb
}

func (b *BasicRel) checkRow(row []int64) {
	if len(row) != b.Width() {
		panic(fmt.Sprintf("rel: row length %d, want %d", len(row), b.Width()))
	}
}

// AddEq appends an equality row and returns its index.
func (b *BasicRel) AddEq(row []int64) int {
	b.checkRow(row)
	b.Eq = append(b.Eq, row)
	return len(b.Eq) - 1
}

// AddIneq appends an inequality row and returns its index.
func (b *BasicRel) AddIneq(row []int64) int {
	b.checkRow(row)
	b.Ineq = append(b.Ineq, row)
	return len(b.Ineq) - 1
}

// RemoveLastEqs drops the last n equality rows.
func (b *BasicRel) RemoveLastEqs(n int) {
	b.Eq = b.Eq[:len(b.Eq)-n]
}

// RemoveLastIneqs drops the last n inequality rows.
func (b *BasicRel) RemoveLastIneqs(n int) {
	b.Ineq = b.Ineq[:len(b.Ineq)-n]
}

// NegateIneq replaces inequality i by its integer complement:
// e >= 0 becomes -e - 1 >= 0.
func (b *BasicRel) NegateIneq(i int) {
	negateIn(b.Ineq[i])
	b.Ineq[i][0]--
}

// AddDiv appends a division floor(num/den) and returns its index. The
// numerator must be of the pre-extension width; all constraint rows and the
// new numerator are widened with a zero column for the new division.
func (b *BasicRel) AddDiv(num []int64, den int64) int {
	if len(num) != b.Width() {
		panic(fmt.Sprintf("rel: div numerator length %d, want %d", len(num), b.Width()))
	}
	for i := range b.Eq {
		b.Eq[i] = append(b.Eq[i], 0)
	}
	for i := range b.Ineq {
		b.Ineq[i] = append(b.Ineq[i], 0)
	}
	b.Divs = append(b.Divs, Div{Num: append(cloneRow(num), 0), Den: den})
	return len(b.Divs) - 1
}

// RemoveLastDivs drops the last n divisions and their columns. No remaining
// row or numerator may still use the dropped columns.
func (b *BasicRel) RemoveLastDivs(n int) {
	w := b.Width() - n
	for i := range b.Eq {
		b.Eq[i] = b.Eq[i][:w]
	}
	for i := range b.Ineq {
		b.Ineq[i] = b.Ineq[i][:w]
	}
	b.Divs = b.Divs[:len(b.Divs)-n]
	// earlier numerators may still be at their shorter add-time width
	for i := range b.Divs {
		if len(b.Divs[i].Num) > w {
			b.Divs[i].Num = b.Divs[i].Num[:w]
		}
	}
}

// SameDiv compares division i against the definition (num, den), looking
// only at the columns that are in scope for division i: the constant,
// parameters, inputs, outputs and the divisions before i.
func (b *BasicRel) SameDiv(i int, num []int64, den int64) bool {
	d := b.Divs[i]
	if d.Den != den {
		return false
	}
	n := b.Space.Width() + i
	if !seqEq(d.Num, num, n) {
		return false
	}
	// the candidate numerator must not use later divisions either
	return allZero(num[n:])
}

// IsUniverse reports whether the relation has no constraints.
func (b *BasicRel) IsUniverse() bool {
	return len(b.Eq) == 0 && len(b.Ineq) == 0 && len(b.Divs) == 0
}

// StructurallyEqual compares spaces, constraint rows and divisions entry by
// entry. It is a syntactic comparison, not set equality.
func (b *BasicRel) StructurallyEqual(o *BasicRel) bool {
	if !b.Space.Equal(o.Space) || len(b.Eq) != len(o.Eq) ||
		len(b.Ineq) != len(o.Ineq) || len(b.Divs) != len(o.Divs) {
		return false
	}
	for i := range b.Eq {
		if !seqEq(b.Eq[i], o.Eq[i], len(b.Eq[i])) {
			return false
		}
	}
	for i := range b.Ineq {
		if !seqEq(b.Ineq[i], o.Ineq[i], len(b.Ineq[i])) {
			return false
		}
	}
	for i := range b.Divs {
		if b.Divs[i].Den != o.Divs[i].Den || !seqEq(b.Divs[i].Num, o.Divs[i].Num, len(b.Divs[i].Num)) {
			return false
		}
	}
	return true
}

// ContainsPoint evaluates the relation at a point given as the concatenated
// values of parameters, input and output dimensions. Division values are
// computed from their definitions; relations with undefined divisions cannot
// be tested this way.
func (b *BasicRel) ContainsPoint(point []int64) bool {
	nv := b.Space.Width() - 1
	if len(point) != nv {
		panic(fmt.Sprintf("rel: point length %d, want %d", len(point), nv))
	}
	full := make([]int64, nv+len(b.Divs))
	copy(full, point)
	for i, d := range b.Divs {
		if d.Den == 0 {
			panic("rel: point membership with an undefined division")
		}
		full[nv+i] = divFloor(evalRow(d.Num[:1+nv+i], full[:nv+i]), d.Den)
	}
	for _, row := range b.Eq {
		if evalRow(row, full) != 0 {
			return false
		}
	}
	for _, row := range b.Ineq {
		if evalRow(row, full) < 0 {
			return false
		}
	}
	return true
}

// AlignParams rewrites the relation to the given parameter list, which must
// contain every parameter of the relation's space.
func (b *BasicRel) AlignParams(names []string) *BasicRel {
	if len(names) == len(b.Space.Params) && seqEqStr(names, b.Space.Params) {
		return b.Copy()
	}
	m := b.Space.paramMap(names)
	old := b.Space.NParam()
	remap := func(row []int64) []int64 {
		nr := make([]int64, len(row)+len(names)-old)
		nr[0] = row[0]
		for i, j := range m {
			nr[1+j] = row[1+i]
		}
		copy(nr[1+len(names):], row[1+old:])
		return nr
	}
	nb := &BasicRel{Space: &Space{
		Params: append([]string{}, names...),
		In:     b.Space.In.Copy(),
		Out:    b.Space.Out.Copy(),
	}}
	for _, r := range b.Eq {
		nb.Eq = append(nb.Eq, remap(r))
	}
	for _, r := range b.Ineq {
		nb.Ineq = append(nb.Ineq, remap(r))
	}
	for _, d := range b.Divs {
		nb.Divs = append(nb.Divs, Div{Num: remap(d.Num), Den: d.Den})
	}
	return nb
}

func seqEqStr(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
