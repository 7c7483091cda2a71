package rel

import (
	"fmt"

	u "github.com/rjNemo/underscore"
)

// A Rel is a finite union of basic relations sharing one space. A Set is
// represented as a relation without an input tuple, mirroring how the
// underlying algebra treats sets as maps with zero input dimensions.
type Rel struct {
	Space *Space
	Parts []*BasicRel
}

// Set is a relation whose space has no input tuple.
type Set = Rel

// Empty returns the empty relation of the given space.
func Empty(space *Space) *Rel {
	return &Rel{Space: space.Copy()}
}

// Universe returns the universe relation of the given space.
func Universe(space *Space) *Rel {
	return &Rel{Space: space.Copy(), Parts: []*BasicRel{NewBasicRel(space)}}
}

// FromBasic wraps a single basic relation.
func FromBasic(b *BasicRel) *Rel {
	return &Rel{Space: b.Space.Copy(), Parts: []*BasicRel{b}}
}

func (r *Rel) Copy() *Rel {
	nr := &Rel{Space: r.Space.Copy()}
	for _, p := range r.Parts {
		nr.Parts = append(nr.Parts, p.Copy())
	}
	return nr
}

// IsEmpty reports whether the relation has no disjuncts. This is the plain,
// syntactic notion used when deciding whether a field is at its default.
func (r *Rel) IsEmpty() bool { return len(r.Parts) == 0 }

// IsUniverse reports whether some disjunct is unconstrained.
func (r *Rel) IsUniverse() bool {
	return u.Any(r.Parts, func(b *BasicRel) bool { return b.IsUniverse() })
}

// NBasic returns the number of disjuncts.
func (r *Rel) NBasic() int { return len(r.Parts) }

// AddBasic unions one basic relation into r. The basic relation must live in
// r's space.
func (r *Rel) AddBasic(b *BasicRel) {
	if !r.Space.Equal(b.Space) {
		panic(fmt.Sprintf("rel: adding basic relation of space %s to %s", b.Space, r.Space))
	}
	r.Parts = append(r.Parts, b)
}

// Union returns the disjunction of two relations in the same space.
func (r *Rel) Union(o *Rel) *Rel {
	if !r.Space.TuplesEqual(o.Space) {
		panic(fmt.Sprintf("rel: union of spaces %s and %s", r.Space, o.Space))
	}
	names := MergeParams(r.Space.Params, o.Space.Params)
	nr := r.AlignParams(names)
	for _, p := range o.AlignParams(names).Parts {
		nr.Parts = append(nr.Parts, p)
	}
	return nr
}

// Intersect returns the conjunction of two relations in the same space.
// Divisions of both operands are kept side by side.
func (r *Rel) Intersect(o *Rel) *Rel {
	if !r.Space.TuplesEqual(o.Space) {
		panic(fmt.Sprintf("rel: intersection of spaces %s and %s", r.Space, o.Space))
	}
	names := MergeParams(r.Space.Params, o.Space.Params)
	a, b := r.AlignParams(names), o.AlignParams(names)
	nr := Empty(a.Space)
	for _, pa := range a.Parts {
		for _, pb := range b.Parts {
			nr.Parts = append(nr.Parts, intersectBasic(pa, pb))
		}
	}
	return nr
}

func intersectBasic(a, b *BasicRel) *BasicRel {
	w := a.Space.Width()
	na := len(a.Divs)
	total := w + na + len(b.Divs)
	// widen a row to the combined width, placing its div block at column at
	wide := func(row []int64, at int) []int64 {
		nr := make([]int64, total)
		copy(nr, row[:w])
		copy(nr[at:], row[w:])
		return nr
	}
	res := &BasicRel{Space: a.Space.Copy()}
	for _, d := range a.Divs {
		res.Divs = append(res.Divs, Div{Num: wide(d.Num, w), Den: d.Den})
	}
	for _, d := range b.Divs {
		res.Divs = append(res.Divs, Div{Num: wide(d.Num, w+na), Den: d.Den})
	}
	for _, row := range a.Eq {
		res.Eq = append(res.Eq, wide(row, w))
	}
	for _, row := range b.Eq {
		res.Eq = append(res.Eq, wide(row, w+na))
	}
	for _, row := range a.Ineq {
		res.Ineq = append(res.Ineq, wide(row, w))
	}
	for _, row := range b.Ineq {
		res.Ineq = append(res.Ineq, wide(row, w+na))
	}
	return res
}

// Reverse swaps the input and output tuples of every disjunct.
func (r *Rel) Reverse() *Rel {
	nr := Empty(r.Space.Reverse())
	np, nin, nout := r.Space.NParam(), r.Space.NIn(), r.Space.NOut()
	swap := func(row []int64) []int64 {
		out := make([]int64, len(row))
		copy(out, row[:1+np])
		copy(out[1+np:], row[1+np+nin:1+np+nin+nout])
		copy(out[1+np+nout:], row[1+np:1+np+nin])
		copy(out[1+np+nin+nout:], row[1+np+nin+nout:])
		return out
	}
	for _, p := range r.Parts {
		nb := &BasicRel{Space: nr.Space.Copy()}
		for _, row := range p.Eq {
			nb.Eq = append(nb.Eq, swap(row))
		}
		for _, row := range p.Ineq {
			nb.Ineq = append(nb.Ineq, swap(row))
		}
		for _, d := range p.Divs {
			nb.Divs = append(nb.Divs, Div{Num: swap(d.Num), Den: d.Den})
		}
		nr.Parts = append(nr.Parts, nb)
	}
	return nr
}

// Curry reshapes every disjunct from [A -> B] -> C to A -> [B -> C].
// Constraint rows are untouched since the column order does not change.
func (r *Rel) Curry() *Rel {
	nr := r.Copy()
	nr.Space = r.Space.Curry()
	for _, p := range nr.Parts {
		p.Space = p.Space.Curry()
	}
	return nr
}

// Uncurry reshapes every disjunct from A -> [B -> C] to [A -> B] -> C.
func (r *Rel) Uncurry() *Rel {
	nr := r.Copy()
	nr.Space = r.Space.Uncurry()
	for _, p := range nr.Parts {
		p.Space = p.Space.Uncurry()
	}
	return nr
}

// AlignParams rewrites the relation to the given parameter list.
func (r *Rel) AlignParams(names []string) *Rel {
	nr := &Rel{Space: &Space{
		Params: append([]string{}, names...),
		In:     r.Space.In.Copy(),
		Out:    r.Space.Out.Copy(),
	}}
	nr.Parts = u.Map(r.Parts, func(p *BasicRel) *BasicRel { return p.AlignParams(names) })
	return nr
}

// ContainsPoint reports whether any disjunct contains the point.
func (r *Rel) ContainsPoint(point []int64) bool {
	return u.Any(r.Parts, func(p *BasicRel) bool { return p.ContainsPoint(point) })
}

func (r *Rel) String() string {
	return Print(r)
}
