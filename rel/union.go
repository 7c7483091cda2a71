package rel

import (
	"strings"

	"github.com/pkg/errors"
	u "github.com/rjNemo/underscore"
)

// A UnionRel is a collection of relations with pairwise distinct tuple
// structure, all aligned to one parameter list. A UnionSet is the analogous
// collection of sets.
type UnionRel struct {
	Params []string
	Rels   []*Rel
}

// UnionSet is a UnionRel whose members are sets.
type UnionSet = UnionRel

// EmptyUnion returns a union without any member relations.
func EmptyUnion(params ...string) *UnionRel {
	return &UnionRel{Params: params}
}

// UnionFromRel wraps a single relation.
func UnionFromRel(r *Rel) *UnionRel {
	res := EmptyUnion(r.Space.Params...)
	res.add(r.Copy())
	return res
}

// UnionFromBasic wraps a single basic relation.
func UnionFromBasic(b *BasicRel) *UnionRel {
	return UnionFromRel(FromBasic(b.Copy()))
}

func (ur *UnionRel) Copy() *UnionRel {
	res := EmptyUnion(ur.Params...)
	res.Rels = u.Map(ur.Rels, func(r *Rel) *Rel { return r.Copy() })
	return res
}

// IsEmpty reports whether every member relation is empty.
func (ur *UnionRel) IsEmpty() bool {
	return u.All(ur.Rels, func(r *Rel) bool { return r.IsEmpty() })
}

// NRels returns the number of member relations.
func (ur *UnionRel) NRels() int { return len(ur.Rels) }

// NBasic returns the total number of basic relations over all members.
func (ur *UnionRel) NBasic() int {
	n := 0
	for _, r := range ur.Rels {
		n += r.NBasic()
	}
	return n
}

// add merges r into the union, unioning with an existing member of the same
// tuple structure. r must already be aligned to ur.Params.
func (ur *UnionRel) add(r *Rel) {
	if r.IsEmpty() {
		return
	}
	for i, ex := range ur.Rels {
		if ex.Space.TuplesEqual(r.Space) {
			ur.Rels[i] = ex.Union(r)
			return
		}
	}
	ur.Rels = append(ur.Rels, r)
}

// Union merges two unions, aligning their parameter lists first.
func (ur *UnionRel) Union(o *UnionRel) *UnionRel {
	names := MergeParams(ur.Params, o.Params)
	res := ur.AlignParams(names)
	for _, r := range o.AlignParams(names).Rels {
		res.add(r)
	}
	return res
}

// Intersect intersects two unions member-wise on matching tuple structure.
func (ur *UnionRel) Intersect(o *UnionRel) *UnionRel {
	names := MergeParams(ur.Params, o.Params)
	a, b := ur.AlignParams(names), o.AlignParams(names)
	res := EmptyUnion(names...)
	for _, ra := range a.Rels {
		for _, rb := range b.Rels {
			if ra.Space.TuplesEqual(rb.Space) {
				res.add(ra.Intersect(rb))
			}
		}
	}
	return res
}

// AlignParams rewrites every member to the given parameter list, which must
// contain every parameter of the union.
func (ur *UnionRel) AlignParams(names []string) *UnionRel {
	res := EmptyUnion(names...)
	res.Rels = u.Map(ur.Rels, func(r *Rel) *Rel { return r.AlignParams(names) })
	return res
}

// Reverse reverses every member relation.
func (ur *UnionRel) Reverse() *UnionRel {
	res := EmptyUnion(ur.Params...)
	res.Rels = u.Map(ur.Rels, func(r *Rel) *Rel { return r.Reverse() })
	return res
}

// Curry reshapes the members whose input tuple is a wrapped pair; members
// that cannot be curried are dropped.
func (ur *UnionRel) Curry() *UnionRel {
	res := EmptyUnion(ur.Params...)
	for _, r := range ur.Rels {
		if r.Space.In.Wrapped() {
			res.Rels = append(res.Rels, r.Curry())
		}
	}
	return res
}

// Uncurry reshapes the members whose output tuple is a wrapped pair; members
// that cannot be uncurried are dropped.
func (ur *UnionRel) Uncurry() *UnionRel {
	res := EmptyUnion(ur.Params...)
	for _, r := range ur.Rels {
		if r.Space.Out.Wrapped() {
			res.Rels = append(res.Rels, r.Uncurry())
		}
	}
	return res
}

// ApplyDomain composes the domain side of every member with umap: for
// c : A -> B and umap members A -> A', the result collects A' -> B.
func (ur *UnionRel) ApplyDomain(umap *UnionRel) (*UnionRel, error) {
	names := MergeParams(ur.Params, umap.Params)
	a, m := ur.AlignParams(names), umap.AlignParams(names)
	res := EmptyUnion(names...)
	for _, r := range a.Rels {
		for _, f := range m.Rels {
			if !r.Space.In.Equal(f.Space.In) {
				continue
			}
			nr, err := composeRel(r, f)
			if err != nil {
				return nil, err
			}
			res.add(nr)
		}
	}
	return res, nil
}

// ApplyRange composes the range side of every member with umap.
func (ur *UnionRel) ApplyRange(umap *UnionRel) (*UnionRel, error) {
	res, err := ur.Reverse().ApplyDomain(umap)
	if err != nil {
		return nil, err
	}
	return res.Reverse(), nil
}

// Apply transports a union set through umap: the result holds every element
// that some member of the set reaches via umap.
func (ur *UnionSet) Apply(umap *UnionRel) (*UnionSet, error) {
	names := MergeParams(ur.Params, umap.Params)
	s, m := ur.AlignParams(names), umap.AlignParams(names)
	res := EmptyUnion(names...)
	for _, r := range s.Rels {
		for _, f := range m.Rels {
			if !r.Space.Out.Equal(f.Space.In) {
				continue
			}
			nr, err := composeSet(r, f)
			if err != nil {
				return nil, err
			}
			res.add(nr)
		}
	}
	return res, nil
}

// ContainsPoint reports whether a member with the given tuple structure
// contains the point.
func (ur *UnionRel) ContainsPoint(space *Space, point []int64) bool {
	for _, r := range ur.Rels {
		if r.Space.TuplesEqual(space) && r.ContainsPoint(point) {
			return true
		}
	}
	return false
}

func (ur *UnionRel) String() string {
	if len(ur.Rels) == 0 {
		return "{ }"
	}
	var bodies []string
	for _, r := range ur.Rels {
		bodies = append(bodies, strings.TrimSuffix(strings.TrimPrefix(printBody(r), "{ "), " }"))
	}
	return printParams(ur.Params) + "{ " + strings.Join(bodies, "; ") + " }"
}

// composeRel eliminates the shared input tuple of r : A -> B and f : A -> A',
// producing A' -> B. Both relations must be aligned to the same parameters.
func composeRel(r *Rel, f *Rel) (*Rel, error) {
	space := &Space{
		Params: append([]string{}, r.Space.Params...),
		In:     f.Space.Out.Copy(),
		Out:    r.Space.Out.Copy(),
	}
	res := Empty(space)
	for _, br := range r.Parts {
		for _, bf := range f.Parts {
			nb, err := composeBasic(br, bf, space)
			if err != nil {
				return nil, err
			}
			res.Parts = append(res.Parts, nb)
		}
	}
	return res, nil
}

// composeSet eliminates the tuple of set s through f : A -> A'.
func composeSet(s *Set, f *Rel) (*Set, error) {
	space := &Space{
		Params: append([]string{}, s.Space.Params...),
		Out:    f.Space.Out.Copy(),
	}
	res := Empty(space)
	for _, bs := range s.Parts {
		for _, bf := range f.Parts {
			nb, err := composeBasicSet(bs, bf, space)
			if err != nil {
				return nil, err
			}
			res.Parts = append(res.Parts, nb)
		}
	}
	return res, nil
}

// composeBasic builds the conjunction of br : A -> B and bf : A -> A' over
// the columns [const | params | A' | B | divs(br) | divs(bf) | A] and then
// eliminates the trailing A block.
func composeBasic(br, bf *BasicRel, space *Space) (*BasicRel, error) {
	np := br.NParam()
	nA, nB := br.NIn(), br.NOut()
	nA2 := bf.NOut()
	dr, df := len(br.Divs), len(bf.Divs)
	width := 1 + np + nA2 + nB + dr + df + nA

	// br rows: [const | p | A | B | divs]
	fromR := func(row []int64) []int64 {
		nr := make([]int64, width)
		copy(nr, row[:1+np])
		copy(nr[width-nA:], row[1+np:1+np+nA])
		copy(nr[1+np+nA2:], row[1+np+nA:1+np+nA+nB])
		copy(nr[1+np+nA2+nB:], row[1+np+nA+nB:])
		return nr
	}
	// bf rows: [const | p | A | A' | divs]
	fromF := func(row []int64) []int64 {
		nr := make([]int64, width)
		copy(nr, row[:1+np])
		copy(nr[width-nA:], row[1+np:1+np+nA])
		copy(nr[1+np:], row[1+np+nA:1+np+nA+nA2])
		copy(nr[1+np+nA2+nB+dr:], row[1+np+nA+nA2:])
		return nr
	}

	var eq, ineq [][]int64
	var divs []Div
	for _, row := range br.Eq {
		eq = append(eq, fromR(row))
	}
	for _, row := range bf.Eq {
		eq = append(eq, fromF(row))
	}
	for _, row := range br.Ineq {
		ineq = append(ineq, fromR(row))
	}
	for _, row := range bf.Ineq {
		ineq = append(ineq, fromF(row))
	}
	for _, d := range br.Divs {
		divs = append(divs, Div{Num: fromR(d.Num), Den: d.Den})
	}
	for _, d := range bf.Divs {
		divs = append(divs, Div{Num: fromF(d.Num), Den: d.Den})
	}

	eq, ineq, divs, err := eliminateTail(eq, ineq, divs, width, nA)
	if err != nil {
		return nil, errors.Wrap(err, "composing relations")
	}
	nb := &BasicRel{Space: space.Copy()}
	trim := func(row []int64) []int64 { return row[:width-nA] }
	for _, row := range eq {
		nb.Eq = append(nb.Eq, trim(row))
	}
	for _, row := range ineq {
		nb.Ineq = append(nb.Ineq, trim(row))
	}
	for _, d := range divs {
		nb.Divs = append(nb.Divs, Div{Num: trim(d.Num), Den: d.Den})
	}
	return nb, nil
}

// composeBasicSet is composeBasic for a set: bs has no input tuple, so the
// eliminated block is its output tuple.
func composeBasicSet(bs, bf *BasicRel, space *Space) (*BasicRel, error) {
	// view the set as a relation with an empty input tuple
	asRel := &BasicRel{
		Space: &Space{Params: bs.Space.Params, In: bs.Space.Out, Out: &Tuple{}},
		Eq:    bs.Eq,
		Ineq:  bs.Ineq,
		Divs:  bs.Divs,
	}
	nb, err := composeBasic(asRel, bf, &Space{Params: space.Params, In: space.Out, Out: &Tuple{}})
	if err != nil {
		return nil, err
	}
	nb.Space = space.Copy()
	return nb, nil
}
