package rel

import (
	"fmt"

	u "github.com/rjNemo/underscore"
	"golang.org/x/exp/slices"
)

// A MultiAff is a tuple of affine expressions over one domain tuple. Each
// expression row has the layout [constant | parameters | domain dims]. The
// zero-dimensional MultiAff over a parameter space is the default schedule
// prefix.
type MultiAff struct {
	// Domain tuple; nil for a zero-dimensional expression over parameters.
	In     *Tuple
	Params []string
	Affs   [][]int64
}

// ZeroMultiAff returns the zero-dimensional multi-affine expression over the
// given parameters.
func ZeroMultiAff(params ...string) *MultiAff {
	return &MultiAff{Params: slices.Clone(params)}
}

// Dim returns the number of affine expressions in the tuple.
func (ma *MultiAff) Dim() int { return len(ma.Affs) }

func (ma *MultiAff) Copy() *MultiAff {
	return &MultiAff{In: ma.In.Copy(), Params: slices.Clone(ma.Params), Affs: cloneRows(ma.Affs)}
}

// DropDims removes all affine expressions, leaving a zero-dimensional
// expression over the same parameters.
func (ma *MultiAff) DropDims() *MultiAff {
	return &MultiAff{Params: slices.Clone(ma.Params)}
}

// AlignParams rewrites the expression rows to the given parameter list.
func (ma *MultiAff) AlignParams(names []string) *MultiAff {
	old := len(ma.Params)
	m := make([]int, old)
	for i, p := range ma.Params {
		j := slices.Index(names, p)
		if j < 0 {
			panic(fmt.Sprintf("rel: parameter %q missing from aligned list", p))
		}
		m[i] = j
	}
	res := &MultiAff{In: ma.In.Copy(), Params: slices.Clone(names)}
	for _, row := range ma.Affs {
		nr := make([]int64, 1+len(names)+ma.In.Size())
		nr[0] = row[0]
		for i, j := range m {
			nr[1+j] = row[1+i]
		}
		copy(nr[1+len(names):], row[1+old:])
		res.Affs = append(res.Affs, nr)
	}
	return res
}

// Equal compares domain tuples and expression rows entry by entry.
func (ma *MultiAff) Equal(o *MultiAff) bool {
	if !ma.In.Equal(o.In) || len(ma.Affs) != len(o.Affs) ||
		!slices.Equal(ma.Params, o.Params) {
		return false
	}
	for i := range ma.Affs {
		if !slices.Equal(ma.Affs[i], o.Affs[i]) {
			return false
		}
	}
	return true
}

func (ma *MultiAff) String() string {
	return printMultiAff(ma)
}

// MultiAffList is an ordered list of multi-affine expressions, used for
// intra-statement consecutivity constraints.
type MultiAffList []*MultiAff

func (l MultiAffList) Copy() MultiAffList {
	return u.Map(l, func(ma *MultiAff) *MultiAff { return ma.Copy() })
}

// RelList is an ordered list of relations, used for inter-statement
// consecutivity constraints.
type RelList []*Rel

func (l RelList) Copy() RelList {
	return u.Map(l, func(r *Rel) *Rel { return r.Copy() })
}
