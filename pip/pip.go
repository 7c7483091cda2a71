package pip

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/arbelos/polysched/rel"
)

// LexMin computes, for every point of dom, the lexicographically smallest
// output tuple bmap relates it to. When wantEmpty is set, the subset of dom
// with no feasible output is returned as well; it is nil otherwise.
func LexMin(bmap, dom *rel.BasicRel, wantEmpty bool) (*rel.Rel, *rel.Set, error) {
	return extremumOn(bmap, dom, wantEmpty, false)
}

// LexMax is LexMin for the lexicographically largest output tuple.
func LexMax(bmap, dom *rel.BasicRel, wantEmpty bool) (*rel.Rel, *rel.Set, error) {
	return extremumOn(bmap, dom, wantEmpty, true)
}

func extremumOn(bmap, dom *rel.BasicRel, wantEmpty, max bool) (*rel.Rel, *rel.Set, error) {
	if bmap.NParam() != dom.NParam() {
		panic(fmt.Sprintf("pip: relation has %d parameters, domain %d", bmap.NParam(), dom.NParam()))
	}
	if bmap.NIn() != dom.NOut() {
		panic(fmt.Sprintf("pip: relation has %d inputs, domain %d dimensions", bmap.NIn(), dom.NOut()))
	}

	domain := FromBasicRel(bmap, bmap.NParam()+bmap.NIn(), 0, dom.NDiv())
	context := FromBasicRel(dom, 0, 0, 0)
	space := rel.RelSpace(bmap.Space.Params, bmap.Space.In.Copy(), bmap.Space.Out.Copy())
	sol, err := Solve(domain, context, max)
	if errors.Is(err, errBudget) {
		// gave up before building a decision tree: empty result,
		// residual untouched
		return rel.Empty(space), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	res, rest, err := mapFromQuast(sol, bmap.NOut(), dom, space, wantEmpty)
	if err != nil {
		return nil, nil, err
	}
	if wantEmpty && res.IsEmpty() {
		// the tree existed but nothing was feasible anywhere
		whole := &rel.BasicRel{
			Space: rel.SetSpace(space.Params, space.In.Copy()),
			Eq:    dom.Eq,
			Ineq:  dom.Ineq,
			Divs:  dom.Divs,
		}
		rest = rel.FromBasic(whole.Copy())
	}
	return res, rest, nil
}

// ComputeDivs resolves the divisions of bmap whose definitions are unknown
// by running the solver with every real dimension as a parameter and no
// requested outputs. The result describes the same relation with every
// division carrying an explicit floor definition.
func ComputeDivs(bmap *rel.BasicRel) (*rel.Rel, error) {
	np, nin, nout := bmap.NParam(), bmap.NIn(), bmap.NOut()

	domain := FromBasicRel(bmap, np+nin+nout, 0, 0)
	context := &Matrix{NCol: np + nin + nout + 2}
	sol, err := Solve(domain, context, false)
	if err != nil {
		return nil, errors.Wrap(err, "resolving divisions")
	}

	vars := make([]string, nin+nout)
	for i := range vars {
		vars[i] = fmt.Sprintf("x%d", i)
	}
	tuple := rel.FlatTuple("", vars...)
	dom := rel.NewBasicRel(rel.SetSpace(bmap.Space.Params, tuple))
	wspace := rel.RelSpace(bmap.Space.Params, tuple, &rel.Tuple{})

	m, _, err := mapFromQuast(sol, 0, dom, wspace, false)
	if err != nil {
		return nil, err
	}

	// reinterpret the flattened domain in the original space; the column
	// layout is identical
	res := rel.Empty(bmap.Space)
	for _, p := range m.Parts {
		res.Parts = append(res.Parts, &rel.BasicRel{
			Space: bmap.Space.Copy(),
			Eq:    p.Eq,
			Ineq:  p.Ineq,
			Divs:  p.Divs,
		})
	}
	return res, nil
}
