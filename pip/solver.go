package pip

import (
	"math/big"

	"github.com/pkg/errors"
)

// The solver runs a parametric dual simplex over an exact rational tableau.
// Every unknown x_i is sign-free, so it is shifted by a symbolic big
// constant: q_i = x_i + M with q_i >= 0. Each tableau row expresses one
// variable (a shifted unknown, a constraint slack, or a cut slack) as
//
//	value = aff(parameters) + m*M + sum coef_k * nonbasic_k
//
// with all nonbasic variables at zero. Dual simplex pivots until every
// basic value is provably nonnegative on the current parameter context,
// branching whenever a sign cannot be decided. Non-integral vertices are
// repaired with parametric Gomory cuts, which mint floor-division
// parameters; every fresh cut row is pivoted tight at once, so each cut
// strictly changes the tableau. At a feasible integral vertex the unknowns
// read off as
// aff + (m-1)*M; m must be exactly one, anything else means the problem is
// unbounded below and the region has no solution.

// pivotBudget bounds the total number of pivots, branches and cuts of one
// solve, guarding against pathological inputs.
const pivotBudget = 10000

// errBudget reports that a solve gave up after pivotBudget steps. Callers
// may treat it as "no answer" without mistaking real failures for it.
var errBudget = errors.New("pip: pivot budget exhausted")

var ratOne = new(big.Rat).SetInt64(1)

type trow struct {
	aff []*big.Rat // over parameters, constant last
	m   *big.Rat
	co  []*big.Rat // over the nonbasic columns
}

type solver struct {
	nUnk     int
	nParam   int
	rows     []*trow
	nonbas   []int // variable id per column
	colOf    []int // column per variable id, -1 when basic
	ctx      *paramCtx
	pending  []*Newparm
	maximize bool
	budget   *int
}

// Solve computes the lexicographic optimum of the unknowns of the domain
// matrix over the parameter region of the context matrix. Both matrices use
// the layout of FromBasicRel; the context has no unknowns, and its column
// count fixes the parameter count.
func Solve(domain, context *Matrix, maximize bool) (*Quast, error) {
	nParam := context.NCol - 2
	nUnk := domain.NCol - 2 - nParam
	if nUnk < 0 || nParam < 0 {
		return nil, errors.Errorf("pip: domain has %d columns for %d parameters", domain.NCol, nParam)
	}

	budget := pivotBudget
	s := &solver{
		nUnk:     nUnk,
		nParam:   nParam,
		ctx:      newParamCtx(nParam),
		maximize: maximize,
		budget:   &budget,
	}
	for _, row := range context.Rows {
		s.ctx.addInt64(row[1 : 1+nParam+1])
		if row[0] == 0 {
			neg := make([]int64, nParam+1)
			for i := range neg {
				neg[i] = -row[1+i]
			}
			s.ctx.addInt64(neg)
		}
	}
	if !s.ctx.feasible() {
		return &Quast{}, nil
	}

	// the shifted unknowns start nonbasic
	for i := 0; i < nUnk; i++ {
		s.nonbas = append(s.nonbas, i)
		s.colOf = append(s.colOf, i)
		s.rows = append(s.rows, s.unitRow(i))
	}
	for _, row := range domain.Rows {
		s.addSlack(row)
		if row[0] == 0 {
			neg := make([]int64, len(row))
			neg[0] = 1
			for i := 1; i < len(row); i++ {
				neg[i] = -row[i]
			}
			s.addSlack(neg)
		}
	}
	return s.solve()
}

func (s *solver) unitRow(col int) *trow {
	r := &trow{aff: zeroRats(s.nParam + 1), m: new(big.Rat), co: zeroRats(s.nUnk)}
	r.co[col] = new(big.Rat).SetInt64(1)
	return r
}

// addSlack appends the row of one constraint slack. The matrix row is
// [tag | unknowns | parameters | constant]; unknown coefficients are negated
// for a maximization so that the solver always minimizes.
func (s *solver) addSlack(row []int64) {
	r := &trow{aff: zeroRats(s.nParam + 1), m: new(big.Rat), co: zeroRats(len(s.nonbas))}
	msum := new(big.Rat)
	for j := 0; j < s.nUnk; j++ {
		c := row[1+j]
		if s.maximize {
			c = -c
		}
		r.co[j] = new(big.Rat).SetInt64(c)
		msum.Add(msum, r.co[j])
	}
	r.m.Neg(msum)
	for k := 0; k <= s.nParam; k++ {
		r.aff[k] = new(big.Rat).SetInt64(row[1+s.nUnk+k])
	}
	s.rows = append(s.rows, r)
	s.colOf = append(s.colOf, -1)
}

func (s *solver) clone() *solver {
	nc := &solver{
		nUnk:     s.nUnk,
		nParam:   s.nParam,
		ctx:      s.ctx.clone(),
		maximize: s.maximize,
		budget:   s.budget,
	}
	nc.nonbas = append([]int{}, s.nonbas...)
	nc.colOf = append([]int{}, s.colOf...)
	nc.rows = make([]*trow, len(s.rows))
	for i, r := range s.rows {
		nc.rows[i] = &trow{aff: cloneRats(r.aff), m: new(big.Rat).Set(r.m), co: cloneRats(r.co)}
	}
	return nc
}

func (s *solver) takePending() []*Newparm {
	p := s.pending
	s.pending = nil
	return p
}

func (s *solver) spend() error {
	*s.budget--
	if *s.budget < 0 {
		return errBudget
	}
	return nil
}

func (s *solver) solve() (*Quast, error) {
	for {
		if err := s.spend(); err != nil {
			return nil, err
		}
		row := -1
		branch := -1
		for i, r := range s.rows {
			if s.colOf[i] >= 0 {
				continue
			}
			sign := s.rowSign(r)
			if sign < 0 {
				row = i
				break
			}
			if sign == 0 {
				branch = i
				break
			}
		}
		switch {
		case branch >= 0:
			return s.branchOn(s.rows[branch])
		case row >= 0:
			col := s.pivotCol(s.rows[row])
			if col < 0 {
				return &Quast{Newparms: s.takePending()}, nil
			}
			s.pivot(row, col)
		default:
			if i := s.fractionalUnknown(); i >= 0 {
				if err := s.addCut(i); err != nil {
					return nil, err
				}
				cut := len(s.rows) - 1
				col := s.pivotCol(s.rows[cut])
				if col < 0 {
					return s.splitResidue(i, cut)
				}
				s.pivot(cut, col)
				continue
			}
			return s.leaf()
		}
	}
}

// rowSign decides the sign of a row's value at the current vertex. A
// nonzero M coefficient dominates; otherwise the parameter context decides.
func (s *solver) rowSign(r *trow) int {
	if sg := r.m.Sign(); sg != 0 {
		return sg
	}
	return s.ctx.signOf(r.aff)
}

// branchOn splits the parameter region on the sign of a row's value and
// solves both sides independently.
func (s *solver) branchOn(r *trow) (*Quast, error) {
	f := integerize(r.aff)
	cond, err := bigRowToInt64(f)
	if err != nil {
		return nil, err
	}
	node := &Quast{Newparms: s.takePending(), Cond: cond}

	then := s.clone()
	then.ctx.add(f)
	node.Then, err = then.solve()
	if err != nil {
		return nil, err
	}

	neg := make([]*big.Int, len(f))
	for i, v := range f {
		neg[i] = new(big.Int).Neg(v)
	}
	neg[len(neg)-1].Sub(neg[len(neg)-1], big.NewInt(1))
	els := s.clone()
	els.ctx.add(neg)
	node.Else, err = els.solve()
	if err != nil {
		return nil, err
	}
	return node, nil
}

// pivotCol picks the entering column for a violated row by the
// lexicographic ratio rule, which keeps the vertex lexicographically
// minimal in the shifted unknowns and rules out cycling.
func (s *solver) pivotCol(r *trow) int {
	best := -1
	for k := range s.nonbas {
		if r.co[k].Sign() <= 0 {
			continue
		}
		if best < 0 || s.lexLess(k, best, r) {
			best = k
		}
	}
	return best
}

// lexLess reports whether column a's ratio vector precedes column b's.
func (s *solver) lexLess(a, b int, r *trow) bool {
	va, vb := new(big.Rat), new(big.Rat)
	for _, tr := range s.rows {
		va.Mul(tr.co[a], r.co[b])
		vb.Mul(tr.co[b], r.co[a])
		if c := va.Cmp(vb); c != 0 {
			return c < 0
		}
	}
	return false
}

// pivot makes the variable of row leave the basis through column col.
func (s *solver) pivot(row, col int) {
	r := s.rows[row]
	piv := new(big.Rat).Set(r.co[col])
	for i, tr := range s.rows {
		if i == row || tr.co[col].Sign() == 0 {
			continue
		}
		f := new(big.Rat).Quo(tr.co[col], piv)
		for k := range tr.co {
			if k == col {
				continue
			}
			tr.co[k].Sub(tr.co[k], new(big.Rat).Mul(f, r.co[k]))
		}
		tr.co[col] = f
		for k := range tr.aff {
			tr.aff[k].Sub(tr.aff[k], new(big.Rat).Mul(f, r.aff[k]))
		}
		tr.m.Sub(tr.m, new(big.Rat).Mul(f, r.m))
	}
	entering := s.nonbas[col]
	s.colOf[entering] = -1
	s.nonbas[col] = row
	s.colOf[row] = col
	s.rows[row] = s.unitRow(col)
}

// splitResidue handles a cut whose nonbasic coefficients are all integral:
// the fractional part of unknown i then comes from the parameters alone, so
// integer points exist only where the minted division is exact. On that side
// the cut row is zero and adding it to row i rewrites the unknown to its
// integral form; off it the region has no solution.
func (s *solver) splitResidue(i, cut int) (*Quast, error) {
	cutAff := s.rows[cut].aff
	f := integerize(cutAff)
	cond, err := bigRowToInt64(f)
	if err != nil {
		return nil, err
	}
	node := &Quast{Newparms: s.takePending(), Cond: cond}

	then := s.clone()
	then.ctx.add(f)
	r := then.rows[i]
	for k := range r.aff {
		r.aff[k].Add(r.aff[k], cutAff[k])
	}
	node.Then, err = then.solve()
	if err != nil {
		return nil, err
	}
	node.Else = &Quast{}
	return node, nil
}

// fractionalUnknown returns the first basic shifted unknown whose
// parametric value has a fractional coefficient, or -1.
func (s *solver) fractionalUnknown() int {
	for i := 0; i < s.nUnk; i++ {
		if s.colOf[i] >= 0 {
			continue
		}
		for _, v := range s.rows[i].aff {
			if !v.IsInt() {
				return i
			}
		}
	}
	return -1
}

// addCut repairs a fractional vertex with a parametric Gomory cut on the
// row of unknown i. It mints a floor-division parameter
// z = floor(r(p)/D), where D is the common denominator of the row's
// parametric part and r its coefficient-wise residue, records the
// bracketing constraints 0 <= r(p) - D*z <= D-1 in the context, and appends
// the cut slack -frac(value) + sum frac(-coef_k)*nonbasic_k >= 0. The caller
// pivots on the new row.
func (s *solver) addCut(i int) error {
	if err := s.spend(); err != nil {
		return err
	}
	r := s.rows[i]

	d := big.NewInt(1)
	for _, v := range r.aff {
		den := v.Denom()
		g := new(big.Int).GCD(nil, nil, d, den)
		d = new(big.Int).Div(new(big.Int).Mul(d, den), g)
	}
	res := make([]*big.Int, len(r.aff))
	for k, v := range r.aff {
		f := new(big.Int).Mul(v.Num(), new(big.Int).Div(d, v.Denom()))
		res[k] = f.Mod(f, d)
	}
	num, err := bigRowToInt64(res)
	if err != nil {
		return err
	}
	if !d.IsInt64() {
		return errors.New("pip: division denominator overflows int64")
	}
	den := d.Int64()

	np := &Newparm{Rank: s.nParam, Num: num, Den: den}
	s.pending = append(s.pending, np)

	// widen every affine vector with the new parameter column
	s.ctx.grow()
	for _, tr := range s.rows {
		aff := make([]*big.Rat, len(tr.aff)+1)
		copy(aff, tr.aff[:len(tr.aff)-1])
		aff[len(tr.aff)-1] = new(big.Rat)
		aff[len(tr.aff)] = tr.aff[len(tr.aff)-1]
		tr.aff = aff
	}
	s.nParam++

	// 0 <= r(p) - D*z <= D-1
	lo := make([]*big.Int, s.nParam+1)
	up := make([]*big.Int, s.nParam+1)
	for k := 0; k < s.nParam-1; k++ {
		lo[k] = big.NewInt(0)
		if k < len(res)-1 {
			lo[k] = new(big.Int).Set(res[k])
		}
		up[k] = new(big.Int).Neg(lo[k])
	}
	lo[s.nParam-1] = new(big.Int).Neg(d)
	up[s.nParam-1] = new(big.Int).Set(d)
	lo[s.nParam] = new(big.Int).Set(res[len(res)-1])
	up[s.nParam] = new(big.Int).Sub(d, big.NewInt(1))
	up[s.nParam].Sub(up[s.nParam], res[len(res)-1])
	s.ctx.add(lo)
	s.ctx.add(up)

	cut := &trow{aff: zeroRats(s.nParam + 1), m: new(big.Rat), co: make([]*big.Rat, len(s.nonbas))}
	cut.aff[s.nParam-1] = new(big.Rat).SetInt64(1)
	for k := 0; k < s.nParam-1; k++ {
		if k < len(res)-1 {
			cut.aff[k] = new(big.Rat).Neg(new(big.Rat).SetFrac(res[k], d))
		}
	}
	cut.aff[s.nParam] = new(big.Rat).Neg(new(big.Rat).SetFrac(res[len(res)-1], d))
	for k := range s.nonbas {
		cut.co[k] = fracRat(new(big.Rat).Neg(r.co[k]))
	}
	s.rows = append(s.rows, cut)
	s.colOf = append(s.colOf, -1)
	return nil
}

// leaf reads the optimum off the tableau. Any shifted unknown whose M
// coefficient differs from one has no finite optimum, so the whole region
// is reported unsolvable.
func (s *solver) leaf() (*Quast, error) {
	sols := make([][]int64, 0, s.nUnk)
	for i := 0; i < s.nUnk; i++ {
		r := s.rows[i]
		if s.colOf[i] >= 0 || r.m.Cmp(ratOne) != 0 {
			return &Quast{Newparms: s.takePending()}, nil
		}
		v := make([]int64, len(r.aff))
		for k, c := range r.aff {
			n, err := ratToInt64(c)
			if err != nil {
				return nil, err
			}
			if s.maximize {
				n = -n
			}
			v[k] = n
		}
		sols = append(sols, v)
	}
	return &Quast{Newparms: s.takePending(), HasSol: true, Sols: sols}, nil
}

func zeroRats(n int) []*big.Rat {
	r := make([]*big.Rat, n)
	for i := range r {
		r[i] = new(big.Rat)
	}
	return r
}

func cloneRats(r []*big.Rat) []*big.Rat {
	nr := make([]*big.Rat, len(r))
	for i, v := range r {
		nr[i] = new(big.Rat).Set(v)
	}
	return nr
}

// fracRat returns x - floor(x).
func fracRat(x *big.Rat) *big.Rat {
	fl := new(big.Int).Div(x.Num(), x.Denom())
	return new(big.Rat).Sub(x, new(big.Rat).SetInt(fl))
}

func bigRowToInt64(r []*big.Int) ([]int64, error) {
	out := make([]int64, len(r))
	for i, v := range r {
		if !v.IsInt64() {
			return nil, errors.New("pip: coefficient overflows int64")
		}
		out[i] = v.Int64()
	}
	return out, nil
}

func ratToInt64(x *big.Rat) (int64, error) {
	if !x.IsInt() {
		return 0, errors.New("pip: non-integral solution coefficient")
	}
	if !x.Num().IsInt64() {
		return 0, errors.New("pip: coefficient overflows int64")
	}
	return x.Num().Int64(), nil
}
