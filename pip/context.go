package pip

import (
	"math/big"
)

// fmRowLimit bounds the intermediate row count of a Fourier-Motzkin run.
// Past it the test gives up and reports "feasible", which only costs an
// extra branch with an empty side.
const fmRowLimit = 4000

// A paramCtx is the set of constraints currently known to hold on the
// parameters along one path of the decision tree. Rows are integer affine
// expressions over the n parameters, constant last, each taken as >= 0.
type paramCtx struct {
	n    int
	rows [][]*big.Int
}

func newParamCtx(n int) *paramCtx {
	return &paramCtx{n: n}
}

func (c *paramCtx) clone() *paramCtx {
	nc := &paramCtx{n: c.n, rows: make([][]*big.Int, len(c.rows))}
	for i, r := range c.rows {
		nc.rows[i] = cloneBigRow(r)
	}
	return nc
}

// grow appends one parameter column, keeping the constant last.
func (c *paramCtx) grow() {
	for i, r := range c.rows {
		nr := make([]*big.Int, len(r)+1)
		copy(nr, r[:len(r)-1])
		nr[len(r)-1] = big.NewInt(0)
		nr[len(r)] = r[len(r)-1]
		c.rows[i] = nr
	}
	c.n++
}

func (c *paramCtx) addInt64(row []int64) {
	nr := make([]*big.Int, c.n+1)
	for i := range nr {
		var v int64
		if i < len(row) {
			v = row[i]
		}
		nr[i] = big.NewInt(v)
	}
	c.rows = append(c.rows, nr)
}

func (c *paramCtx) add(row []*big.Int) {
	c.rows = append(c.rows, cloneBigRow(row))
}

// feasible reports whether the context has a rational solution, by
// eliminating every parameter with Fourier-Motzkin and checking the
// remaining constant rows.
func (c *paramCtx) feasible() bool {
	return feasibleRows(c.rows, c.n)
}

// feasibleWith is feasible with one extra constraint row.
func (c *paramCtx) feasibleWith(row []*big.Int) bool {
	rows := make([][]*big.Int, 0, len(c.rows)+1)
	rows = append(rows, c.rows...)
	rows = append(rows, row)
	return feasibleRows(rows, c.n)
}

func feasibleRows(rows [][]*big.Int, n int) bool {
	for col := 0; col < n; col++ {
		var lower, upper, rest [][]*big.Int
		for _, r := range rows {
			switch r[col].Sign() {
			case 1:
				lower = append(lower, r)
			case -1:
				upper = append(upper, r)
			default:
				rest = append(rest, r)
			}
		}
		if len(rest)+len(lower)*len(upper) > fmRowLimit {
			return true
		}
		for _, l := range lower {
			for _, up := range upper {
				nr := make([]*big.Int, n+1)
				for i := range nr {
					// (-up[col])*l + l[col]*up cancels the column
					nr[i] = new(big.Int).Mul(l[i], new(big.Int).Neg(up[col]))
					nr[i].Add(nr[i], new(big.Int).Mul(up[i], l[col]))
				}
				rest = append(rest, reduceBigRow(nr))
			}
		}
		rows = rest
	}
	for _, r := range rows {
		if r[n].Sign() < 0 {
			return false
		}
	}
	return true
}

// signOf decides the sign of an affine expression over every rational point
// of the context: 1 when it is always nonnegative, -1 when it is always
// negative (at most -1 at integer points), 0 when both cases occur.
func (c *paramCtx) signOf(aff []*big.Rat) int {
	f := integerize(aff)
	if allZeroBig(f) {
		return 1
	}
	neg := make([]*big.Int, len(f))
	for i, v := range f {
		neg[i] = new(big.Int).Neg(v)
	}
	neg[len(neg)-1].Sub(neg[len(neg)-1], big.NewInt(1))
	canNeg := c.feasibleWith(neg)
	if !canNeg {
		return 1
	}
	if !c.feasibleWith(f) {
		return -1
	}
	return 0
}

// integerize scales a rational affine row to integers and divides out the
// common factor.
func integerize(aff []*big.Rat) []*big.Int {
	lcm := big.NewInt(1)
	for _, v := range aff {
		d := v.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm = new(big.Int).Div(new(big.Int).Mul(lcm, d), g)
	}
	f := make([]*big.Int, len(aff))
	for i, v := range aff {
		f[i] = new(big.Int).Mul(v.Num(), new(big.Int).Div(lcm, v.Denom()))
	}
	return reduceBigRow(f)
}

func reduceBigRow(r []*big.Int) []*big.Int {
	g := new(big.Int)
	for _, v := range r {
		g.GCD(nil, nil, g, new(big.Int).Abs(v))
	}
	if g.Cmp(big.NewInt(1)) <= 0 {
		return r
	}
	for i, v := range r {
		r[i] = new(big.Int).Div(v, g)
	}
	return r
}

func cloneBigRow(r []*big.Int) []*big.Int {
	nr := make([]*big.Int, len(r))
	for i, v := range r {
		nr[i] = new(big.Int).Set(v)
	}
	return nr
}

func allZeroBig(r []*big.Int) bool {
	for _, v := range r {
		if v.Sign() != 0 {
			return false
		}
	}
	return true
}
