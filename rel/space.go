package rel

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// A Tuple names one side of a relation space. It is either a flat block of
// dimensions with a (possibly empty) tuple name, or a wrapped pair of tuples
// written [in -> out], as used by tagged schedule constraints.
type Tuple struct {
	Name string
	Vars []string
	// Non-nil for wrapped pairs; Name and Vars are then unused.
	In, Out *Tuple
}

// FlatTuple builds an ordinary named tuple.
func FlatTuple(name string, vars ...string) *Tuple {
	return &Tuple{Name: name, Vars: vars}
}

// WrapTuple builds a wrapped pair [in -> out].
func WrapTuple(in, out *Tuple) *Tuple {
	return &Tuple{In: in, Out: out}
}

func (t *Tuple) Wrapped() bool {
	return t != nil && t.In != nil
}

// Size returns the number of columns the tuple occupies.
func (t *Tuple) Size() int {
	if t == nil {
		return 0
	}
	if t.Wrapped() {
		return t.In.Size() + t.Out.Size()
	}
	return len(t.Vars)
}

func (t *Tuple) Copy() *Tuple {
	if t == nil {
		return nil
	}
	if t.Wrapped() {
		return &Tuple{In: t.In.Copy(), Out: t.Out.Copy()}
	}
	return &Tuple{Name: t.Name, Vars: slices.Clone(t.Vars)}
}

// Equal compares tuple structure, names and arity. Dimension identifiers are
// positional and do not take part in the comparison.
func (t *Tuple) Equal(o *Tuple) bool {
	if t == nil || o == nil {
		return t == nil && o == nil
	}
	if t.Wrapped() != o.Wrapped() {
		return false
	}
	if t.Wrapped() {
		return t.In.Equal(o.In) && t.Out.Equal(o.Out)
	}
	return t.Name == o.Name && len(t.Vars) == len(o.Vars)
}

func (t *Tuple) String() string {
	if t == nil {
		return ""
	}
	if t.Wrapped() {
		return "[" + t.In.String() + " -> " + t.Out.String() + "]"
	}
	return t.Name + "[" + strings.Join(t.Vars, ", ") + "]"
}

// varNames returns the positional identifiers of the tuple's columns.
func (t *Tuple) varNames() []string {
	if t == nil {
		return nil
	}
	if t.Wrapped() {
		return append(t.In.varNames(), t.Out.varNames()...)
	}
	return slices.Clone(t.Vars)
}

// A Space fixes the variable layout of a relation: an ordered list of named
// parameters, an input tuple and an output tuple. Sets have a nil input
// tuple; parameter-only sets additionally have a zero-size output tuple.
type Space struct {
	Params []string
	In     *Tuple
	Out    *Tuple
}

// ParamSpace builds the space of a set over parameters only.
func ParamSpace(params ...string) *Space {
	return &Space{Params: params, Out: &Tuple{}}
}

// SetSpace builds the space of a set of statement instances.
func SetSpace(params []string, tuple *Tuple) *Space {
	return &Space{Params: params, Out: tuple}
}

// RelSpace builds the space of a relation.
func RelSpace(params []string, in, out *Tuple) *Space {
	return &Space{Params: params, In: in, Out: out}
}

func (s *Space) Copy() *Space {
	return &Space{Params: slices.Clone(s.Params), In: s.In.Copy(), Out: s.Out.Copy()}
}

func (s *Space) NParam() int { return len(s.Params) }
func (s *Space) NIn() int    { return s.In.Size() }
func (s *Space) NOut() int   { return s.Out.Size() }

// Width is the number of columns of a constraint row without divisions:
// the constant plus parameters, input and output dimensions.
func (s *Space) Width() int {
	return 1 + s.NParam() + s.NIn() + s.NOut()
}

// IsSet reports whether the space has no input tuple.
func (s *Space) IsSet() bool { return s.In == nil }

// IsParams reports whether the space has no tuples at all.
func (s *Space) IsParams() bool {
	return s.In == nil && s.Out.Size() == 0 && (s.Out == nil || !s.Out.Wrapped() && s.Out.Name == "")
}

// Equal compares parameters (by name and order) and both tuples.
func (s *Space) Equal(o *Space) bool {
	return slices.Equal(s.Params, o.Params) && s.In.Equal(o.In) && s.Out.Equal(o.Out)
}

// TuplesEqual compares only the tuple structure of two spaces, ignoring
// the parameter lists.
func (s *Space) TuplesEqual(o *Space) bool {
	return s.In.Equal(o.In) && s.Out.Equal(o.Out)
}

// Reverse swaps the input and output tuples.
func (s *Space) Reverse() *Space {
	if s.IsSet() {
		panic("rel: reversing a set space")
	}
	return &Space{Params: slices.Clone(s.Params), In: s.Out.Copy(), Out: s.In.Copy()}
}

// Curry reshapes [A -> B] -> C into A -> [B -> C]. The column order is
// unchanged; only the tuple structure moves.
func (s *Space) Curry() *Space {
	if s.IsSet() || !s.In.Wrapped() {
		panic("rel: currying a space without a wrapped input tuple")
	}
	return &Space{
		Params: slices.Clone(s.Params),
		In:     s.In.In.Copy(),
		Out:    WrapTuple(s.In.Out.Copy(), s.Out.Copy()),
	}
}

// Uncurry reshapes A -> [B -> C] into [A -> B] -> C.
func (s *Space) Uncurry() *Space {
	if s.IsSet() || !s.Out.Wrapped() {
		panic("rel: uncurrying a space without a wrapped output tuple")
	}
	return &Space{
		Params: slices.Clone(s.Params),
		In:     WrapTuple(s.In.Copy(), s.Out.In.Copy()),
		Out:    s.Out.Out.Copy(),
	}
}

func (s *Space) String() string {
	var b strings.Builder
	if len(s.Params) > 0 {
		fmt.Fprintf(&b, "[%s] -> ", strings.Join(s.Params, ", "))
	}
	b.WriteString("{ ")
	if s.In != nil {
		b.WriteString(s.In.String())
		b.WriteString(" -> ")
	}
	if s.Out != nil {
		b.WriteString(s.Out.String())
	}
	b.WriteString(" }")
	return b.String()
}

// MergeParams extends names with every parameter of extra that it does not
// already contain, in first-seen order.
func MergeParams(names []string, extra []string) []string {
	res := slices.Clone(names)
	for _, p := range extra {
		if !slices.Contains(res, p) {
			res = append(res, p)
		}
	}
	return res
}

// paramMap returns, for each parameter of s, its column in the names list.
// Every parameter of s must occur in names.
func (s *Space) paramMap(names []string) []int {
	m := make([]int, len(s.Params))
	for i, p := range s.Params {
		j := slices.Index(names, p)
		if j < 0 {
			panic(fmt.Sprintf("rel: parameter %q missing from aligned list", p))
		}
		m[i] = j
	}
	return m
}
