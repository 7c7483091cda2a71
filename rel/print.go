package rel

import (
	"fmt"
	"strings"
)

// The textual notation mirrors the constraint language the schedule
// documents are written in:
//
//	[n] -> { S[i] -> T[j] : i >= 0 and -i + n - 1 >= 0 }
//
// Unions of spaces are separated by semicolons, existential divisions are
// introduced by an exists clause, and multi-affine expressions list their
// outputs in parentheses.

func printParams(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "[" + strings.Join(params, ", ") + "] -> "
}

// Print renders a relation or set, including its parameter prefix.
func Print(r *Rel) string {
	if len(r.Parts) == 0 {
		return printParams(r.Space.Params) + "{ }"
	}
	return printParams(r.Space.Params) + printBody(r)
}

// printBody renders the braces and disjuncts of a relation without the
// parameter prefix.
func printBody(r *Rel) string {
	var parts []string
	for _, b := range r.Parts {
		parts = append(parts, printBasic(b))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func printBasic(b *BasicRel) string {
	var sb strings.Builder
	names := columnNames(b)
	if b.Space.In != nil {
		sb.WriteString(b.Space.In.String())
		sb.WriteString(" -> ")
	}
	if b.Space.Out != nil && (b.Space.Out.Size() > 0 || b.Space.Out.Wrapped() || b.Space.Out.Name != "" || b.Space.In != nil) {
		sb.WriteString(b.Space.Out.String())
	}
	if len(b.Eq) == 0 && len(b.Ineq) == 0 && len(b.Divs) == 0 {
		if b.Space.IsParams() {
			sb.WriteString(":")
		}
		return strings.TrimSpace(sb.String())
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(": ")
	sb.WriteString(printConstraints(b, names))
	return sb.String()
}

func printConstraints(b *BasicRel, names []string) string {
	var cons []string
	for _, row := range b.Eq {
		cons = append(cons, printAffine(row, names)+" = 0")
	}
	for _, row := range b.Ineq {
		cons = append(cons, printAffine(row, names)+" >= 0")
	}
	body := strings.Join(cons, " and ")
	if len(b.Divs) == 0 {
		return body
	}
	var defs []string
	w := b.Space.Width()
	for i, d := range b.Divs {
		defs = append(defs, fmt.Sprintf("%s = floor((%s)/%d)",
			names[w-1+i], printAffine(d.Num[:w+i], names), d.Den))
	}
	return "exists (" + strings.Join(defs, ", ") + ": " + body + ")"
}

// columnNames returns the identifier of each non-constant column of b:
// parameters, input dims, output dims, then divisions named e0, e1, ...
func columnNames(b *BasicRel) []string {
	names := append([]string{}, b.Space.Params...)
	names = append(names, b.Space.In.varNames()...)
	names = append(names, b.Space.Out.varNames()...)
	for i := range b.Divs {
		names = append(names, fmt.Sprintf("e%d", i))
	}
	return names
}

// printAffine renders a constraint row [const | columns...] as an affine
// expression, constant term last.
func printAffine(row []int64, names []string) string {
	var sb strings.Builder
	first := true
	writeTerm := func(c int64, name string) {
		if c == 0 {
			return
		}
		switch {
		case first && c < 0:
			sb.WriteString("-")
		case !first && c < 0:
			sb.WriteString(" - ")
		case !first:
			sb.WriteString(" + ")
		}
		if a := absInt(c); name == "" {
			fmt.Fprintf(&sb, "%d", a)
		} else if a == 1 {
			sb.WriteString(name)
		} else {
			fmt.Fprintf(&sb, "%d%s", a, name)
		}
		first = false
	}
	for i := 1; i < len(row); i++ {
		writeTerm(row[i], names[i-1])
	}
	writeTerm(row[0], "")
	if first {
		return "0"
	}
	return sb.String()
}

// printMultiAff renders a multi-affine expression such as
// { S[i] -> [(i), (i + 1)] }.
func printMultiAff(ma *MultiAff) string {
	names := append([]string{}, ma.Params...)
	names = append(names, ma.In.varNames()...)
	var exprs []string
	for _, row := range ma.Affs {
		exprs = append(exprs, "("+printAffine(row, names)+")")
	}
	var sb strings.Builder
	sb.WriteString(printParams(ma.Params))
	sb.WriteString("{ ")
	if ma.In != nil {
		sb.WriteString(ma.In.String())
		sb.WriteString(" -> ")
	}
	sb.WriteString("[" + strings.Join(exprs, ", ") + "]")
	sb.WriteString(" }")
	return sb.String()
}
