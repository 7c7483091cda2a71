package rel

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Parse reads a union of relations or sets from its textual notation.
func Parse(s string) (*UnionRel, error) {
	p := &parser{src: s}
	res, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing input")
	}
	return res, nil
}

// ParseUnionRel is Parse with a name matching the expected result type.
func ParseUnionRel(s string) (*UnionRel, error) { return Parse(s) }

// ParseUnionSet reads a union of sets.
func ParseUnionSet(s string) (*UnionSet, error) {
	res, err := Parse(s)
	if err != nil {
		return nil, err
	}
	for _, r := range res.Rels {
		if !r.Space.IsSet() {
			return nil, errors.Errorf("expected a set, got relation in space %s", r.Space)
		}
	}
	return res, nil
}

// ParseRel reads a relation living in a single space.
func ParseRel(s string) (*Rel, error) {
	res, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if len(res.Rels) != 1 {
		return nil, errors.Errorf("expected a single-space relation, got %d spaces", len(res.Rels))
	}
	return res.Rels[0], nil
}

// ParseSet reads a set living in a single space.
func ParseSet(s string) (*Set, error) {
	r, err := ParseRel(s)
	if err != nil {
		return nil, err
	}
	if !r.Space.IsSet() {
		return nil, errors.Errorf("expected a set, got relation in space %s", r.Space)
	}
	return r, nil
}

// ParseBasicRel reads a relation with a single disjunct.
func ParseBasicRel(s string) (*BasicRel, error) {
	r, err := ParseRel(s)
	if err != nil {
		return nil, err
	}
	if len(r.Parts) != 1 {
		return nil, errors.Errorf("expected a single disjunct, got %d", len(r.Parts))
	}
	return r.Parts[0], nil
}

// ParseMultiAff reads a multi-affine expression such as
// { S[i] -> [(i), (i + 1)] }.
func ParseMultiAff(s string) (*MultiAff, error) {
	p := &parser{src: s}
	params, err := p.parseParamPrefix()
	if err != nil {
		return nil, err
	}
	p.params = params
	if !p.eat("{") {
		return nil, p.errorf("expected '{'")
	}
	ma := &MultiAff{Params: params}
	p.skipSpace()
	if !p.startsOutputList() {
		ma.In, err = p.parseTuple()
		if err != nil {
			return nil, err
		}
		if !p.eat("->") {
			return nil, p.errorf("expected '->'")
		}
	}
	if !p.eat("[") {
		return nil, p.errorf("expected '['")
	}
	scope := append([]string{}, params...)
	scope = append(scope, ma.In.varNames()...)
	for !p.eat("]") {
		if len(ma.Affs) > 0 && !p.eat(",") {
			return nil, p.errorf("expected ',' or ']'")
		}
		if !p.eat("(") {
			return nil, p.errorf("expected '('")
		}
		row, err := p.parseExpr(scope)
		if err != nil {
			return nil, err
		}
		if !p.eat(")") {
			return nil, p.errorf("expected ')'")
		}
		ma.Affs = append(ma.Affs, row)
	}
	if !p.eat("}") {
		return nil, p.errorf("expected '}'")
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing input")
	}
	return ma, nil
}

type parser struct {
	src    string
	pos    int
	params []string
}

func (p *parser) errorf(format string, args ...interface{}) error {
	args = append(args, p.pos)
	return errors.Errorf(format+" at offset %d", args...)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// eat consumes the literal token if it is next in the input.
func (p *parser) eat(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		// do not split an identifier to match a keyword
		if isWord(tok) {
			end := p.pos + len(tok)
			if end < len(p.src) && isIdentChar(rune(p.src[end])) {
				return false
			}
		}
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *parser) peekIs(tok string) bool {
	save := p.pos
	ok := p.eat(tok)
	p.pos = save
	return ok
}

func isWord(s string) bool {
	return s != "" && unicode.IsLetter(rune(s[0]))
}

func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

func (p *parser) ident() (string, bool) {
	p.skipSpace()
	start := p.pos
	if p.pos >= len(p.src) || !unicode.IsLetter(rune(p.src[p.pos])) && p.src[p.pos] != '_' {
		return "", false
	}
	for p.pos < len(p.src) && isIdentChar(rune(p.src[p.pos])) {
		p.pos++
	}
	if id := p.src[start:p.pos]; !reservedWord(id) {
		return id, true
	}
	p.pos = start
	return "", false
}

// reservedWord reports whether id is a keyword of the constraint syntax and
// therefore never an identifier.
func reservedWord(id string) bool {
	switch id {
	case "and", "exists", "floor":
		return true
	}
	return false
}

func (p *parser) integer() (int64, bool) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && unicode.IsDigit(rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
	if err != nil {
		p.pos = start
		return 0, false
	}
	return n, true
}

// parseParamPrefix reads an optional "[n, m] ->" parameter declaration.
func (p *parser) parseParamPrefix() ([]string, error) {
	save := p.pos
	if !p.eat("[") {
		return nil, nil
	}
	var params []string
	for !p.eat("]") {
		if len(params) > 0 && !p.eat(",") {
			p.pos = save
			return nil, nil
		}
		id, ok := p.ident()
		if !ok {
			p.pos = save
			return nil, nil
		}
		params = append(params, id)
	}
	if !p.eat("->") {
		p.pos = save
		return nil, nil
	}
	return params, nil
}

func (p *parser) parseUnion() (*UnionRel, error) {
	params, err := p.parseParamPrefix()
	if err != nil {
		return nil, err
	}
	p.params = params
	if !p.eat("{") {
		return nil, p.errorf("expected '{'")
	}
	res := EmptyUnion(params...)
	if p.eat("}") {
		return res, nil
	}
	for {
		b, err := p.parsePart()
		if err != nil {
			return nil, err
		}
		res.add(FromBasic(b))
		if p.eat(";") {
			continue
		}
		if p.eat("}") {
			return res, nil
		}
		return nil, p.errorf("expected ';' or '}'")
	}
}

// startsOutputList reports whether the input continues with a bare output
// list "[(", used to detect multi-affine expressions without a domain.
func (p *parser) startsOutputList() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !p.eat("[") {
		return false
	}
	return p.peekIs("(") || p.peekIs("]")
}

// parsePart reads one disjunct: tuples followed by an optional constraint
// body, or a bare body for a parameter-only set.
func (p *parser) parsePart() (*BasicRel, error) {
	space := &Space{Params: slices.Clone(p.params)}
	if p.peekIs(":") {
		space.Out = &Tuple{}
	} else {
		t, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		if p.eat("->") {
			space.In = t
			space.Out, err = p.parseTuple()
			if err != nil {
				return nil, err
			}
		} else {
			space.Out = t
		}
	}
	b := NewBasicRel(space)
	if !p.eat(":") {
		return b, nil
	}
	if err := p.parseBody(b); err != nil {
		return nil, err
	}
	return b, nil
}

// parseTuple reads S[i, j], [i, j], [] or a wrapped pair [tuple -> tuple].
func (p *parser) parseTuple() (*Tuple, error) {
	if name, ok := p.ident(); ok {
		if !p.eat("[") {
			return nil, p.errorf("expected '[' after tuple name %q", name)
		}
		vars, err := p.parseVarList()
		if err != nil {
			return nil, err
		}
		return &Tuple{Name: name, Vars: vars}, nil
	}
	if !p.eat("[") {
		return nil, p.errorf("expected a tuple")
	}
	// distinguish a wrapped pair from a flat variable list
	save := p.pos
	if id, ok := p.ident(); ok && !p.peekIs("[") {
		_ = id
		p.pos = save
		vars, err := p.parseVarList()
		if err != nil {
			return nil, err
		}
		return &Tuple{Vars: vars}, nil
	} else if !ok && !p.peekIs("[") {
		p.pos = save
		vars, err := p.parseVarList()
		if err != nil {
			return nil, err
		}
		return &Tuple{Vars: vars}, nil
	}
	p.pos = save
	in, err := p.parseTuple()
	if err != nil {
		return nil, err
	}
	if !p.eat("->") {
		return nil, p.errorf("expected '->' in wrapped tuple")
	}
	out, err := p.parseTuple()
	if err != nil {
		return nil, err
	}
	if !p.eat("]") {
		return nil, p.errorf("expected ']' closing wrapped tuple")
	}
	return WrapTuple(in, out), nil
}

// parseVarList reads the identifiers up to the closing bracket; the opening
// bracket has already been consumed.
func (p *parser) parseVarList() ([]string, error) {
	var vars []string
	for !p.eat("]") {
		if len(vars) > 0 && !p.eat(",") {
			return nil, p.errorf("expected ',' or ']'")
		}
		id, ok := p.ident()
		if !ok {
			return nil, p.errorf("expected a dimension identifier")
		}
		vars = append(vars, id)
	}
	return vars, nil
}

// parseBody reads the constraint list of one disjunct, with an optional
// leading exists clause introducing divisions.
func (p *parser) parseBody(b *BasicRel) error {
	scope := append([]string{}, b.Space.Params...)
	scope = append(scope, b.Space.In.varNames()...)
	scope = append(scope, b.Space.Out.varNames()...)
	if p.eat("exists") {
		if !p.eat("(") {
			return p.errorf("expected '(' after exists")
		}
		for {
			name, ok := p.ident()
			if !ok {
				return p.errorf("expected a division name")
			}
			if !p.eat("=") || !p.eat("floor") || !p.eat("(") || !p.eat("(") {
				return p.errorf("expected '= floor((' in division definition")
			}
			num, err := p.parseExpr(scope)
			if err != nil {
				return err
			}
			if !p.eat(")") || !p.eat("/") {
				return p.errorf("expected ')/' in division definition")
			}
			den, ok := p.integer()
			if !ok || den <= 0 {
				return p.errorf("expected a positive division denominator")
			}
			if !p.eat(")") {
				return p.errorf("expected ')' closing division definition")
			}
			b.AddDiv(num, den)
			scope = append(scope, name)
			if p.eat(",") {
				continue
			}
			if !p.eat(":") {
				return p.errorf("expected ':' after division definitions")
			}
			break
		}
		if err := p.parseConstraints(b, scope); err != nil {
			return err
		}
		if !p.eat(")") {
			return p.errorf("expected ')' closing exists")
		}
		return nil
	}
	return p.parseConstraints(b, scope)
}

func (p *parser) parseConstraints(b *BasicRel, scope []string) error {
	p.skipSpace()
	if p.peekIs("}") || p.peekIs(";") || p.peekIs(")") {
		return nil
	}
	for {
		if err := p.parseConstraint(b, scope); err != nil {
			return err
		}
		if p.eat("and") || p.eat("&&") {
			continue
		}
		return nil
	}
}

// parseConstraint reads a chain expr relop expr relop expr ... and appends
// one row per comparison.
func (p *parser) parseConstraint(b *BasicRel, scope []string) error {
	left, err := p.parseExpr(scope)
	if err != nil {
		return err
	}
	n := 0
	for {
		var op string
		switch {
		case p.eat("<="):
			op = "<="
		case p.eat(">="):
			op = ">="
		case p.eat("<"):
			op = "<"
		case p.eat(">"):
			op = ">"
		case p.eat("="):
			op = "="
		default:
			if n == 0 {
				return p.errorf("expected a comparison operator")
			}
			return nil
		}
		right, err := p.parseExpr(scope)
		if err != nil {
			return err
		}
		var row []int64
		switch op {
		case "<=":
			row = addMul(-1, right, left)
		case "<":
			row = addMul(-1, right, left)
			row[0]--
		case ">=":
			row = addMul(-1, left, right)
		case ">":
			row = addMul(-1, left, right)
			row[0]--
		case "=":
			row = addMul(-1, left, right)
		}
		if op == "=" {
			b.AddEq(row)
		} else {
			b.AddIneq(row)
		}
		left = right
		n++
	}
}

// parseExpr reads an affine expression over the identifiers in scope and
// returns its row [const | scope columns].
func (p *parser) parseExpr(scope []string) ([]int64, error) {
	row := make([]int64, 1+len(scope))
	sign := int64(1)
	p.skipSpace()
	if p.eat("-") {
		sign = -1
	}
	for {
		term, err := p.parseTerm(scope)
		if err != nil {
			return nil, err
		}
		row = addMul(sign, row, term)
		switch {
		case p.eat("+"):
			sign = 1
		case p.eat("-"):
			sign = -1
		default:
			return row, nil
		}
	}
}

// parseTerm reads an integer, an identifier, a parenthesized expression, or
// an integer coefficient applied to one of the latter two.
func (p *parser) parseTerm(scope []string) ([]int64, error) {
	row := make([]int64, 1+len(scope))
	if n, ok := p.integer(); ok {
		p.eat("*")
		if id, ok := p.ident(); ok {
			col, err := p.lookup(id, scope)
			if err != nil {
				return nil, err
			}
			row[1+col] = n
			return row, nil
		}
		if p.eat("(") {
			inner, err := p.parseExpr(scope)
			if err != nil {
				return nil, err
			}
			if !p.eat(")") {
				return nil, p.errorf("expected ')'")
			}
			return addMul(n, row, inner), nil
		}
		row[0] = n
		return row, nil
	}
	if id, ok := p.ident(); ok {
		col, err := p.lookup(id, scope)
		if err != nil {
			return nil, err
		}
		row[1+col] = 1
		return row, nil
	}
	if p.eat("(") {
		inner, err := p.parseExpr(scope)
		if err != nil {
			return nil, err
		}
		if !p.eat(")") {
			return nil, p.errorf("expected ')'")
		}
		return inner, nil
	}
	return nil, p.errorf("expected a term")
}

func (p *parser) lookup(id string, scope []string) (int, error) {
	col := slices.Index(scope, id)
	if col < 0 {
		return 0, p.errorf("unknown identifier %q", id)
	}
	return col, nil
}
