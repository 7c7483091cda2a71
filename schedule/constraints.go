// Package schedule implements the constraint store of the scheduler: an
// aggregate collecting the statement-instance domain, extra parameter
// constraints, five kinds of dependence relations, consecutivity hints and
// an outer schedule prefix. Every update is functional; the receiver is
// never modified and accessors hand out independent copies.
package schedule

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/arbelos/polysched/rel"
)

// Kind enumerates the constraint relations a Store holds.
type Kind int

const (
	// Validity constraints map domain elements i to domain elements that
	// must be scheduled after i. (Hard constraint)
	Validity Kind = iota
	// Coincidence constraints relate elements that should be scheduled
	// to the same point.
	Coincidence
	// Condition constraints relate possibly tagged elements [i -> s];
	// see ConditionalValidity.
	Condition
	// ConditionalValidity constraints are validity constraints that may
	// be violated as long as all adjacent condition constraints are
	// local within the band under construction.
	ConditionalValidity
	// Proximity constraints map domain elements i to elements that
	// should be scheduled as early as possible after i (or before i).
	// (Soft constraint)
	Proximity

	nKinds
)

func (k Kind) String() string {
	switch k {
	case Validity:
		return "validity"
	case Coincidence:
		return "coincidence"
	case Condition:
		return "condition"
	case ConditionalValidity:
		return "conditional_validity"
	case Proximity:
		return "proximity"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// tagged reports whether constraints of this kind may relate wrapped pairs
// [statement -> tag] instead of plain statement instances.
func (k Kind) tagged() bool {
	return k == Condition || k == ConditionalValidity
}

// A Store holds the constraints that a schedule on a statement-instance
// domain needs to satisfy.
//
// The context restricts the parameters. A zero-dimensional prefix means no
// outer schedule has been fixed. The intra list holds intra-statement
// consecutivity constraints; inter pairs domain elements with references
// into that list.
type Store struct {
	domain  *rel.UnionSet
	context *rel.Set
	prefix  *rel.MultiAff

	constraint [nKinds]*rel.UnionRel
	intra      rel.MultiAffList
	inter      rel.RelList
}

// OnDomain builds a store for computing a schedule on domain. The initial
// store imposes no constraints.
func OnDomain(domain *rel.UnionSet) (*Store, error) {
	if domain == nil {
		return nil, errors.New("schedule: constraint store needs a domain")
	}
	s := &Store{
		domain:  domain.Copy(),
		context: rel.Universe(rel.ParamSpace(domain.Params...)),
		prefix:  rel.ZeroMultiAff(domain.Params...),
	}
	for k := range s.constraint {
		s.constraint[k] = rel.EmptyUnion(domain.Params...)
	}
	return s, nil
}

// shallow returns a field-by-field copy whose fields may be replaced
// without touching the receiver.
func (s *Store) shallow() *Store {
	ns := *s
	return &ns
}

// Copy returns an independent copy of the store.
func (s *Store) Copy() *Store {
	ns := &Store{
		domain:  s.domain.Copy(),
		context: s.context.Copy(),
		prefix:  s.prefix.Copy(),
		intra:   s.intra.Copy(),
		inter:   s.inter.Copy(),
	}
	for k, c := range s.constraint {
		ns.constraint[k] = c.Copy()
	}
	return ns
}

// SetDomain replaces the domain.
func (s *Store) SetDomain(domain *rel.UnionSet) (*Store, error) {
	if domain == nil {
		return nil, errors.New("schedule: replacing domain with nothing")
	}
	ns := s.shallow()
	ns.domain = domain.Copy()
	return ns, nil
}

// IntersectDomain intersects the domain with domain.
func (s *Store) IntersectDomain(domain *rel.UnionSet) (*Store, error) {
	if domain == nil {
		return nil, errors.New("schedule: intersecting domain with nothing")
	}
	return s.SetDomain(s.domain.Intersect(domain))
}

// SetContext replaces the context.
func (s *Store) SetContext(context *rel.Set) (*Store, error) {
	if context == nil {
		return nil, errors.New("schedule: replacing context with nothing")
	}
	ns := s.shallow()
	ns.context = context.Copy()
	return ns, nil
}

// SetPrefix replaces the schedule prefix.
func (s *Store) SetPrefix(prefix *rel.MultiAff) (*Store, error) {
	if prefix == nil {
		return nil, errors.New("schedule: replacing prefix with nothing")
	}
	ns := s.shallow()
	ns.prefix = prefix.Copy()
	return ns, nil
}

// SetIntra replaces the intra-statement consecutivity constraints.
func (s *Store) SetIntra(intra rel.MultiAffList) (*Store, error) {
	ns := s.shallow()
	ns.intra = intra.Copy()
	return ns, nil
}

// SetInter replaces the inter-statement consecutivity constraints.
func (s *Store) SetInter(inter rel.RelList) (*Store, error) {
	ns := s.shallow()
	ns.inter = inter.Copy()
	return ns, nil
}

// Set replaces the constraints of the given kind.
func (s *Store) Set(kind Kind, c *rel.UnionRel) (*Store, error) {
	if kind < 0 || kind >= nKinds {
		return nil, errors.Errorf("schedule: unknown constraint kind %d", int(kind))
	}
	if c == nil {
		return nil, errors.Errorf("schedule: replacing %s constraints with nothing", kind)
	}
	ns := s.shallow()
	ns.constraint[kind] = c.Copy()
	return ns, nil
}

// Add unions c into the constraints of the given kind.
func (s *Store) Add(kind Kind, c *rel.UnionRel) (*Store, error) {
	if kind < 0 || kind >= nKinds {
		return nil, errors.Errorf("schedule: unknown constraint kind %d", int(kind))
	}
	if c == nil {
		return nil, errors.Errorf("schedule: adding nothing to %s constraints", kind)
	}
	return s.Set(kind, s.constraint[kind].Union(c))
}

// SetConditionalValidity replaces the condition and conditional validity
// constraints together.
func (s *Store) SetConditionalValidity(condition, validity *rel.UnionRel) (*Store, error) {
	ns, err := s.Set(Condition, condition)
	if err != nil {
		return nil, err
	}
	return ns.Set(ConditionalValidity, validity)
}

// Domain returns a copy of the domain.
func (s *Store) Domain() *rel.UnionSet { return s.domain.Copy() }

// Context returns a copy of the context.
func (s *Store) Context() *rel.Set { return s.context.Copy() }

// Prefix returns a copy of the schedule prefix.
func (s *Store) Prefix() *rel.MultiAff { return s.prefix.Copy() }

// Get returns a copy of the constraints of the given kind.
func (s *Store) Get(kind Kind) *rel.UnionRel { return s.constraint[kind].Copy() }

// Validity returns a copy of the validity constraints.
func (s *Store) Validity() *rel.UnionRel { return s.Get(Validity) }

// Coincidence returns a copy of the coincidence constraints.
func (s *Store) Coincidence() *rel.UnionRel { return s.Get(Coincidence) }

// Proximity returns a copy of the proximity constraints.
func (s *Store) Proximity() *rel.UnionRel { return s.Get(Proximity) }

// ConditionalValidity returns a copy of the conditional validity
// constraints.
func (s *Store) ConditionalValidity() *rel.UnionRel { return s.Get(ConditionalValidity) }

// ConditionalValidityCondition returns a copy of the conditions for the
// conditional validity constraints.
func (s *Store) ConditionalValidityCondition() *rel.UnionRel { return s.Get(Condition) }

// Intra returns a copy of the intra-statement consecutivity constraints.
func (s *Store) Intra() rel.MultiAffList { return s.intra.Copy() }

// Inter returns a copy of the inter-statement consecutivity constraints.
func (s *Store) Inter() rel.RelList { return s.inter.Copy() }

// applyFactorDomain applies umap to the domains of the wrapped relations
// inside the domain and range of c. That is, for each member of the form
// [D -> S] -> [E -> T], umap is applied to D and E. D is exposed by
// currying to D -> [S -> [E -> T]]; E by doing the same on the inverse.
func applyFactorDomain(c, umap *rel.UnionRel) (*rel.UnionRel, error) {
	c, err := c.Curry().ApplyDomain(umap)
	if err != nil {
		return nil, err
	}
	c = c.Uncurry()

	c, err = c.Reverse().Curry().ApplyDomain(umap)
	if err != nil {
		return nil, err
	}
	return c.Uncurry().Reverse(), nil
}

// applyConstraint applies umap to the domain and range of c. When tag is
// set, c may relate tagged elements; umap is then also applied inside the
// wrapped pairs and both images are combined.
func applyConstraint(c, umap *rel.UnionRel, tag bool) (*rel.UnionRel, error) {
	var t *rel.UnionRel
	if tag {
		t = c.Copy()
	}
	c, err := c.ApplyDomain(umap)
	if err != nil {
		return nil, err
	}
	c, err = c.ApplyRange(umap)
	if err != nil {
		return nil, err
	}
	if !tag {
		return c, nil
	}
	t, err = applyFactorDomain(t, umap)
	if err != nil {
		return nil, err
	}
	return c.Union(t), nil
}

// Apply transports the store to the image of its domain under umap.
//
// The two sides of every constraint relation are adjusted accordingly.
// Intra-statement consecutivity constraints and the schedule prefix are
// removed because they cannot be transformed by umap; the inter-statement
// constraints are removed because the intra constraints they reference are.
func (s *Store) Apply(umap *rel.UnionRel) (*Store, error) {
	if umap == nil {
		return nil, errors.New("schedule: applying nothing to constraint store")
	}
	ns := s.shallow()
	for k := range ns.constraint {
		c, err := applyConstraint(ns.constraint[k], umap, Kind(k).tagged())
		if err != nil {
			return nil, errors.Wrapf(err, "applying to %s constraints", Kind(k))
		}
		ns.constraint[k] = c
	}
	domain, err := s.domain.Apply(umap)
	if err != nil {
		return nil, errors.Wrap(err, "applying to domain")
	}
	ns.domain = domain
	ns.intra = nil
	ns.inter = nil
	ns.prefix = s.prefix.DropDims()
	return ns, nil
}

// AlignParams rewrites every field of the store to one common parameter
// list: the union, in first-seen order, of the parameters of the domain,
// the context, the constraint relations, the inter-statement constraints
// and the prefix. The intra-statement constraints are excluded; only the
// coefficients of the statement instance identifiers are taken into
// account there.
func (s *Store) AlignParams() *Store {
	names := append([]string{}, s.domain.Params...)
	names = rel.MergeParams(names, s.context.Space.Params)
	for _, c := range s.constraint {
		names = rel.MergeParams(names, c.Params)
	}
	for _, r := range s.inter {
		names = rel.MergeParams(names, r.Space.Params)
	}
	names = rel.MergeParams(names, s.prefix.Params)

	ns := s.shallow()
	for k, c := range s.constraint {
		ns.constraint[k] = c.AlignParams(names)
	}
	inter := make(rel.RelList, len(s.inter))
	for i, r := range s.inter {
		inter[i] = r.AlignParams(names)
	}
	ns.inter = inter
	ns.intra = s.intra.Copy()
	ns.prefix = s.prefix.AlignParams(names)
	ns.context = s.context.AlignParams(names)
	ns.domain = s.domain.AlignParams(names)
	return ns
}

// NBasicRels returns the total number of basic relations over the five
// constraint fields, or -1 for an invalid store.
func (s *Store) NBasicRels() int {
	if s == nil {
		return -1
	}
	n := 0
	for _, c := range s.constraint {
		n += c.NBasic()
	}
	return n
}

// NInter returns the number of inter-statement consecutivity constraints,
// or -1 for an invalid store.
func (s *Store) NInter() int {
	if s == nil {
		return -1
	}
	return len(s.inter)
}

// NRels returns the total number of relations in the constraint fields,
// inter-statement constraints included, or -1 for an invalid store.
func (s *Store) NRels() int {
	if s == nil {
		return -1
	}
	n := 0
	for _, c := range s.constraint {
		n += c.NRels()
	}
	return n + s.NInter()
}
