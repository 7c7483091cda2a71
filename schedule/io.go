package schedule

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/arbelos/polysched/rel"
)

// The store serializes as a single ordered YAML mapping. Fields whose
// values are (obviously) equal to their defaults are not written, and the
// reader fills every unspecified field with the same default used by
// OnDomain.

const (
	keyDomain  = "domain"
	keyContext = "context"
	keyIntra   = "intra_consecutivity"
	keyInter   = "inter_consecutivity"
	keyPrefix  = "prefix"
)

// MarshalYAML renders the store as an ordered mapping.
func (s *Store) MarshalYAML() (interface{}, error) {
	doc := yaml.MapSlice{{Key: keyDomain, Value: s.domain.String()}}
	if !s.context.IsUniverse() {
		doc = append(doc, yaml.MapItem{Key: keyContext, Value: s.context.String()})
	}
	for _, k := range []Kind{Validity, Proximity, Coincidence, Condition, ConditionalValidity} {
		if s.constraint[k].IsEmpty() {
			continue
		}
		doc = append(doc, yaml.MapItem{Key: k.String(), Value: s.constraint[k].String()})
	}
	if len(s.intra) > 0 {
		vals := make([]string, len(s.intra))
		for i, ma := range s.intra {
			vals[i] = ma.String()
		}
		doc = append(doc, yaml.MapItem{Key: keyIntra, Value: vals})
	}
	if len(s.inter) > 0 {
		vals := make([]string, len(s.inter))
		for i, r := range s.inter {
			vals[i] = r.String()
		}
		doc = append(doc, yaml.MapItem{Key: keyInter, Value: vals})
	}
	if s.prefix.Dim() > 0 {
		doc = append(doc, yaml.MapItem{Key: keyPrefix, Value: s.prefix.String()})
	}
	return doc, nil
}

// Write writes the store as a YAML document.
func (s *Store) Write(w io.Writer) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "writing constraint store")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "writing constraint store")
}

// String renders the store as a YAML document.
func (s *Store) String() string {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "invalid constraint store"
	}
	return string(data)
}

func scalarValue(key string, value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", errors.Errorf("key %q needs a constraint string, got %T", key, value)
	}
	return str, nil
}

func listValue(key string, value interface{}) ([]string, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, errors.Errorf("key %q needs a list, got %T", key, value)
	}
	strs := make([]string, len(items))
	for i, it := range items {
		str, ok := it.(string)
		if !ok {
			return nil, errors.Errorf("key %q needs a list of strings, got %T", key, it)
		}
		strs[i] = str
	}
	return strs, nil
}

// kindOf maps a document key to a constraint kind.
func kindOf(key string) (Kind, bool) {
	for k := Validity; k < nKinds; k++ {
		if k.String() == key {
			return k, true
		}
	}
	return 0, false
}

// Read reads a constraint store from a YAML document. The domain key is
// required; every other field defaults as in OnDomain. Unknown and
// duplicate keys are rejected.
func Read(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading constraint store")
	}
	return ReadString(string(data))
}

// ReadFile reads a constraint store from the YAML file at path.
func ReadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading constraint store")
	}
	defer f.Close()
	return Read(f)
}

// ReadString reads a constraint store from a YAML document.
func ReadString(doc string) (*Store, error) {
	var m yaml.MapSlice
	if err := yaml.Unmarshal([]byte(doc), &m); err != nil {
		return nil, errors.Wrap(err, "reading constraint store")
	}

	var s *Store
	pending := yaml.MapSlice{}
	seen := map[string]bool{}
	for _, item := range m {
		key, ok := item.Key.(string)
		if !ok {
			return nil, errors.Errorf("schedule: non-string key %v", item.Key)
		}
		if seen[key] {
			return nil, errors.Errorf("schedule: duplicate key %q", key)
		}
		seen[key] = true
		if key == keyDomain {
			str, err := scalarValue(key, item.Value)
			if err != nil {
				return nil, err
			}
			domain, err := rel.ParseUnionSet(str)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", key)
			}
			if s, err = OnDomain(domain); err != nil {
				return nil, err
			}
			continue
		}
		pending = append(pending, item)
	}
	if s == nil {
		return nil, errors.New("schedule: no domain specified")
	}

	for _, item := range pending {
		key := item.Key.(string)
		var err error
		switch {
		case key == keyContext:
			var str string
			var context *rel.Set
			if str, err = scalarValue(key, item.Value); err == nil {
				if context, err = rel.ParseSet(str); err == nil {
					s, err = s.SetContext(context)
				}
			}
		case key == keyIntra:
			var strs []string
			var intra rel.MultiAffList
			if strs, err = listValue(key, item.Value); err == nil {
				if intra, err = parseMultiAffs(strs); err == nil {
					s, err = s.SetIntra(intra)
				}
			}
		case key == keyInter:
			var strs []string
			var inter rel.RelList
			if strs, err = listValue(key, item.Value); err == nil {
				if inter, err = parseRels(strs); err == nil {
					s, err = s.SetInter(inter)
				}
			}
		case key == keyPrefix:
			var str string
			var prefix *rel.MultiAff
			if str, err = scalarValue(key, item.Value); err == nil {
				if prefix, err = rel.ParseMultiAff(str); err == nil {
					s, err = s.SetPrefix(prefix)
				}
			}
		default:
			kind, ok := kindOf(key)
			if !ok {
				return nil, errors.Errorf("schedule: unknown key %q", key)
			}
			var str string
			var c *rel.UnionRel
			if str, err = scalarValue(key, item.Value); err == nil {
				if c, err = rel.ParseUnionRel(str); err == nil {
					s, err = s.Set(kind, c)
				}
			}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", key)
		}
	}
	return s, nil
}

func parseMultiAffs(strs []string) (rel.MultiAffList, error) {
	l := make(rel.MultiAffList, len(strs))
	for i, str := range strs {
		ma, err := rel.ParseMultiAff(str)
		if err != nil {
			return nil, err
		}
		l[i] = ma
	}
	return l, nil
}

func parseRels(strs []string) (rel.RelList, error) {
	l := make(rel.RelList, len(strs))
	for i, str := range strs {
		r, err := rel.ParseRel(str)
		if err != nil {
			return nil, err
		}
		l[i] = r
	}
	return l, nil
}
