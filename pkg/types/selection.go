package types

import (
	"slices"
	"strings"
)

// StringSet is an unordered set of non-empty strings.
type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts a trimmed value, blanks are ignored.
func (s StringSet) Add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	s[value] = struct{}{}
}

func (s StringSet) Has(value string) bool {
	_, ok := s[value]
	return ok
}

func (s StringSet) Len() int {
	return len(s)
}

// Values returns the members sorted, so callers get a stable order.
func (s StringSet) Values() []string {
	ret := make([]string, 0, len(s))
	for v := range s {
		ret = append(ret, v)
	}
	slices.Sort(ret)
	return ret
}

func (s StringSet) Merge(other StringSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

func (s StringSet) Intersects(values []string) bool {
	for _, v := range values {
		if s.Has(v) {
			return true
		}
	}
	return false
}

// IntersectsFold is Intersects with case-insensitive comparison.
func (s StringSet) IntersectsFold(values []string) bool {
	for member := range s {
		for _, v := range values {
			if strings.EqualFold(member, strings.TrimSpace(v)) {
				return true
			}
		}
	}
	return false
}

func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Selection holds the active values of one filter group.
type Selection struct {
	Names StringSet
	Ids   StringSet
	Slugs StringSet
}

func NewSelection() Selection {
	return Selection{
		Names: StringSet{},
		Ids:   StringSet{},
		Slugs: StringSet{},
	}
}

// SelectionOf builds a selection holding a single option.
func SelectionOf(option FacetOption) Selection {
	s := NewSelection()
	s.Names.Add(option.Name)
	s.Ids.Add(option.Id)
	s.Slugs.Add(option.Slug)
	return s
}

func (s Selection) IsEmpty() bool {
	return s.Names.Len() == 0 && s.Ids.Len() == 0 && s.Slugs.Len() == 0
}

func (s Selection) Merge(other Selection) {
	s.Names.Merge(other.Names)
	s.Ids.Merge(other.Ids)
	s.Slugs.Merge(other.Slugs)
}

func (s Selection) Equal(other Selection) bool {
	return s.Names.Equal(other.Names) && s.Ids.Equal(other.Ids) && s.Slugs.Equal(other.Slugs)
}

// Values returns the sorted values of the requested kind.
func (s Selection) Values(kind ValueKind) []string {
	switch kind {
	case IdValues:
		return s.Ids.Values()
	case SlugValues:
		return s.Slugs.Values()
	}
	return s.Names.Values()
}

// String is a stable representation used for fingerprints and logs.
func (s Selection) String() string {
	return "names=" + strings.Join(s.Names.Values(), ",") +
		";ids=" + strings.Join(s.Ids.Values(), ",") +
		";slugs=" + strings.Join(s.Slugs.Values(), ",")
}

// Selections maps each group to its active values.
type Selections map[Group]Selection

// Get never returns a nil-set selection.
func (s Selections) Get(g Group) Selection {
	if sel, ok := s[g]; ok && sel.Names != nil {
		return sel
	}
	return NewSelection()
}

// Fingerprint changes whenever any group's selection changes.
func (s Selections) Fingerprint() string {
	var b strings.Builder
	for _, g := range Groups {
		b.WriteString(string(g))
		b.WriteByte('{')
		b.WriteString(s.Get(g).String())
		b.WriteByte('}')
	}
	return b.String()
}

func (s Selections) Equal(other Selections) bool {
	return s.Fingerprint() == other.Fingerprint()
}
