package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSetIgnoresBlanksAndDuplicates(t *testing.T) {
	s := NewStringSet("Jackets", " Jackets ", "", "  ", "Bags")
	assert.Equal(t, []string{"Bags", "Jackets"}, s.Values())
}

func TestKindOfKey(t *testing.T) {
	cases := map[string]ValueKind{
		"category":            NameValues,
		"categories[]":        NameValues,
		"category_id":         IdValues,
		"category_id[]":       IdValues,
		"color_ids":           IdValues,
		"category_slug":       SlugValues,
		"subcategory_slugs[]": SlugValues,
	}
	for key, want := range cases {
		if got := KindOfKey(key); got != want {
			t.Errorf("Expected kind %d for %s, got %d", want, key, got)
		}
	}
	assert.True(t, IsArrayKey("colors[]"))
	assert.False(t, IsArrayKey("colors"))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "categories", Category.Plural())
	assert.Equal(t, "subcategories", Subcategory.Plural())
	assert.Equal(t, "colors", Color.Plural())
	assert.Equal(t, "sizes", Group("size").Plural())
}

func TestSelectionsFingerprintIsOrderIndependent(t *testing.T) {
	a := Selections{Category: NewSelection()}
	a[Category].Names.Add("Jackets")
	a[Category].Names.Add("Coats")

	b := Selections{Category: NewSelection()}
	b[Category].Names.Add("Coats")
	b[Category].Names.Add("Jackets")

	assert.True(t, a.Equal(b))

	b[Category].Ids.Add("7")
	assert.False(t, a.Equal(b))
}

func TestSelectionsGetMissingGroup(t *testing.T) {
	s := Selections{}
	sel := s.Get(Color)
	assert.True(t, sel.IsEmpty())
	sel.Names.Add("Red")
}

func TestIntersectsFold(t *testing.T) {
	s := NewStringSet("Jackets")
	assert.True(t, s.IntersectsFold([]string{"jackets"}))
	assert.False(t, s.IntersectsFold([]string{"bags"}))
}

func TestPageState(t *testing.T) {
	p := NewPageState()
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())
	p = PageState{CurrentPage: 2, TotalPages: 3}
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
}
