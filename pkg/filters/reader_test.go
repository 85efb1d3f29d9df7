package filters

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matst80/dematerialized-catalog/pkg/navigation"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestParseGroupKeySpellings(t *testing.T) {
	values := url.Values{
		"category":        {"Jackets,Coats"},
		"category_id":     {"7"},
		"categories[]":    {"Knitwear"},
		"category_slug[]": {"bombers", " "},
		"category_ids":    {"8,9"},
		"color":           {"Red"},
		"page":            {"2"},
	}
	sel := ParseGroup(values, types.Category)

	assert.Equal(t, []string{"Coats", "Jackets", "Knitwear"}, sel.Names.Values())
	assert.Equal(t, []string{"7", "8", "9"}, sel.Ids.Values())
	assert.Equal(t, []string{"bombers"}, sel.Slugs.Values())
}

func TestSubcategoryKeysDoNotLeakIntoCategory(t *testing.T) {
	values := url.Values{"subcategory": {"Bomber"}, "subcategories[]": {"Parka"}}
	assert.True(t, ParseGroup(values, types.Category).IsEmpty())
	assert.Equal(t, []string{"Bomber", "Parka"}, ParseGroup(values, types.Subcategory).Names.Values())
}

func TestReaderMergesAllSources(t *testing.T) {
	boxes := NewStaticCheckboxes()
	boxes.Check(types.Category, CheckedInput{Value: "Jackets", Id: "7", Slug: "jackets"})

	history := navigation.NewMemoryHistory(url.Values{"category_slug": {"coats"}})
	location := navigation.StaticLocation(url.Values{"category": {"Jackets,Knitwear"}})

	r := NewReader(boxes, location, history)
	sel := r.Read(types.Category)

	assert.Equal(t, []string{"Jackets", "Knitwear"}, sel.Names.Values())
	assert.Equal(t, []string{"7"}, sel.Ids.Values())
	assert.Equal(t, []string{"coats", "jackets"}, sel.Slugs.Values())
	assert.True(t, r.Read(types.Color).IsEmpty())
}

func TestReaderIsIdempotent(t *testing.T) {
	boxes := NewStaticCheckboxes()
	boxes.CheckNames(types.Color, "Red", "Blue", "Red")
	history := navigation.NewMemoryHistory(url.Values{"colors[]": {"Green"}, "category_id": {"3"}})
	r := NewReader(boxes, history, history)

	first := r.ReadAll()
	second := r.ReadAll()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Expected identical reads, diff: %s", diff)
	}
	assert.Equal(t, []string{"Blue", "Green", "Red"}, first[types.Color].Names.Values())
	assert.Len(t, boxes.Checked(types.Color), 3)
}

func TestUncheck(t *testing.T) {
	boxes := NewStaticCheckboxes()
	boxes.CheckNames(types.Subcategory, "Bomber")
	boxes.Uncheck(types.Subcategory)
	assert.Empty(t, boxes.Checked(types.Subcategory))
}

func TestIsRecognizedKey(t *testing.T) {
	for _, key := range []string{"page", "limit", "category", "colors[]", "subcategory_slug", "category_ids[]"} {
		assert.True(t, IsRecognizedKey(key), key)
	}
	for _, key := range []string{"sort", "utm_source", "q"} {
		assert.False(t, IsRecognizedKey(key), key)
	}
}

func TestPassthrough(t *testing.T) {
	values := url.Values{"sort": {"price"}, "page": {"3"}, "color": {"Red"}}
	assert.Equal(t, url.Values{"sort": {"price"}}, Passthrough(values))
}

func TestPaging(t *testing.T) {
	p := Paging(url.Values{"page": {"3"}, "limit": {"12"}}, 20)
	assert.Equal(t, PagingParams{Page: 3, Limit: 12}, p)

	p = Paging(url.Values{"page": {"zero"}}, 20)
	assert.Equal(t, PagingParams{Page: 1, Limit: 20}, p)

	p = Paging(url.Values{"page": {"-4"}, "limit": {"0"}}, 20)
	assert.Equal(t, PagingParams{Page: 1, Limit: 20}, p)
}
