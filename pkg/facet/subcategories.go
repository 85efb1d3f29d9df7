package facet

import (
	"strings"

	"github.com/matst80/dematerialized-catalog/pkg/types"
)

// MatchSubcategories keeps the subcategories that belong to the selected
// categories. Each subcategory is compared on the first of parent ids,
// slugs and names that both it and the selection carry. Without any
// overlap data its name is matched against the category names, ignoring
// case.
func MatchSubcategories(subcategories []types.FacetOption, selected types.Selection) []types.FacetOption {
	if selected.IsEmpty() {
		return []types.FacetOption{}
	}
	ret := make([]types.FacetOption, 0, len(subcategories))
	for _, s := range subcategories {
		if belongsTo(s, selected) {
			ret = append(ret, s)
		}
	}
	return ret
}

func belongsTo(sub types.FacetOption, selected types.Selection) bool {
	switch {
	case selected.Ids.Len() > 0 && len(sub.CatIds) > 0:
		return selected.Ids.Intersects(sub.CatIds)
	case selected.Slugs.Len() > 0 && len(sub.CatSlugs) > 0:
		return selected.Slugs.IntersectsFold(sub.CatSlugs)
	case selected.Names.Len() > 0 && len(sub.CatNames) > 0:
		return selected.Names.IntersectsFold(sub.CatNames)
	}
	label := strings.ToLower(sub.Label())
	for _, name := range selected.Names.Values() {
		if strings.Contains(label, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
