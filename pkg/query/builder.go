package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/matst80/dematerialized-catalog/pkg/filters"
	"github.com/matst80/dematerialized-catalog/pkg/types"
)

// Params is everything a listing query is built from.
type Params struct {
	Page        int
	Limit       int
	Selections  types.Selections
	Keys        map[types.Group]string
	Passthrough url.Values
}

// Apply writes the selection under a detected key. Array keys get one entry
// per value, singular keys a comma separated value.
func Apply(values url.Values, key string, sel types.Selection) {
	list := sel.Values(types.KindOfKey(key))
	if len(list) == 0 {
		return
	}
	if types.IsArrayKey(key) {
		for _, v := range list {
			values.Add(key, v)
		}
		return
	}
	values.Set(key, strings.Join(list, ","))
}

// ApplyRedundant writes the selection under the plain, _slug and _id
// spellings for groups whose key is not known yet.
func ApplyRedundant(values url.Values, g types.Group, sel types.Selection) {
	Apply(values, string(g), sel)
	Apply(values, string(g)+"_slug", sel)
	Apply(values, string(g)+"_id", sel)
}

// ApplyGroup uses key when set and the redundant spellings otherwise.
func ApplyGroup(values url.Values, g types.Group, key string, sel types.Selection) {
	if sel.IsEmpty() {
		return
	}
	if key == "" {
		ApplyRedundant(values, g, sel)
		return
	}
	Apply(values, key, sel)
}

// Filters builds the filter parameters of every group except the excluded
// ones.
func Filters(selections types.Selections, keys map[types.Group]string, exclude ...types.Group) url.Values {
	values := url.Values{}
	for _, g := range types.Groups {
		if slices.Contains(exclude, g) {
			continue
		}
		ApplyGroup(values, g, keys[g], selections.Get(g))
	}
	return values
}

func Build(p Params) url.Values {
	values := url.Values{}
	for key, v := range p.Passthrough {
		if filters.IsRecognizedKey(key) {
			continue
		}
		values[key] = append([]string(nil), v...)
	}
	for key, v := range Filters(p.Selections, p.Keys) {
		values[key] = v
	}
	return WithPaging(values, p.Page, p.Limit)
}

// WithPaging sets page and limit, clamping both to at least 1.
func WithPaging(values url.Values, page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	values.Set(filters.PageKey, strconv.Itoa(page))
	values.Set(filters.LimitKey, strconv.Itoa(limit))
	return values
}

// Clone copies values deeply.
func Clone(values url.Values) url.Values {
	ret := make(url.Values, len(values))
	for k, v := range values {
		ret[k] = append([]string(nil), v...)
	}
	return ret
}

// Encode renders a canonical query string: page and limit first, then the
// remaining keys in sorted order. Equal inputs always give equal strings.
func Encode(values url.Values) string {
	var b strings.Builder
	write := func(key string) {
		for _, v := range values[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	write(filters.PageKey)
	write(filters.LimitKey)

	keys := make([]string, 0, len(values))
	for k := range values {
		if k == filters.PageKey || k == filters.LimitKey {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		write(k)
	}
	return b.String()
}
