package filters

import (
	"net/url"
	"strings"

	"github.com/gorilla/schema"
	"github.com/matst80/dematerialized-catalog/pkg/types"
)

const (
	PageKey  = "page"
	LimitKey = "limit"
)

var valueSuffixes = map[string]types.ValueKind{
	"":       types.NameValues,
	"_id":    types.IdValues,
	"_ids":   types.IdValues,
	"_slug":  types.SlugValues,
	"_slugs": types.SlugValues,
}

var spellings = buildSpellings()

func buildSpellings() map[types.Group]map[string]types.ValueKind {
	ret := make(map[types.Group]map[string]types.ValueKind, len(types.Groups))
	for _, g := range types.Groups {
		ret[g] = KeySpellings(g)
	}
	return ret
}

// KeySpellings lists every query key the reader accepts for g, mapped to the
// value set it fills.
func KeySpellings(g types.Group) map[string]types.ValueKind {
	ret := make(map[string]types.ValueKind)
	for _, base := range []string{string(g), g.Plural()} {
		for suffix, kind := range valueSuffixes {
			ret[base+suffix] = kind
			ret[base+suffix+"[]"] = kind
		}
	}
	return ret
}

// GroupOfKey returns the group a query key filters on.
func GroupOfKey(key string) (types.Group, bool) {
	for _, g := range types.Groups {
		if _, ok := spellings[g][key]; ok {
			return g, true
		}
	}
	return "", false
}

// IsRecognizedKey is true for paging keys and every filter key spelling.
func IsRecognizedKey(key string) bool {
	if key == PageKey || key == LimitKey {
		return true
	}
	_, ok := GroupOfKey(key)
	return ok
}

// ParseGroup extracts the values for g from a query string. Comma separated
// values are split.
func ParseGroup(values url.Values, g types.Group) types.Selection {
	sel := types.NewSelection()
	known, ok := spellings[g]
	if !ok {
		known = KeySpellings(g)
	}
	for key, raw := range values {
		kind, found := known[key]
		if !found {
			continue
		}
		for _, v := range raw {
			for _, part := range strings.Split(v, ",") {
				switch kind {
				case types.IdValues:
					sel.Ids.Add(part)
				case types.SlugValues:
					sel.Slugs.Add(part)
				default:
					sel.Names.Add(part)
				}
			}
		}
	}
	return sel
}

// Passthrough returns the parameters that are neither paging nor filters.
func Passthrough(values url.Values) url.Values {
	ret := url.Values{}
	for key, v := range values {
		if IsRecognizedKey(key) {
			continue
		}
		ret[key] = append([]string(nil), v...)
	}
	return ret
}

type PagingParams struct {
	Page  int `schema:"page"`
	Limit int `schema:"limit"`
}

// Paging decodes page and limit, falling back to page 1 and defaultLimit
// for missing or invalid values.
func Paging(values url.Values, defaultLimit int) PagingParams {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	params := PagingParams{}
	// conversion errors leave the field at zero, defaults apply below
	src := url.Values{}
	for _, key := range []string{PageKey, LimitKey} {
		if v := values.Get(key); v != "" {
			src.Set(key, v)
		}
	}
	_ = decoder.Decode(&params, src)
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultLimit
	}
	return params
}
