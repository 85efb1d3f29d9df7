package types

import "strings"

// Group is one independent axis of product filtering.
type Group string

const (
	Category    Group = "category"
	Subcategory Group = "subcategory"
	Color       Group = "color"
)

// Groups lists every filter group in the order they are processed.
var Groups = []Group{Category, Subcategory, Color}

func (g Group) String() string {
	return string(g)
}

// Plural returns the pluralized parameter base, e.g. categories.
func (g Group) Plural() string {
	switch g {
	case Category:
		return "categories"
	case Subcategory:
		return "subcategories"
	case Color:
		return "colors"
	}
	s := string(g)
	if strings.HasSuffix(s, "y") {
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}

// ValueKind tells which value set of a Selection a parameter key carries.
type ValueKind int

const (
	NameValues ValueKind = iota
	IdValues
	SlugValues
)

// IsArrayKey reports whether key uses the bracketed array-append syntax.
func IsArrayKey(key string) bool {
	return strings.HasSuffix(key, "[]")
}

// KindOfKey derives the value kind from a parameter key like category_id[]
// or colors.
func KindOfKey(key string) ValueKind {
	base := strings.TrimSuffix(key, "[]")
	switch {
	case strings.HasSuffix(base, "_id"), strings.HasSuffix(base, "_ids"):
		return IdValues
	case strings.HasSuffix(base, "_slug"), strings.HasSuffix(base, "_slugs"):
		return SlugValues
	}
	return NameValues
}
