package backend

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/matst80/dematerialized-catalog/pkg/types"
)

// Dataset is the catalog served by the reference server. Items refer to
// their category, subcategory and color by name.
type Dataset struct {
	Categories    []types.FacetOption `json:"categories"`
	Subcategories []types.FacetOption `json:"subcategories"`
	Colors        []types.FacetOption `json:"colors"`
	Items         []types.Item        `json:"clothing_items"`
}

func (d *Dataset) Options(g types.Group) []types.FacetOption {
	switch g {
	case types.Category:
		return d.Categories
	case types.Subcategory:
		return d.Subcategories
	case types.Color:
		return d.Colors
	}
	return nil
}

// option finds the option an item refers to in group g.
func (d *Dataset) option(g types.Group, item types.Item) (types.FacetOption, bool) {
	name := itemValue(g, item)
	if name == "" {
		return types.FacetOption{}, false
	}
	for _, o := range d.Options(g) {
		if strings.EqualFold(o.Name, name) {
			return o, true
		}
	}
	return types.FacetOption{Name: name}, true
}

func itemValue(g types.Group, item types.Item) string {
	switch g {
	case types.Category:
		return item.Category
	case types.Subcategory:
		return item.Subcategory
	case types.Color:
		return item.Color
	}
	return ""
}

// LoadDataset reads a JSON dataset file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}
	var d Dataset
	if err := sonic.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("error decoding dataset %s: %w", path, err)
	}
	return &d, nil
}

// DefaultDataset is a small catalog covering every filter group.
func DefaultDataset() *Dataset {
	return &Dataset{
		Categories: []types.FacetOption{
			{Id: "1", Name: "Jackets", Slug: "jackets"},
			{Id: "2", Name: "Bags", Slug: "bags"},
			{Id: "3", Name: "Shirts", Slug: "shirts"},
		},
		Subcategories: []types.FacetOption{
			{Id: "11", Name: "Bomber", Slug: "bomber", CatIds: []string{"1"}},
			{Id: "12", Name: "Parka", Slug: "parka", CatIds: []string{"1"}},
			{Id: "21", Name: "Tote", Slug: "tote", CatIds: []string{"2"}},
			{Id: "22", Name: "Backpack", Slug: "backpack", CatIds: []string{"2"}},
			{Id: "31", Name: "Oxford", Slug: "oxford", CatIds: []string{"3"}},
		},
		Colors: []types.FacetOption{
			{Id: "101", Name: "Black", Slug: "black"},
			{Id: "102", Name: "Red", Slug: "red"},
			{Id: "103", Name: "Blue", Slug: "blue"},
			{Id: "104", Name: "Green", Slug: "green"},
		},
		Items: []types.Item{
			{Id: "1001", Name: "Night Bomber", Brand: "Nordvik", Price: 1299, Category: "Jackets", Subcategory: "Bomber", Color: "Black"},
			{Id: "1002", Name: "Flight Bomber", Brand: "Nordvik", Price: 1199, Category: "Jackets", Subcategory: "Bomber", Color: "Blue"},
			{Id: "1003", Name: "Arctic Parka", Brand: "Fjellform", Price: 2499, Category: "Jackets", Subcategory: "Parka", Color: "Black"},
			{Id: "1004", Name: "City Parka", Brand: "Fjellform", Price: 2199, Category: "Jackets", Subcategory: "Parka", Color: "Blue"},
			{Id: "2001", Name: "Market Tote", Brand: "Sekk", Price: 399, Category: "Bags", Subcategory: "Tote", Color: "Red"},
			{Id: "2002", Name: "Canvas Tote", Brand: "Sekk", Price: 349, Category: "Bags", Subcategory: "Tote", Color: "Black"},
			{Id: "2003", Name: "Trail Backpack", Brand: "Sekk", Price: 899, Category: "Bags", Subcategory: "Backpack", Color: "Blue"},
			{Id: "3001", Name: "Classic Oxford", Brand: "Linnea", Price: 599, Category: "Shirts", Subcategory: "Oxford", Color: "Blue"},
			{Id: "3002", Name: "Weekend Oxford", Brand: "Linnea", Price: 649, Category: "Shirts", Subcategory: "Oxford", Color: "Black"},
		},
	}
}
