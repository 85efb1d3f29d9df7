package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// FacetOption is one selectable value in a filter group. Subcategories carry
// the identifiers of the categories they belong to.
type FacetOption struct {
	Id       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug,omitempty"`
	CatIds   []string `json:"category_ids,omitempty"`
	CatNames []string `json:"category_names,omitempty"`
	CatSlugs []string `json:"category_slugs,omitempty"`
}

// Label is the text shown for the option.
func (o FacetOption) Label() string {
	if o.Name != "" {
		return o.Name
	}
	if o.Slug != "" {
		return o.Slug
	}
	return o.Id
}

func (o FacetOption) HasParents() bool {
	return len(o.CatIds) > 0 || len(o.CatNames) > 0 || len(o.CatSlugs) > 0
}

type rawFacetOption struct {
	Id            FlexString  `json:"id"`
	Name          string      `json:"name"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	CategoryId    FlexStrings `json:"category_id"`
	CategoryIds   FlexStrings `json:"category_ids"`
	CategoryName  FlexStrings `json:"category_name"`
	CategoryNames FlexStrings `json:"category_names"`
	CategorySlug  FlexStrings `json:"category_slug"`
	CategorySlugs FlexStrings `json:"category_slugs"`
}

// UnmarshalJSON accepts either a bare string or an object. Parent category
// fields may be scalars or arrays under singular or plural names.
func (o *FacetOption) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := sonic.Unmarshal(data, &name); err != nil {
			return err
		}
		*o = FacetOption{Name: strings.TrimSpace(name)}
		return nil
	}
	var raw rawFacetOption
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	name := raw.Name
	if name == "" {
		name = raw.Title
	}
	*o = FacetOption{
		Id:       strings.TrimSpace(string(raw.Id)),
		Name:     strings.TrimSpace(name),
		Slug:     strings.TrimSpace(raw.Slug),
		CatIds:   append(raw.CategoryId, raw.CategoryIds...),
		CatNames: append(raw.CategoryName, raw.CategoryNames...),
		CatSlugs: append(raw.CategorySlug, raw.CategorySlugs...),
	}
	return nil
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return err
	}
	*f = FlexString(data)
	return nil
}

// FlexStrings decodes a scalar or an array of scalars.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if data[0] == '[' {
		var items []FlexString
		if err := sonic.Unmarshal(data, &items); err != nil {
			return err
		}
		ret := make(FlexStrings, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(string(item)); s != "" {
				ret = append(ret, s)
			}
		}
		*f = ret
		return nil
	}
	var single FlexString
	if err := single.UnmarshalJSON(data); err != nil {
		return err
	}
	if s := strings.TrimSpace(string(single)); s != "" {
		*f = FlexStrings{s}
	} else {
		*f = nil
	}
	return nil
}

var optionListKeys = []string{"categories", "subcategories", "colors", "data", "items", "results"}

// OptionList decodes a bare array of options or an object wrapping one under
// a group's plural name, data, items or results, at any depth. Any other
// shape decodes to an empty list.
type OptionList []FacetOption

func (l *OptionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = OptionList{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var options []FacetOption
		if err := sonic.Unmarshal(data, &options); err != nil {
			return err
		}
		*l = options
	case '{':
		var wrapped map[string]json.RawMessage
		if err := sonic.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		for _, key := range optionListKeys {
			raw, ok := wrapped[key]
			if !ok {
				continue
			}
			var inner OptionList
			if err := inner.UnmarshalJSON(raw); err != nil {
				return err
			}
			if len(inner) > 0 {
				*l = inner
				return nil
			}
		}
	}
	return nil
}
