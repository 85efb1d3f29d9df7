package types

// Item is one clothing item in a listing.
type Item struct {
	Id          FlexString `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	Price       float64    `json:"price,omitempty"`
	ImageUrl    string     `json:"image_url,omitempty"`
	Category    string     `json:"category,omitempty"`
	Subcategory string     `json:"subcategory,omitempty"`
	Color       string     `json:"color,omitempty"`
}

// ListResponse is the listing endpoint payload.
type ListResponse struct {
	Items      []Item `json:"clothing_items"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	TotalItems int    `json:"total_items"`
}

// Count is the number of matching items, falling back to the returned
// items when the backend omits total_items.
func (r *ListResponse) Count() int {
	if r.TotalItems > 0 {
		return r.TotalItems
	}
	return len(r.Items)
}

// PageState drives the pager controls.
type PageState struct {
	CurrentPage int `json:"page"`
	TotalPages  int `json:"total_pages"`
}

func NewPageState() PageState {
	return PageState{CurrentPage: 1, TotalPages: 1}
}

func (p PageState) HasPrev() bool {
	return p.CurrentPage > 1
}

func (p PageState) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}
