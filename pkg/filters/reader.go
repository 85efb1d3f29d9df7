package filters

import (
	"sync"

	"github.com/matst80/dematerialized-catalog/pkg/navigation"
	"github.com/matst80/dematerialized-catalog/pkg/types"
)

// CheckedInput is a checked checkbox tagged for a filter group.
type CheckedInput struct {
	Value string `json:"value"`
	Id    string `json:"id,omitempty"`
	Slug  string `json:"slug,omitempty"`
}

// Checkboxes is the on-screen filter form.
type Checkboxes interface {
	Checked(g types.Group) []CheckedInput
	Uncheck(g types.Group)
}

// Reader merges filter values from checkboxes, the current address and the
// current navigation history entry.
type Reader struct {
	Checkboxes Checkboxes
	Location   navigation.Location
	History    navigation.History
}

func NewReader(checkboxes Checkboxes, location navigation.Location, history navigation.History) *Reader {
	return &Reader{
		Checkboxes: checkboxes,
		Location:   location,
		History:    history,
	}
}

// Source selects which inputs a Reader consults.
type Source int

const (
	// FromAll merges checkboxes, the address and the history entry.
	FromAll Source = iota
	// FromCheckboxes reads the filter form only.
	FromCheckboxes
	// FromAddress reads the address and the history entry only.
	FromAddress
)

// Read never mutates any of its sources.
func (r *Reader) Read(g types.Group) types.Selection {
	return r.ReadFrom(g, FromAll)
}

func (r *Reader) ReadFrom(g types.Group, src Source) types.Selection {
	sel := types.NewSelection()
	if r.Checkboxes != nil && src != FromAddress {
		for _, input := range r.Checkboxes.Checked(g) {
			sel.Names.Add(input.Value)
			sel.Ids.Add(input.Id)
			sel.Slugs.Add(input.Slug)
		}
	}
	if src == FromCheckboxes {
		return sel
	}
	if r.Location != nil {
		sel.Merge(ParseGroup(r.Location.Query(), g))
	}
	if r.History != nil {
		if entry, ok := r.History.Current(); ok {
			sel.Merge(ParseGroup(entry.Query, g))
		}
	}
	return sel
}

func (r *Reader) ReadAll() types.Selections {
	return r.ReadAllFrom(FromAll)
}

func (r *Reader) ReadAllFrom(src Source) types.Selections {
	ret := make(types.Selections, len(types.Groups))
	for _, g := range types.Groups {
		ret[g] = r.ReadFrom(g, src)
	}
	return ret
}

// StaticCheckboxes is an in-memory filter form.
type StaticCheckboxes struct {
	mu      sync.RWMutex
	checked map[types.Group][]CheckedInput
}

func NewStaticCheckboxes() *StaticCheckboxes {
	return &StaticCheckboxes{checked: make(map[types.Group][]CheckedInput)}
}

func (c *StaticCheckboxes) Check(g types.Group, inputs ...CheckedInput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked[g] = append(c.checked[g], inputs...)
}

// CheckNames checks one input per name.
func (c *StaticCheckboxes) CheckNames(g types.Group, names ...string) {
	inputs := make([]CheckedInput, 0, len(names))
	for _, name := range names {
		inputs = append(inputs, CheckedInput{Value: name})
	}
	c.Check(g, inputs...)
}

func (c *StaticCheckboxes) Checked(g types.Group) []CheckedInput {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]CheckedInput(nil), c.checked[g]...)
}

func (c *StaticCheckboxes) Uncheck(g types.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checked, g)
}

func (c *StaticCheckboxes) UncheckAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = make(map[types.Group][]CheckedInput)
}
