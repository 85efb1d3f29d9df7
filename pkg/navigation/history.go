package navigation

import (
	"net/url"
	"sync"

	"github.com/matst80/dematerialized-catalog/pkg/types"
)

// Entry is one navigation history record: the full listing query and the
// page state it produced.
type Entry struct {
	Query url.Values      `json:"query"`
	State types.PageState `json:"state"`
}

func (e Entry) clone() Entry {
	return Entry{Query: cloneValues(e.Query), State: e.State}
}

// Location exposes the query string of the current address.
type Location interface {
	Query() url.Values
}

// History is the browser navigation stack.
type History interface {
	Location
	Push(entry Entry)
	Replace(entry Entry)
	Current() (Entry, bool)
	Back() (Entry, bool)
	Forward() (Entry, bool)
}

// StaticLocation is a fixed address, used when no history is kept.
type StaticLocation url.Values

func (l StaticLocation) Query() url.Values {
	return cloneValues(url.Values(l))
}

// MemoryHistory keeps the navigation stack in memory and supports
// back/forward.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries []Entry
	index   int
}

// NewMemoryHistory starts a history at the given address.
func NewMemoryHistory(initial url.Values) *MemoryHistory {
	return &MemoryHistory{
		entries: []Entry{{Query: cloneValues(initial), State: types.NewPageState()}},
		index:   0,
	}
}

// Push drops any forward entries and appends entry.
func (h *MemoryHistory) Push(entry Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], entry.clone())
	h.index = len(h.entries) - 1
}

func (h *MemoryHistory) Replace(entry Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		h.entries = []Entry{entry.clone()}
		h.index = 0
		return
	}
	h.entries[h.index] = entry.clone()
}

func (h *MemoryHistory) Current() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[h.index].clone(), true
}

func (h *MemoryHistory) Query() url.Values {
	entry, ok := h.Current()
	if !ok {
		return url.Values{}
	}
	return entry.Query
}

func (h *MemoryHistory) Back() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return Entry{}, false
	}
	h.index--
	return h.entries[h.index].clone(), true
}

func (h *MemoryHistory) Forward() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return Entry{}, false
	}
	h.index++
	return h.entries[h.index].clone(), true
}

func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

func cloneValues(v url.Values) url.Values {
	ret := make(url.Values, len(v))
	for k, values := range v {
		ret[k] = append([]string(nil), values...)
	}
	return ret
}
