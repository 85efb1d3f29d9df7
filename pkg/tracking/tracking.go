package tracking

import (
	"github.com/matst80/dematerialized-catalog/pkg/types"
)

const (
	PageViewEvent    uint16 = 1
	FilterResetEvent uint16 = 2
	WishlistEvent    uint16 = 3
)

// Tracking receives catalog analytics events. Implementations must not
// block the caller for long and never fail it.
type Tracking interface {
	TrackPageView(sessionId string, selections types.Selections, state types.PageState, results int)
	TrackFilterReset(sessionId string)
	TrackWishlist(sessionId string, itemId string, added bool)
	Close() error
}

type BaseEvent struct {
	SessionId string `json:"session_id"`
	Context   string `json:"context,omitempty"`
	Event     uint16 `json:"event"`
}

type PageView struct {
	*BaseEvent
	Filters         map[string][]string `json:"filters,omitempty"`
	Page            int                 `json:"page"`
	TotalPages      int                 `json:"total_pages"`
	NumberOfResults int                 `json:"noi"`
}

type WishlistChange struct {
	*BaseEvent
	Item  string `json:"item"`
	Added bool   `json:"added"`
}

// FilterValues flattens a selection into group -> names for event payloads.
func FilterValues(selections types.Selections) map[string][]string {
	ret := make(map[string][]string)
	for _, g := range types.Groups {
		sel := selections.Get(g)
		if sel.IsEmpty() {
			continue
		}
		values := sel.Names.Values()
		if len(values) == 0 {
			values = sel.Slugs.Values()
		}
		if len(values) == 0 {
			values = sel.Ids.Values()
		}
		ret[string(g)] = values
	}
	return ret
}

type NoopTracking struct{}

func (NoopTracking) TrackPageView(string, types.Selections, types.PageState, int) {}
func (NoopTracking) TrackFilterReset(string)                                      {}
func (NoopTracking) TrackWishlist(string, string, bool)                           {}
func (NoopTracking) Close() error                                                 { return nil }
