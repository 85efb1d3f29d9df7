package pager

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/matst80/dematerialized-catalog/pkg/navigation"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	EmptyMessage = "No items match the selected filters."
	ErrorMessage = "Items could not be loaded right now."

	defaultPageSize = 20
)

var errEmptyResponse = errors.New("empty listing response")

var (
	pageLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_page_loads_total",
		Help: "The total number of listing pages loaded",
	})
	pageLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_page_load_errors_total",
		Help: "The total number of failed listing page loads",
	})
	staleResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stale_responses_total",
		Help: "The total number of listing responses discarded because a newer request was made",
	})
)

type Lister interface {
	List(ctx context.Context, q url.Values) (*types.ListResponse, error)
}

// QuerySource builds the listing query for a page.
type QuerySource interface {
	ListQuery(ctx context.Context, page, limit int) url.Values
}

// View shows the listing and the pager controls.
type View interface {
	RenderItems(items []types.Item)
	RenderEmpty(message string)
	UpdatePager(state types.PageState, prevDisabled, nextDisabled bool)
}

// AfterLoadFunc runs after a listing was applied.
type AfterLoadFunc func(ctx context.Context, state types.PageState, res *types.ListResponse)

type Pager struct {
	lister    Lister
	source    QuerySource
	view      View
	history   navigation.History
	pageSize  int
	afterLoad AfterLoadFunc
	logger    *zap.Logger

	applyMu    sync.Mutex
	mu         sync.RWMutex
	state      types.PageState
	generation atomic.Uint64
}

type Options struct {
	PageSize  int
	History   navigation.History
	AfterLoad AfterLoadFunc
	Logger    *zap.Logger
}

func New(lister Lister, source QuerySource, view View, opts Options) *Pager {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pager{
		lister:    lister,
		source:    source,
		view:      view,
		history:   opts.History,
		pageSize:  opts.PageSize,
		afterLoad: opts.AfterLoad,
		logger:    opts.Logger,
		state:     types.NewPageState(),
	}
}

func (p *Pager) State() types.PageState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pager) PageSize() int {
	return p.pageSize
}

// LoadPage fetches and renders one listing page. Only the most recent call
// is applied; earlier responses arriving later are dropped, and a call
// overtaken while applying stops before its next side effect. Failures
// render an error message and are never returned. It reports whether the
// result was applied.
func (p *Pager) LoadPage(ctx context.Context, page int, updateHistory bool) bool {
	if page < 1 {
		page = 1
	}
	gen := p.generation.Add(1)
	q := p.source.ListQuery(ctx, page, p.pageSize)

	res, err := p.lister.List(ctx, q)

	p.applyMu.Lock()
	defer p.applyMu.Unlock()
	if p.stale(gen, page) {
		return false
	}
	if err == nil && res == nil {
		err = errEmptyResponse
	}
	if err != nil {
		pageLoadErrors.Inc()
		p.logger.Error("could not load listing page", zap.Int("page", page), zap.Error(err))
		if p.view != nil {
			p.view.RenderEmpty(ErrorMessage)
		}
		return false
	}

	current := res.Page
	if current < 1 {
		current = page
	}
	total := res.TotalPages
	if total < 1 {
		total = 1
	}
	state := types.PageState{CurrentPage: current, TotalPages: total}
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	items := res.Items
	if len(items) > p.pageSize {
		items = items[:p.pageSize]
	}
	if p.view != nil {
		if len(items) == 0 {
			p.view.RenderEmpty(EmptyMessage)
		} else {
			p.view.RenderItems(items)
		}
		if p.stale(gen, page) {
			return false
		}
		p.view.UpdatePager(state, !state.HasPrev(), !state.HasNext())
	}
	if updateHistory && p.history != nil {
		if p.stale(gen, page) {
			return false
		}
		p.history.Push(navigation.Entry{Query: q, State: state})
	}
	if p.afterLoad != nil {
		if p.stale(gen, page) {
			return false
		}
		p.afterLoad(ctx, state, res)
	}
	pageLoads.Inc()
	return true
}

// stale reports whether a newer LoadPage call has started since gen.
func (p *Pager) stale(gen uint64, page int) bool {
	if p.generation.Load() == gen {
		return false
	}
	staleResponses.Inc()
	p.logger.Debug("discarding stale listing response", zap.Int("page", page))
	return true
}

func (p *Pager) Next(ctx context.Context) bool {
	state := p.State()
	if !state.HasNext() {
		return false
	}
	return p.LoadPage(ctx, state.CurrentPage+1, true)
}

func (p *Pager) Prev(ctx context.Context) bool {
	state := p.State()
	if !state.HasPrev() {
		return false
	}
	return p.LoadPage(ctx, state.CurrentPage-1, true)
}

// Restore reloads the page of a history entry without pushing a new one.
func (p *Pager) Restore(ctx context.Context, entry navigation.Entry) bool {
	page := entry.State.CurrentPage
	if page < 1 {
		page = 1
	}
	return p.LoadPage(ctx, page, false)
}
