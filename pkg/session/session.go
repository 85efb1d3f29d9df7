package session

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/dematerialized-catalog/pkg/facet"
	"github.com/matst80/dematerialized-catalog/pkg/filters"
	"github.com/matst80/dematerialized-catalog/pkg/keys"
	"github.com/matst80/dematerialized-catalog/pkg/navigation"
	"github.com/matst80/dematerialized-catalog/pkg/pager"
	"github.com/matst80/dematerialized-catalog/pkg/query"
	"github.com/matst80/dematerialized-catalog/pkg/storage"
	"github.com/matst80/dematerialized-catalog/pkg/tracking"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/matst80/dematerialized-catalog/pkg/wishlist"
	"go.uber.org/zap"
)

const (
	DefaultPageSize    = 20
	DefaultDebounce    = 150 * time.Millisecond
	DefaultConcurrency = 4
)

// Catalog is the backend the session reads from.
type Catalog interface {
	Options(ctx context.Context, g types.Group) ([]types.FacetOption, error)
	List(ctx context.Context, q url.Values) (*types.ListResponse, error)
	Count(ctx context.Context, q url.Values) (int, error)
}

// View renders the listing, the pager and the filter panels.
type View interface {
	pager.View
	facet.Panel
}

type Dependencies struct {
	Catalog    Catalog
	Store      storage.Store
	View       View
	Checkboxes filters.Checkboxes
	History    navigation.History
	Tracking   tracking.Tracking
	Logger     *zap.Logger
}

type Options struct {
	PageSize    int
	Debounce    time.Duration
	Concurrency int
}

// Session holds all state of one catalog page: detected keys, page state,
// facet cache and loaded option lists.
type Session struct {
	Id string

	catalog    Catalog
	view       View
	checkboxes filters.Checkboxes
	history    navigation.History
	tracking   tracking.Tracking
	logger     *zap.Logger

	reader    *filters.Reader
	detector  *keys.Detector
	pruner    *facet.Pruner
	refresher *facet.Refresher
	pager     *pager.Pager
	debouncer *Debouncer
	wishlist  *wishlist.Wishlist

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	options map[types.Group][]types.FacetOption
	visible map[types.Group][]types.FacetOption
	// source is FromCheckboxes after a filter change and FromAddress after
	// back/forward, so neither mode needs past history entries rewritten.
	source filters.Source
}

func New(ctx context.Context, deps Dependencies, opts Options) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.History == nil {
		deps.History = navigation.NewMemoryHistory(url.Values{})
	}
	if deps.Checkboxes == nil {
		deps.Checkboxes = filters.NewStaticCheckboxes()
	}
	if deps.Tracking == nil {
		deps.Tracking = tracking.NoopTracking{}
	}

	id := uuid.New().String()
	logger = logger.With(zap.String("session", id))
	store := storage.NewBestEffort(deps.Store, logger)

	s := &Session{
		Id:         id,
		catalog:    deps.Catalog,
		view:       deps.View,
		checkboxes: deps.Checkboxes,
		history:    deps.History,
		tracking:   deps.Tracking,
		logger:     logger,
		reader:     filters.NewReader(deps.Checkboxes, deps.History, deps.History),
		detector:   keys.NewDetector(ctx, deps.Catalog, store, logger),
		pruner:     facet.NewPruner(deps.Catalog, facet.NewCache(), opts.Concurrency, logger),
		debouncer:  NewDebouncer(opts.Debounce),
		wishlist:   wishlist.New(store),
		options:    make(map[types.Group][]types.FacetOption),
		visible:    make(map[types.Group][]types.FacetOption),
	}
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	var panel facet.Panel
	var view pager.View
	if deps.View != nil {
		panel = deps.View
		view = deps.View
	}
	s.refresher = facet.NewRefresher(s.pruner, panel, deps.Checkboxes, logger)
	s.pager = pager.New(deps.Catalog, s, view, pager.Options{
		PageSize:  opts.PageSize,
		History:   deps.History,
		AfterLoad: s.afterLoad,
		Logger:    logger,
	})
	return s
}

// Start loads the option lists and the page named by the current address.
func (s *Session) Start(ctx context.Context) bool {
	s.LoadOptions(ctx)
	paging := filters.Paging(s.history.Query(), s.pager.PageSize())
	return s.pager.LoadPage(ctx, paging.Page, false)
}

// LoadOptions fetches every group's option list. A failing group gets an
// empty list.
func (s *Session) LoadOptions(ctx context.Context) {
	loaded := make(map[types.Group][]types.FacetOption, len(types.Groups))
	for _, g := range types.Groups {
		options, err := s.catalog.Options(ctx, g)
		if err != nil {
			s.logger.Warn("could not load filter options", zap.Stringer("group", g), zap.Error(err))
			options = []types.FacetOption{}
		}
		loaded[g] = options
	}
	s.mu.Lock()
	s.options = loaded
	s.mu.Unlock()
}

// ListQuery reads the current selection, discovers missing keys and builds
// the listing query.
func (s *Session) ListQuery(ctx context.Context, page, limit int) url.Values {
	selections := s.selections()
	s.ensureKeys(ctx, selections)
	return query.Build(query.Params{
		Page:        page,
		Limit:       limit,
		Selections:  selections,
		Keys:        s.detector.Keys(),
		Passthrough: filters.Passthrough(s.history.Query()),
	})
}

// DiscoverKeys detects the parameter key of every group with a selection
// and returns all known keys.
func (s *Session) DiscoverKeys(ctx context.Context) map[types.Group]string {
	s.ensureKeys(ctx, s.selections())
	return s.detector.Keys()
}

func (s *Session) selections() types.Selections {
	s.mu.RLock()
	src := s.source
	s.mu.RUnlock()
	return s.reader.ReadAllFrom(src)
}

func (s *Session) setSource(src filters.Source) {
	s.mu.Lock()
	s.source = src
	s.mu.Unlock()
}

func (s *Session) ensureKeys(ctx context.Context, selections types.Selections) {
	for _, g := range types.Groups {
		sel := selections.Get(g)
		if sel.IsEmpty() {
			continue
		}
		if _, ok := s.detector.Key(g); ok {
			continue
		}
		others := query.Filters(selections, s.detector.Keys(), g)
		if _, err := s.detector.Discover(ctx, g, sel, others); err != nil {
			s.logger.Warn("filter key discovery failed, sending all spellings", zap.Stringer("group", g), zap.Error(err))
		}
	}
}

func (s *Session) LoadPage(ctx context.Context, page int, updateHistory bool) bool {
	return s.pager.LoadPage(ctx, page, updateHistory)
}

func (s *Session) NextPage(ctx context.Context) bool {
	return s.pager.Next(ctx)
}

func (s *Session) PrevPage(ctx context.Context) bool {
	return s.pager.Prev(ctx)
}

func (s *Session) afterLoad(ctx context.Context, state types.PageState, res *types.ListResponse) {
	s.RefreshAvailability(ctx)
	s.tracking.TrackPageView(s.Id, s.selections(), state, res.Count())
}

// RefreshAvailability prunes every filter panel for the current selection.
func (s *Session) RefreshAvailability(ctx context.Context) map[types.Group][]types.FacetOption {
	s.mu.RLock()
	options := s.options
	s.mu.RUnlock()

	visible := s.refresher.Refresh(ctx, options, s.selections(), s.detector.Keys())

	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
	return visible
}

// FilterChanged schedules a reload after the debounce window. Bursts of
// changes result in one reload.
func (s *Session) FilterChanged(ctx context.Context) {
	s.debouncer.Trigger(func() {
		if s.ctx.Err() != nil {
			return
		}
		s.ApplyFilterChange(ctx)
	})
}

// ApplyFilterChange makes the checkboxes authoritative by dropping filter
// keys from the current address, then loads the first page.
func (s *Session) ApplyFilterChange(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	s.setSource(filters.FromCheckboxes)
	s.pruner.Cache().Clear()
	return s.pager.LoadPage(ctx, 1, true)
}

// ResetFilters unchecks everything, forgets detected keys and reloads the
// first page.
func (s *Session) ResetFilters(ctx context.Context) bool {
	for _, g := range types.Groups {
		s.checkboxes.Uncheck(g)
	}
	s.setSource(filters.FromCheckboxes)
	s.detector.Reset(ctx)
	s.pruner.Cache().Clear()
	s.tracking.TrackFilterReset(s.Id)
	return s.pager.LoadPage(ctx, 1, true)
}

// Navigate restores a history entry reached by back/forward navigation.
// The entry's query decides the listing until the next filter change.
func (s *Session) Navigate(ctx context.Context, entry navigation.Entry) bool {
	s.setSource(filters.FromAddress)
	return s.pager.Restore(ctx, entry)
}

func (s *Session) Back(ctx context.Context) bool {
	entry, ok := s.history.Back()
	if !ok {
		return false
	}
	return s.Navigate(ctx, entry)
}

func (s *Session) Forward(ctx context.Context) bool {
	entry, ok := s.history.Forward()
	if !ok {
		return false
	}
	return s.Navigate(ctx, entry)
}

func (s *Session) ToggleWishlist(ctx context.Context, itemId string) (bool, error) {
	added, err := s.wishlist.Toggle(ctx, itemId)
	if err != nil {
		return false, err
	}
	s.tracking.TrackWishlist(s.Id, itemId, added)
	return added, nil
}

func (s *Session) Wishlist() *wishlist.Wishlist {
	return s.wishlist
}

func (s *Session) State() types.PageState {
	return s.pager.State()
}

func (s *Session) Keys() map[types.Group]string {
	return s.detector.Keys()
}

func (s *Session) Selections() types.Selections {
	return s.selections()
}

// Visible returns the options left after the last availability refresh.
func (s *Session) Visible(g types.Group) []types.FacetOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible[g]
}

func (s *Session) FacetCache() *facet.Cache {
	return s.pruner.Cache()
}

// Close cancels pending debounced work.
func (s *Session) Close() {
	s.debouncer.Stop()
	s.cancel()
}
