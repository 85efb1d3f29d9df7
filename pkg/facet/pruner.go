package facet

import (
	"context"
	"net/url"

	"github.com/matst80/dematerialized-catalog/pkg/query"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Counter returns the number of items matching a query.
type Counter interface {
	Count(ctx context.Context, q url.Values) (int, error)
}

// Pruner removes options that would currently yield no results.
type Pruner struct {
	counter     Counter
	cache       *Cache
	concurrency int
	logger      *zap.Logger
}

func NewPruner(counter Counter, cache *Cache, concurrency int, logger *zap.Logger) *Pruner {
	if cache == nil {
		cache = NewCache()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pruner{
		counter:     counter,
		cache:       cache,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (p *Pruner) Cache() *Cache {
	return p.cache
}

// ProbeQuery combines the filters of every other group with option as the
// only value of g.
func ProbeQuery(g types.Group, option types.FacetOption, selections types.Selections, keys map[types.Group]string) url.Values {
	q := query.Filters(selections, keys, g)
	query.ApplyGroup(q, g, keys[g], types.SelectionOf(option))
	return query.WithPaging(q, 1, 1)
}

// Available returns the options of g whose probe count is not zero, in
// their original order. Options whose probe fails are kept.
func (p *Pruner) Available(ctx context.Context, g types.Group, options []types.FacetOption, selections types.Selections, keys map[types.Group]string) []types.FacetOption {
	keep := make([]bool, len(options))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.concurrency)
	for i, option := range options {
		eg.Go(func() error {
			keep[i] = p.available(egCtx, g, option, selections, keys)
			return nil
		})
	}
	_ = eg.Wait()

	ret := make([]types.FacetOption, 0, len(options))
	for i, option := range options {
		if keep[i] {
			ret = append(ret, option)
		}
	}
	return ret
}

func (p *Pruner) available(ctx context.Context, g types.Group, option types.FacetOption, selections types.Selections, keys map[types.Group]string) bool {
	q := ProbeQuery(g, option, selections, keys)
	cacheKey := query.Encode(q)
	if available, found := p.cache.Get(cacheKey); found {
		return available
	}
	n, err := p.counter.Count(ctx, q)
	if err != nil {
		p.logger.Debug("availability probe failed, keeping option", zap.Stringer("group", g), zap.String("option", option.Label()), zap.Error(err))
		return true
	}
	available := n > 0
	p.cache.Set(cacheKey, available)
	return available
}
