package keys

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/matst80/dematerialized-catalog/pkg/query"
	"github.com/matst80/dematerialized-catalog/pkg/storage"
	"github.com/matst80/dematerialized-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	keyProbes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_key_probes_total",
		Help: "The total number of probe requests sent while discovering filter keys",
	})
	keyDiscoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_key_discoveries_total",
		Help: "The total number of finished key discoveries by outcome",
	}, []string{"outcome"})
)

// Counter returns the number of items matching a query.
type Counter interface {
	Count(ctx context.Context, q url.Values) (int, error)
}

// Candidate is a parameter key tried during discovery.
type Candidate struct {
	Key  string
	Kind types.ValueKind
}

// Candidates lists the keys to try for g in preference order: id before slug
// before name, singular before array and plural forms.
func Candidates(g types.Group) []Candidate {
	base := string(g)
	return []Candidate{
		{Key: base + "_id", Kind: types.IdValues},
		{Key: base + "_id[]", Kind: types.IdValues},
		{Key: base + "_slug", Kind: types.SlugValues},
		{Key: base + "_slug[]", Kind: types.SlugValues},
		{Key: base, Kind: types.NameValues},
		{Key: g.Plural(), Kind: types.NameValues},
		{Key: g.Plural() + "[]", Kind: types.NameValues},
	}
}

// StorageKey is the durable storage entry holding the detected key of g.
func StorageKey(g types.Group) string {
	return "detected_key_" + string(g)
}

// Detector discovers which query parameter the backend honors for each
// filter group. A group is probed at most once until Reset.
type Detector struct {
	counter Counter
	store   storage.Store
	logger  *zap.Logger
	flight  singleflight.Group
	mu      sync.RWMutex
	keys    map[types.Group]string
}

// NewDetector restores previously detected keys from store.
func NewDetector(ctx context.Context, counter Counter, store storage.Store, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	d := &Detector{
		counter: counter,
		store:   store,
		logger:  logger,
		keys:    make(map[types.Group]string),
	}
	for _, g := range types.Groups {
		key, err := store.Get(ctx, StorageKey(g))
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				logger.Warn("could not restore detected key", zap.Stringer("group", g), zap.Error(err))
			}
			continue
		}
		if key != "" {
			d.keys[g] = key
		}
	}
	return d
}

func (d *Detector) Key(g types.Group) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	key, ok := d.keys[g]
	return key, ok
}

// Keys returns a copy of all detected keys.
func (d *Detector) Keys() map[types.Group]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ret := make(map[types.Group]string, len(d.keys))
	for g, k := range d.keys {
		ret[g] = k
	}
	return ret
}

// Discover returns the key for g, probing the backend when it is not known.
// An empty sample defers discovery and returns "".
func (d *Detector) Discover(ctx context.Context, g types.Group, sample types.Selection, others url.Values) (string, error) {
	if key, ok := d.Key(g); ok {
		return key, nil
	}
	if sample.IsEmpty() {
		return "", nil
	}
	v, err, _ := d.flight.Do(string(g), func() (any, error) {
		if key, ok := d.Key(g); ok {
			return key, nil
		}
		key, err := d.probe(ctx, g, sample, others)
		if err != nil {
			return "", err
		}
		return d.fix(ctx, g, key), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (d *Detector) probe(ctx context.Context, g types.Group, sample types.Selection, others url.Values) (string, error) {
	keyProbes.Inc()
	baseline, err := d.counter.Count(ctx, others)
	if err != nil {
		keyDiscoveries.WithLabelValues("error").Inc()
		return "", fmt.Errorf("baseline probe for %s failed: %w", g, err)
	}

	answered := 0
	for _, c := range Candidates(g) {
		if len(sample.Values(c.Kind)) == 0 {
			continue
		}
		q := query.Clone(others)
		query.Apply(q, c.Key, sample)

		keyProbes.Inc()
		n, err := d.counter.Count(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			d.logger.Debug("candidate probe failed", zap.String("key", c.Key), zap.Error(err))
			continue
		}
		answered++
		if n != baseline {
			d.logger.Info("detected filter key", zap.Stringer("group", g), zap.String("key", c.Key), zap.Int("baseline", baseline), zap.Int("count", n))
			keyDiscoveries.WithLabelValues("detected").Inc()
			return c.Key, nil
		}
	}
	if answered == 0 {
		keyDiscoveries.WithLabelValues("error").Inc()
		return "", fmt.Errorf("every candidate probe for %s failed", g)
	}
	d.logger.Info("no candidate changed the result count, using group name", zap.Stringer("group", g), zap.Int("baseline", baseline))
	keyDiscoveries.WithLabelValues("fallback").Inc()
	return string(g), nil
}

// fix stores key unless another key was fixed first, and returns the key
// in effect.
func (d *Detector) fix(ctx context.Context, g types.Group, key string) string {
	d.mu.Lock()
	if existing, ok := d.keys[g]; ok {
		d.mu.Unlock()
		return existing
	}
	d.keys[g] = key
	d.mu.Unlock()

	if err := d.store.Set(ctx, StorageKey(g), key); err != nil {
		d.logger.Warn("could not persist detected key", zap.Stringer("group", g), zap.Error(err))
	}
	return key
}

// Reset forgets every detected key, in memory and in storage.
func (d *Detector) Reset(ctx context.Context) {
	d.mu.Lock()
	d.keys = make(map[types.Group]string)
	d.mu.Unlock()
	for _, g := range types.Groups {
		if err := d.store.Set(ctx, StorageKey(g), ""); err != nil {
			d.logger.Warn("could not clear detected key", zap.Stringer("group", g), zap.Error(err))
		}
	}
}
