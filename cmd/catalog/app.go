package main

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/matst80/dematerialized-catalog/pkg/api"
	"github.com/matst80/dematerialized-catalog/pkg/config"
	"github.com/matst80/dematerialized-catalog/pkg/filters"
	"github.com/matst80/dematerialized-catalog/pkg/navigation"
	"github.com/matst80/dematerialized-catalog/pkg/render"
	"github.com/matst80/dematerialized-catalog/pkg/session"
	"github.com/matst80/dematerialized-catalog/pkg/storage"
	"github.com/matst80/dematerialized-catalog/pkg/tracking"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *api.Client
	store    storage.Store
	tracking tracking.Tracking
	closers  []func() error
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	opts := []api.Option{api.WithLogger(logger)}
	if cfg.Auth.Enabled() {
		cc := &clientcredentials.Config{
			ClientID:     cfg.Auth.ClientId,
			ClientSecret: cfg.Auth.ClientSecret,
			TokenURL:     cfg.Auth.TokenUrl,
		}
		if cfg.Auth.Audience != "" {
			cc.EndpointParams = url.Values{"audience": {cfg.Auth.Audience}}
		}
		opts = append(opts, api.WithClientCredentials(cc))
	}
	a.client = api.NewClient(cfg.BaseUrl, opts...)

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = store

	a.tracking = tracking.NoopTracking{}
	if cfg.Tracking.AmqpUrl != "" {
		trk, err := tracking.NewRabbitTracking(cfg.Tracking.AmqpUrl, logger)
		if err != nil {
			logger.Warn("tracking disabled, could not connect to amqp", zap.Error(err))
		} else {
			a.tracking = trk
			a.closers = append(a.closers, trk.Close)
		}
	}
	return a, nil
}

func (a *app) openStore() (storage.Store, error) {
	switch a.cfg.Store.Kind {
	case config.StoreDisk:
		return storage.NewDiskStore(a.cfg.Store.Dir, "catalog.json")
	case config.StoreRedis:
		store, err := storage.NewRedisStore(a.cfg.Store.RedisUrl, a.cfg.Store.Prefix)
		if err != nil {
			return nil, fmt.Errorf("could not open redis store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
	return storage.NewMemoryStore(), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error closing resource", zap.Error(err))
		}
	}
}

// newSession wires a catalog session rendering to out.
func (a *app) newSession(ctx context.Context, out io.Writer, boxes filters.Checkboxes, address url.Values) (*session.Session, *render.Terminal, *navigation.MemoryHistory) {
	term := render.NewTerminal(out)
	history := navigation.NewMemoryHistory(address)
	s := session.New(ctx, session.Dependencies{
		Catalog:    a.client,
		Store:      a.store,
		View:       term,
		Checkboxes: boxes,
		History:    history,
		Tracking:   a.tracking,
		Logger:     a.logger,
	}, session.Options{
		PageSize:    a.cfg.PageSize,
		Debounce:    a.cfg.Debounce,
		Concurrency: a.cfg.Concurrency,
	})
	return s, term, history
}
