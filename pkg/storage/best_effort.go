package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// BestEffort wraps a durable store so that failures never reach the caller.
// Every value is mirrored in memory, which serves reads while the durable
// store is unavailable.
type BestEffort struct {
	durable Store
	local   *MemoryStore
	logger  *zap.Logger
}

func NewBestEffort(durable Store, logger *zap.Logger) *BestEffort {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BestEffort{
		durable: durable,
		local:   NewMemoryStore(),
		logger:  logger,
	}
}

func (b *BestEffort) Get(ctx context.Context, key string) (string, error) {
	if b.durable != nil {
		value, err := b.durable.Get(ctx, key)
		if err == nil {
			_ = b.local.Set(ctx, key, value)
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			b.logger.Warn("durable storage read failed, using memory", zap.String("key", key), zap.Error(err))
		}
	}
	return b.local.Get(ctx, key)
}

// Set always succeeds.
func (b *BestEffort) Set(ctx context.Context, key, value string) error {
	_ = b.local.Set(ctx, key, value)
	if b.durable == nil {
		return nil
	}
	if err := b.durable.Set(ctx, key, value); err != nil {
		b.logger.Warn("durable storage write failed, keeping value in memory", zap.String("key", key), zap.Error(err))
	}
	return nil
}
