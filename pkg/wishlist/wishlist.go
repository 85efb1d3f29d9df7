package wishlist

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/matst80/dematerialized-catalog/pkg/storage"
)

const storageKey = "wishlist"

// Wishlist is the set of saved item ids, persisted as a JSON list.
type Wishlist struct {
	mu    sync.Mutex
	store storage.Store
}

func New(store storage.Store) *Wishlist {
	return &Wishlist{store: store}
}

func (w *Wishlist) Items(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx)
}

func (w *Wishlist) Contains(ctx context.Context, itemId string) (bool, error) {
	items, err := w.Items(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(items, itemId), nil
}

// Toggle adds the item when missing and removes it otherwise. It reports
// whether the item is on the wishlist afterwards.
func (w *Wishlist) Toggle(ctx context.Context, itemId string) (bool, error) {
	if itemId == "" {
		return false, errors.New("wishlist: empty item id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	items, err := w.load(ctx)
	if err != nil {
		return false, err
	}
	added := false
	if idx := slices.Index(items, itemId); idx >= 0 {
		items = slices.Delete(items, idx, idx+1)
	} else {
		items = append(items, itemId)
		added = true
	}
	data, err := sonic.MarshalString(items)
	if err != nil {
		return false, err
	}
	if err := w.store.Set(ctx, storageKey, data); err != nil {
		return false, err
	}
	return added, nil
}

func (w *Wishlist) load(ctx context.Context) ([]string, error) {
	data, err := w.store.Get(ctx, storageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if data == "" {
		return []string{}, nil
	}
	items := []string{}
	if err := sonic.UnmarshalString(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
