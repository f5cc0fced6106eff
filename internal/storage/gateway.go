// Package storage persists month stores, the session and the credential
// registry to a key-value medium.
//
// Every failure returned by the Gateway wraps core.ErrPersistence, including
// records that no longer match their schema.
package storage

import (
	"context"
	"fmt"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/monthstore"
)

// Gateway is the only I/O boundary of the tracker.
type Gateway struct {
	kv     KV
	years  *cache.LRU[int, monthstore.Snapshot]
	logger *log.Logger
}

// NewGateway wraps kv. Decoded years are memoised; snapshots are immutable
// so sharing them is safe.
func NewGateway(kv KV, opts ...Option) *Gateway {
	return &Gateway{
		kv:     kv,
		years:  cache.NewLRU[int, monthstore.Snapshot](16, 10*time.Minute),
		logger: newOptions(opts).logger,
	}
}

// LoadMonthStore returns the persisted months of year. found is false when
// nothing was stored yet.
func (g *Gateway) LoadMonthStore(ctx context.Context, year int) (snap monthstore.Snapshot, found bool, err error) {
	if s, ok := g.years.Get(year); ok {
		return s, true, nil
	}
	key := MonthStoreKey(year)
	data, found, err := g.kv.Get(ctx, key)
	if err != nil {
		return monthstore.Snapshot{}, false, fmt.Errorf("%w: read %s: %w", core.ErrPersistence, key, err)
	}
	if !found {
		return monthstore.Snapshot{}, false, nil
	}
	snap, err = decodeYear(year, data)
	if err != nil {
		return monthstore.Snapshot{}, false, fmt.Errorf("%w: decode %s: %w", core.ErrPersistence, key, err)
	}
	g.years.Set(year, snap)
	return snap, true, nil
}

// SaveMonthStore writes the months of year held in snap, replacing what
// was stored.
func (g *Gateway) SaveMonthStore(ctx context.Context, year int, snap monthstore.Snapshot) error {
	key := MonthStoreKey(year)
	data, err := encodeYear(year, snap)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", core.ErrPersistence, key, err)
	}
	if err := g.kv.Put(ctx, key, data); err != nil {
		g.years.Delete(year)
		return fmt.Errorf("%w: write %s: %w", core.ErrPersistence, key, err)
	}
	g.years.Set(year, snap.Year(year))
	g.logger.DebugContext(ctx, "Month store saved",
		log.FieldOperation, log.OpPersist, log.FieldYear, year, "key", key, "bytes", len(data))
	return nil
}

// LoadSession returns the persisted identity, or nil when signed out.
func (g *Gateway) LoadSession(ctx context.Context) (*core.Identity, error) {
	data, found, err := g.kv.Get(ctx, SessionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrPersistence, SessionKey, err)
	}
	if !found {
		return nil, nil
	}
	id, err := decodeIdentity(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", core.ErrPersistence, SessionKey, err)
	}
	return &id, nil
}

func (g *Gateway) SaveSession(ctx context.Context, id core.Identity) error {
	data, err := encodeIdentity(id)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", core.ErrPersistence, SessionKey, err)
	}
	if err := g.kv.Put(ctx, SessionKey, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", core.ErrPersistence, SessionKey, err)
	}
	return nil
}

func (g *Gateway) ClearSession(ctx context.Context) error {
	if err := g.kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("%w: delete %s: %w", core.ErrPersistence, SessionKey, err)
	}
	return nil
}

// LoadCredentialRegistry returns the registry, empty when none was stored.
func (g *Gateway) LoadCredentialRegistry(ctx context.Context) (core.Registry, error) {
	data, found, err := g.kv.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrPersistence, UsersKey, err)
	}
	if !found {
		return core.Registry{}, nil
	}
	r, err := decodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", core.ErrPersistence, UsersKey, err)
	}
	return r, nil
}

func (g *Gateway) SaveCredentialRegistry(ctx context.Context, r core.Registry) error {
	data, err := encodeRegistry(r)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", core.ErrPersistence, UsersKey, err)
	}
	if err := g.kv.Put(ctx, UsersKey, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", core.ErrPersistence, UsersKey, err)
	}
	return nil
}
