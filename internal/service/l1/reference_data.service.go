package l1_service

import (
	"context"
	"fmt"
	"mirrorbalance/internal/domain"
	"mirrorbalance/internal/logger"
	"mirrorbalance/internal/repository"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheKind names one of the reference catalogs held by the cache
type CacheKind string

const (
	CacheKindAccounts   CacheKind = "accounts"
	CacheKindShares     CacheKind = "shares"
	CacheKindEtfs       CacheKind = "etfs"
	CacheKindCurrencies CacheKind = "currencies"
)

var AllCacheKinds = []CacheKind{
	CacheKindAccounts,
	CacheKindShares,
	CacheKindEtfs,
	CacheKindCurrencies,
}

// ReferenceDataCache holds slowly changing provider data (accounts and
// instrument catalogs) for a fixed time after each load. Every kind is
// populated independently and on demand.
type ReferenceDataCache interface {
	Accounts(ctx context.Context) (domain.AccountDirectory, error)
	Shares(ctx context.Context) (domain.InstrumentCatalog, error)
	Etfs(ctx context.Context) (domain.InstrumentCatalog, error)
	Currencies(ctx context.Context) (domain.InstrumentCatalog, error)
	Catalogs(ctx context.Context) (*domain.Catalogs, error)
	Invalidate(kinds ...CacheKind)
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

type referenceDataCacheHandler struct {
	InvestRepository repository.InvestRepository
	Ttl              time.Duration

	now     func() time.Time
	mu      sync.RWMutex
	entries map[CacheKind]cacheEntry
	group   singleflight.Group
}

func NewReferenceDataCache(investRepository repository.InvestRepository, ttl time.Duration) ReferenceDataCache {
	return newReferenceDataCache(investRepository, ttl, time.Now)
}

func newReferenceDataCache(investRepository repository.InvestRepository, ttl time.Duration, now func() time.Time) *referenceDataCacheHandler {
	return &referenceDataCacheHandler{
		InvestRepository: investRepository,
		Ttl:              ttl,
		now:              now,
		entries:          map[CacheKind]cacheEntry{},
	}
}

func (h *referenceDataCacheHandler) Accounts(ctx context.Context) (domain.AccountDirectory, error) {
	v, err := h.get(ctx, CacheKindAccounts)
	if err != nil {
		return nil, err
	}
	return v.(domain.AccountDirectory), nil
}

func (h *referenceDataCacheHandler) Shares(ctx context.Context) (domain.InstrumentCatalog, error) {
	return h.catalog(ctx, CacheKindShares)
}

func (h *referenceDataCacheHandler) Etfs(ctx context.Context) (domain.InstrumentCatalog, error) {
	return h.catalog(ctx, CacheKindEtfs)
}

func (h *referenceDataCacheHandler) Currencies(ctx context.Context) (domain.InstrumentCatalog, error) {
	return h.catalog(ctx, CacheKindCurrencies)
}

// Catalogs loads all three instrument catalogs, in resolution order
func (h *referenceDataCacheHandler) Catalogs(ctx context.Context) (*domain.Catalogs, error) {
	shares, err := h.Shares(ctx)
	if err != nil {
		return nil, err
	}
	etfs, err := h.Etfs(ctx)
	if err != nil {
		return nil, err
	}
	currencies, err := h.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Catalogs{
		Shares:     shares,
		Etfs:       etfs,
		Currencies: currencies,
	}, nil
}

// Invalidate drops the given kinds, or everything when none are given.
// A population already in flight still completes and stores its result.
func (h *referenceDataCacheHandler) Invalidate(kinds ...CacheKind) {
	if len(kinds) == 0 {
		kinds = AllCacheKinds
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range kinds {
		delete(h.entries, k)
		h.group.Forget(string(k))
	}
}

func (h *referenceDataCacheHandler) catalog(ctx context.Context, kind CacheKind) (domain.InstrumentCatalog, error) {
	v, err := h.get(ctx, kind)
	if err != nil {
		return nil, err
	}
	return v.(domain.InstrumentCatalog), nil
}

// lookup returns the live entry for kind. An entry is served up to and
// including its expiry instant.
func (h *referenceDataCacheHandler) lookup(kind CacheKind) (interface{}, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.entries[kind]
	if !ok || h.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (h *referenceDataCacheHandler) get(ctx context.Context, kind CacheKind) (interface{}, error) {
	if v, ok := h.lookup(kind); ok {
		return v, nil
	}

	v, err, _ := h.group.Do(string(kind), func() (interface{}, error) {
		// another caller may have populated it while we queued
		if v, ok := h.lookup(kind); ok {
			return v, nil
		}

		v, size, err := h.load(ctx, kind)
		if err != nil {
			return nil, err
		}

		h.mu.Lock()
		h.entries[kind] = cacheEntry{
			value:     v,
			expiresAt: h.now().Add(h.Ttl),
		}
		h.mu.Unlock()

		logger.FromContext(ctx).Debugf("populated %s cache with %d entries", kind, size)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *referenceDataCacheHandler) load(ctx context.Context, kind CacheKind) (interface{}, int, error) {
	var (
		instruments []domain.Instrument
		err         error
	)

	switch kind {
	case CacheKindAccounts:
		accounts, err := h.InvestRepository.GetAccounts(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load accounts: %w", err)
		}
		directory := domain.NewAccountDirectory(accounts)
		return directory, len(directory), nil
	case CacheKindShares:
		instruments, err = h.InvestRepository.GetShares(ctx)
	case CacheKindEtfs:
		instruments, err = h.InvestRepository.GetEtfs(ctx)
	case CacheKindCurrencies:
		instruments, err = h.InvestRepository.GetCurrencies(ctx)
	default:
		return nil, 0, fmt.Errorf("unknown cache kind %q", kind)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	catalog := domain.NewInstrumentCatalog(instruments)
	return catalog, len(catalog), nil
}
