package instagram

import (
	"context"
	"sync"
	"time"
)

// TokenHolder keeps the current access token; the refresh flow swaps it in place.
type TokenHolder struct {
	mu    sync.RWMutex
	token string
}

func NewTokenHolder(token string) *TokenHolder {
	return &TokenHolder{token: token}
}

func (h *TokenHolder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *TokenHolder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

type mediaLister interface {
	Media(ctx context.Context, token string, limit int) ([]Media, error)
}

type feedRecord struct {
	expiresAt time.Time
	items     []Media
}

// Feed memoizes recent media per limit in process memory. Entries vanish
// with the process.
type Feed struct {
	client mediaLister
	tokens *TokenHolder
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	records map[int]feedRecord
}

func NewFeed(client mediaLister, tokens *TokenHolder, ttl time.Duration) *Feed {
	return &Feed{
		client:  client,
		tokens:  tokens,
		ttl:     ttl,
		now:     time.Now,
		records: make(map[int]feedRecord),
	}
}

// Items returns up to limit posts. A fresh memo entry is served without I/O;
// when the upstream call fails a stale entry is served instead. stale reports
// whether the returned items are past their expiry.
func (f *Feed) Items(ctx context.Context, limit int) (items []Media, stale bool, err error) {
	record, ok := f.lookup(limit)
	if ok && f.now().Before(record.expiresAt) {
		return record.items, false, nil
	}

	fetched, err := f.client.Media(ctx, f.tokens.Get(), limit)
	if err != nil {
		if ok {
			return record.items, true, nil
		}
		return nil, false, err
	}
	f.store(limit, fetched)
	return fetched, false, nil
}

// Reset drops every memo entry.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = make(map[int]feedRecord)
}

func (f *Feed) lookup(limit int) (feedRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[limit]
	return record, ok
}

func (f *Feed) store(limit int, items []Media) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[limit] = feedRecord{expiresAt: f.now().Add(f.ttl), items: items}
}
