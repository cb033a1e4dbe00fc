package cache

import (
	"sync"
	"time"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
)

type lockTotal struct {
	amount    uint64
	timestamp time.Time
}

// LedgerCache remembers ledger metadata seen so far and the summed lock
// totals per owner and ledger. Lock totals expire after ttl and are dropped
// for an owner on Invalidate.
type LedgerCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	ledgers map[string]models.LedgerMeta
	locks   map[string]map[string]lockTotal
	now     func() time.Time
}

func NewLedgerCache(ttl time.Duration) *LedgerCache {
	return &LedgerCache{
		ttl:     ttl,
		ledgers: make(map[string]models.LedgerMeta),
		locks:   make(map[string]map[string]lockTotal),
		now:     time.Now,
	}
}

func (c *LedgerCache) Ledger(id string) (models.LedgerMeta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.ledgers[id]
	return meta, ok
}

func (c *LedgerCache) RememberLedger(meta models.LedgerMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledgers[meta.Ledger] = meta
}

func (c *LedgerCache) Locked(owner, ledger string) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total, ok := c.locks[owner][ledger]
	if !ok || c.now().Sub(total.timestamp) > c.ttl {
		return 0, false
	}
	return total.amount, true
}

func (c *LedgerCache) SetLocked(owner, ledger string, amount uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[owner] == nil {
		c.locks[owner] = make(map[string]lockTotal)
	}
	c.locks[owner][ledger] = lockTotal{amount: amount, timestamp: c.now()}
}

// Invalidate forgets the lock totals of owner. Ledger metadata is immutable
// and survives.
func (c *LedgerCache) Invalidate(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, owner)
}
