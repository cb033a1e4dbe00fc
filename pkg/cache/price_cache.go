package cache

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type cachedPrice struct {
	price     decimal.Decimal
	timestamp time.Time
}

// PriceCache keeps USD prices per ledger for ttl.
type PriceCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	prices map[string]cachedPrice
	now    func() time.Time
}

func NewPriceCache(ttl time.Duration) *PriceCache {
	return &PriceCache{
		ttl:    ttl,
		prices: make(map[string]cachedPrice),
		now:    time.Now,
	}
}

// Get returns the cached price, or false if it is missing or stale.
func (c *PriceCache) Get(ledger string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.prices[ledger]
	if !ok {
		return decimal.Zero, false
	}
	if c.now().Sub(p.timestamp) > c.ttl {
		delete(c.prices, ledger)
		return decimal.Zero, false
	}

	logrus.Debugf("price for %s taken from cache", ledger)
	return p.price, true
}

func (c *PriceCache) Set(ledger string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prices[ledger] = cachedPrice{price: price, timestamp: c.now()}
}
