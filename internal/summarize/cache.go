package summarize

import (
	"sync"
	"time"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

type cachedSummary struct {
	summary   string
	status    newsletter.SummaryStatus
	expiresAt time.Time
}

// Cache remembers summaries by content hash so identical content never pays
// for a second backend call within the TTL. Safe for concurrent workers.
type Cache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]cachedSummary
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		items: make(map[string]cachedSummary),
	}
}

func (c *Cache) Get(contentHash string) (string, newsletter.SummaryStatus, bool) {
	c.mu.RLock()
	item, exists := c.items[contentHash]
	c.mu.RUnlock()

	if !exists {
		return "", "", false
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, contentHash)
		c.mu.Unlock()
		return "", "", false
	}
	return item.summary, item.status, true
}

func (c *Cache) Set(contentHash, summary string, status newsletter.SummaryStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[contentHash] = cachedSummary{
		summary:   summary,
		status:    status,
		expiresAt: time.Now().Add(c.ttl),
	}
}
