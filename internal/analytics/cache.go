package analytics

import (
	"fmt"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Cache keeps computed dashboard responses per user and query.
// Invalidate bumps the user's generation, so older entries are never read again
// and simply expire.
type Cache struct {
	store *freecache.Cache
	ttl   time.Duration

	mutex       sync.Mutex
	generations map[int]uint64
}

func NewCache(sizeMB int, ttl time.Duration) *Cache {
	if sizeMB <= 0 {
		sizeMB = 16
	}
	return &Cache{
		store:       freecache.NewCache(sizeMB * megabyte),
		ttl:         ttl,
		generations: make(map[int]uint64),
	}
}

// Generation is the user's current cache generation. Entries stored under an older
// generation are never read again.
func (c *Cache) Generation(userID int) uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.generations[userID]
}

func key(userID int, gen uint64, query string) []byte {
	return []byte(fmt.Sprintf("%d::%d::%s", userID, gen, query))
}

func (c *Cache) Get(userID int, query string) ([]byte, bool) {
	return c.GetAt(userID, c.Generation(userID), query)
}

func (c *Cache) GetAt(userID int, gen uint64, query string) ([]byte, bool) {
	value, err := c.store.Get(key(userID, gen, query))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *Cache) Set(userID int, query string, value []byte) {
	c.SetAt(userID, c.Generation(userID), query, value)
}

// SetAt stores value under the generation it was computed for. A value computed before
// an invalidation lands under the old generation and is never served.
func (c *Cache) SetAt(userID int, gen uint64, query string, value []byte) {
	if err := c.store.Set(key(userID, gen, query), value, int(c.ttl.Seconds())); err != nil {
		log.Errorf("analytics cache set for user %d: %s", userID, err)
	}
}

// Invalidate drops every cached response of the user.
func (c *Cache) Invalidate(userID int) {
	c.mutex.Lock()
	c.generations[userID]++
	c.mutex.Unlock()
	log.Tracef("analytics cache invalidated for user %d", userID)
}
