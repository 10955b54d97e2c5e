package preview

import (
	"image"
	"sync"
	"time"
)

// DefaultCacheEntries bounds the text cache
const DefaultCacheEntries = 8

// cacheKey identifies a rendering: the same image at the same cell size
type cacheKey struct {
	img        image.Image
	cols, rows int
}

type cacheEntry struct {
	text       string
	accessTime time.Time
}

// Cache keeps recent text renderings so redrawing an unchanged frame does
// not resample it. The least recently used entry is evicted first.
type Cache struct {
	r          *Renderer
	maxEntries int
	index      map[cacheKey]*cacheEntry
	mutex      sync.Mutex

	hits, misses int
}

// NewCache wraps r. maxEntries <= 0 uses DefaultCacheEntries.
func NewCache(r *Renderer, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &Cache{
		r:          r,
		maxEntries: maxEntries,
		index:      make(map[cacheKey]*cacheEntry),
	}
}

// Text returns r.Text(img), from the cache when possible
func (c *Cache) Text(img image.Image) string {
	if img == nil {
		return ""
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := cacheKey{img: img, cols: c.r.Cols, rows: c.r.Rows}
	if e, ok := c.index[key]; ok {
		e.accessTime = time.Now()
		c.hits++
		return e.text
	}

	c.misses++
	text := c.r.Text(img)
	if len(c.index) >= c.maxEntries {
		c.evict()
	}
	c.index[key] = &cacheEntry{text: text, accessTime: time.Now()}
	return text
}

// evict drops the least recently used entry
func (c *Cache) evict() {
	var oldest cacheKey
	var at time.Time
	first := true
	for k, e := range c.index {
		if first || e.accessTime.Before(at) {
			oldest, at, first = k, e.accessTime, false
		}
	}
	delete(c.index, oldest)
}

// Len counts cached renderings
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.index)
}

// Stats returns hit and miss counts
func (c *Cache) Stats() (hits, misses int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.hits, c.misses
}
