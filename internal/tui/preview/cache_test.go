package preview

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCache 测试缓存命中与按大小区分
func TestCache(t *testing.T) {
	r := NewRenderer(ProtocolText)
	r.SetCellSize(16, 8)
	c := NewCache(r, 2)

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	first := c.Text(img)
	assert.Equal(t, first, c.Text(img))
	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	r.SetCellSize(8, 4)
	assert.NotEqual(t, first, c.Text(img))
	assert.Equal(t, 2, c.Len())

	assert.Empty(t, c.Text(nil))
}

// TestCache_Evict 测试超过容量时淘汰条目
func TestCache_Evict(t *testing.T) {
	r := NewRenderer(ProtocolText)
	c := NewCache(r, 2)
	for i := 0; i < 5; i++ {
		c.Text(image.NewGray(image.Rect(0, 0, 4+i, 4)))
	}
	assert.Equal(t, 2, c.Len())
}
