package render

import (
	"github.com/gogpu/gg/cache"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

// shapesPerShard bounds each of the cache's shards. An evicted shape is
// regenerated from the element's seed on its next frame.
const shapesPerShard = 1024

// ShapeCache memoizes generated shapes by element id. Entries are never
// refreshed implicitly: the owner must Delete an id whenever the element
// with that id is replaced.
type ShapeCache struct {
	shapes *cache.ShardedCache[string, Shape]
}

func NewShapeCache() *ShapeCache {
	return newShapeCache(shapesPerShard)
}

func newShapeCache(perShard int) *ShapeCache {
	return &ShapeCache{shapes: cache.NewSharded[string, Shape](perShard, cache.StringHasher)}
}

func (c *ShapeCache) Get(id string) (Shape, bool) {
	return c.shapes.Get(id)
}

func (c *ShapeCache) Set(id string, s Shape) {
	c.shapes.Set(id, s)
}

func (c *ShapeCache) Delete(ids ...string) {
	for _, id := range ids {
		c.shapes.Delete(id)
	}
}

func (c *ShapeCache) Clear() {
	c.shapes.Clear()
}

func (c *ShapeCache) Len() int {
	return c.shapes.Len()
}

// Shape returns the cached shape for el, generating and storing it on a
// miss. Elements that produce no shape are not cached.
func (c *ShapeCache) Shape(el *document.Element, gen Generator) Shape {
	if s, ok := c.shapes.Get(el.ID); ok {
		return s
	}
	s := GenerateShape(el, gen)
	if s != nil {
		c.shapes.Set(el.ID, s)
	}
	return s
}
