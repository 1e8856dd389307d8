package embedding

import "sync"

// EmbeddingCache memoizes embedding vectors by source text with LRU
// eviction. Recency is tracked on an intrusive doubly-linked list so a
// lookup only moves pointers, never allocates.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*cacheNode
	head     *cacheNode // most recently used
	tail     *cacheNode // eviction candidate
}

type cacheNode struct {
	key    string
	vector []float32
	prev   *cacheNode
	next   *cacheNode
}

// NewEmbeddingCache returns a cache holding at most capacity vectors.
// Non-positive capacities are treated as one.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string]*cacheNode, capacity),
	}
}

// Get returns the cached vector for text and marks it most recently used.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[text]
	if !ok {
		return nil, false
	}
	c.moveToFront(node)
	return node.vector, true
}

// Set stores the vector for text. When the cache is full the least
// recently used entry is dropped.
func (c *EmbeddingCache) Set(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[text]; ok {
		node.vector = vector
		c.moveToFront(node)
		return
	}

	if len(c.entries) >= c.capacity && c.tail != nil {
		evicted := c.tail
		c.unlink(evicted)
		delete(c.entries, evicted.key)
	}

	node := &cacheNode{key: text, vector: vector}
	c.entries[text] = node
	c.pushFront(node)
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *EmbeddingCache) moveToFront(node *cacheNode) {
	if c.head == node {
		return
	}
	c.unlink(node)
	c.pushFront(node)
}

func (c *EmbeddingCache) pushFront(node *cacheNode) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *EmbeddingCache) unlink(node *cacheNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}
