package phonecrawler

import "sync"

// CompletionIndex is the set of detail IDs known to be fully ingested.
// Entries are added only after a successful persist, which makes interrupted
// runs resumable. Membership checks and inserts share one lock so concurrent
// workers never double-count an item.
type CompletionIndex struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewCompletionIndex() *CompletionIndex {
	return &CompletionIndex{ids: make(map[string]struct{})}
}

// Has reports whether id is already ingested.
func (c *CompletionIndex) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

// Add marks id as ingested.
func (c *CompletionIndex) Add(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = struct{}{}
}

// AddAll bulk-loads ids, used to pre-warm the index from the store.
func (c *CompletionIndex) AddAll(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.ids[id] = struct{}{}
	}
}

// Len returns the number of ingested ids.
func (c *CompletionIndex) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
