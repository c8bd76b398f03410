package discord

import "sync"

// activeChannels holds the channels where every message gets a reply. It is
// process-local and starts empty.
type activeChannels struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func newActiveChannels() *activeChannels {
	return &activeChannels{ids: make(map[string]struct{})}
}

func (c *activeChannels) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.ids[id]
	return ok
}

// Toggle flips the channel and reports whether it is now active.
func (c *activeChannels) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[id]; ok {
		delete(c.ids, id)
		return false
	}
	c.ids[id] = struct{}{}
	return true
}
