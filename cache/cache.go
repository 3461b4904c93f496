package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Statistics are cumulative counters over a MemberCache's lifetime, exposed so a
// host IDE can surface cache effectiveness (e.g. in a status bar or a
// diagnostics command).
type Statistics struct {
	Hits      int
	Misses    int
	Evictions int
}

// MemberCache holds one Entry per member, evicting least-recently-used entries
// once capacity is reached, and supporting whole-document invalidation: an
// edit to a document drops every member it contains without a linear scan
// of the LRU.
type MemberCache struct {
	mu    sync.RWMutex
	lru   *lru.Cache[string, *Entry]
	byDoc map[string]map[string]bool
	stats Statistics
}

// New returns an empty MemberCache holding at most capacity members.
func New(capacity int) *MemberCache {
	c := &MemberCache{byDoc: make(map[string]map[string]bool)}
	l, err := lru.NewWithEvict[string, *Entry](capacity, func(memberID string, e *Entry) {
		c.unindex(memberID, e.Doc)
		c.stats.Evictions++
	})
	if err != nil {
		// Only returned for capacity <= 0; New is called with a fixed,
		// known-positive constant everywhere in this module.
		panic(err)
	}
	c.lru = l
	return c
}

// Get returns the cached Entry for memberID, and records a hit or miss.
func (c *MemberCache) Get(memberID string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(memberID)
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return e, ok
}

// Put stores e, replacing any existing entry for the same member.
func (c *MemberCache) Put(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(e.MemberID, e)
	c.index(e.MemberID, e.Doc)
}

// InvalidateDocument evicts every member cached for doc: the response to an
// edit in that document, per the specification's "a document edit
// invalidates every member cached for that document" rule.
func (c *MemberCache) InvalidateDocument(doc string) {
	c.mu.Lock()
	members := make([]string, 0, len(c.byDoc[doc]))
	for m := range c.byDoc[doc] {
		members = append(members, m)
	}
	c.mu.Unlock()

	for _, m := range members {
		c.mu.Lock()
		c.lru.Remove(m)
		c.mu.Unlock()
	}
}

// Statistics returns a snapshot of cumulative hit/miss/eviction counters.
func (c *MemberCache) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *MemberCache) index(memberID, doc string) {
	set, ok := c.byDoc[doc]
	if !ok {
		set = make(map[string]bool)
		c.byDoc[doc] = set
	}
	set[memberID] = true
}

func (c *MemberCache) unindex(memberID, doc string) {
	set, ok := c.byDoc[doc]
	if !ok {
		return
	}
	delete(set, memberID)
	if len(set) == 0 {
		delete(c.byDoc, doc)
	}
}
