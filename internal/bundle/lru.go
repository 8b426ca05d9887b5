// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bundle

import (
	"container/list"
	"os"
	"sync"

	"github.com/google/sparsebundle/internal/metrics"
)

// bandCache is a bounded LRU of open band file descriptors, keyed by band
// index. One mutex guards the hash index, the recency list, and the
// open-count they imply; it is never held across a band's positional I/O.
//
// Lock order is always cache mutex -> a single band's rwlock, and the
// cache mutex is released as soon as that band's shared lock has been
// taken (see acquire). Closing a band (eviction, reopen-for-write, trim,
// flush) takes its rwlock exclusively while still holding the cache mutex;
// holders of a shared band lock never take the cache mutex, so there is no
// cycle.
type bandCache struct {
	mu       sync.Mutex
	bandsDir string
	capacity int
	index    map[int64]*list.Element // -> *openBand, front = LRU, back = MRU
	order    *list.List
	metrics  *metrics.BundleMetrics
}

func newBandCache(bandsDir string, capacity int, m *metrics.BundleMetrics) *bandCache {
	if capacity < 1 {
		capacity = 1
	}
	return &bandCache{
		bandsDir: bandsDir,
		capacity: capacity,
		index:    make(map[int64]*list.Element),
		order:    list.New(),
		metrics:  m,
	}
}

// acquire returns the band for id with a shared lock already held, opening
// or evicting as necessary. The caller must call release exactly once
// when done.
func (c *bandCache) acquire(id int64, needWrite bool) *openBand {
	c.mu.Lock()

	var b *openBand
	if elem, ok := c.index[id]; ok {
		b = elem.Value.(*openBand)
		if needWrite && b.state == bandMissing {
			// The cached entry can't satisfy a write; drop it and fall
			// through to the miss path so it gets reopened with create.
			c.removeLocked(elem)
			b = nil
		} else {
			c.order.MoveToBack(elem)
		}
	}

	if b == nil {
		if len(c.index) >= c.capacity {
			c.evictOldestLocked()
		}
		b = openBandFile(c.bandsDir, id, needWrite)
		b.elem = c.order.PushBack(b)
		c.index[id] = b.elem
		if c.metrics != nil {
			c.metrics.BandOpened()
		}
	}

	// Publication barrier: take the shared lock while still holding the
	// cache mutex, so an evictor that has already found this element
	// cannot have raced past us to the exclusive-lock step.
	b.rwlock.RLock()
	c.reportSizeLocked()
	c.mu.Unlock()
	return b
}

func (c *bandCache) release(b *openBand) {
	b.rwlock.RUnlock()
}

// evictOldestLocked closes and removes the least-recently-used entry.
// Requires c.mu held. Errors are swallowed here (as they are from every
// eviction-driven close in this cache); callers that need to observe a
// close failure use removeLocked/trim/flush directly.
func (c *bandCache) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	b := front.Value.(*openBand)
	_ = b.close()
	c.order.Remove(front)
	delete(c.index, b.index)
	if c.metrics != nil {
		c.metrics.BandEvicted()
	}
}

// removeLocked closes and removes elem's band, propagating a close error.
// Requires c.mu held.
func (c *bandCache) removeLocked(elem *list.Element) error {
	b := elem.Value.(*openBand)
	err := b.close()
	c.order.Remove(elem)
	delete(c.index, b.index)
	return err
}

func (c *bandCache) reportSizeLocked() {
	if c.metrics != nil {
		c.metrics.SetOpenBands(len(c.index))
	}
}

// len reports the number of cached band entries, for tests and the size
// gauge. Entries for bands absent on disk are counted even though they hold
// no descriptor.
func (c *bandCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// trimBand closes (if open) and unlinks the band file for id, leaving a
// cached "missing" entry behind so a subsequent read sees a hole without
// touching disk again. Unlinking a file that is already absent is not an
// error.
func (c *bandCache) trimBand(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b *openBand
	if elem, ok := c.index[id]; ok {
		b = elem.Value.(*openBand)
		c.order.MoveToBack(elem)
	} else {
		if len(c.index) >= c.capacity {
			c.evictOldestLocked()
		}
		b = openBandFile(c.bandsDir, id, false)
		b.elem = c.order.PushBack(b)
		c.index[id] = b.elem
	}

	if b.state == bandOpen {
		if err := b.close(); err != nil {
			return err
		}
	}
	b.state = bandMissing
	b.err = nil
	c.reportSizeLocked()

	err := os.Remove(bandPath(c.bandsDir, id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// flush closes every cached band and empties the cache, returning the
// first close error encountered (if any). It always finishes with an
// empty cache even when some bands fail to close.
func (c *bandCache) flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		b := elem.Value.(*openBand)
		if err := b.close(); err != nil && first == nil {
			first = err
		}
	}
	c.index = make(map[int64]*list.Element)
	c.order = list.New()
	c.reportSizeLocked()
	return first
}
