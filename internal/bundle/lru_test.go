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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, capacity int) *bandCache {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "bands"), 0755))
	return newBandCache(filepath.Join(dir, "bands"), capacity, nil)
}

func TestBandCache_CapacityFlooredToOne(t *testing.T) {
	c := newBandCache("/tmp/does-not-matter", 0, nil)
	assert.Equal(t, 1, c.capacity)
}

func TestBandCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, 2)

	b0 := c.acquire(0, true)
	c.release(b0)
	b1 := c.acquire(1, true)
	c.release(b1)
	assert.Equal(t, 2, c.len())

	// Touch band 0 so band 1 becomes the LRU entry.
	b0 = c.acquire(0, true)
	c.release(b0)

	b2 := c.acquire(2, true)
	c.release(b2)
	assert.Equal(t, 2, c.len())

	_, stillCached := c.index[1]
	assert.False(t, stillCached, "band 1 should have been evicted as the least recently used")
	_, band0Cached := c.index[0]
	assert.True(t, band0Cached, "band 0 was touched and should survive eviction")
}

func TestBandCache_ReopensMissingBandForWrite(t *testing.T) {
	c := newTestCache(t, 4)

	b := c.acquire(0, false)
	assert.Equal(t, bandMissing, b.state)
	c.release(b)

	b = c.acquire(0, true)
	assert.Equal(t, bandOpen, b.state)
	c.release(b)
}

func TestBandCache_CachedMissingEntrySatisfiesRead(t *testing.T) {
	c := newTestCache(t, 4)

	b := c.acquire(5, false)
	assert.Equal(t, bandMissing, b.state)
	c.release(b)
	assert.Equal(t, 1, c.len(), "a missing band still occupies a cache slot so repeat reads skip the stat/open syscall")
}

func TestBandCache_TrimMarksCachedEntryMissingAndUnlinks(t *testing.T) {
	c := newTestCache(t, 4)

	b := c.acquire(3, true)
	c.release(b)
	require.NoError(t, os.WriteFile(bandPath(c.bandsDir, 3), []byte("data"), 0644))

	require.NoError(t, c.trimBand(3))

	_, err := os.Stat(bandPath(c.bandsDir, 3))
	assert.True(t, os.IsNotExist(err))

	elem, ok := c.index[3]
	require.True(t, ok)
	assert.Equal(t, bandMissing, elem.Value.(*openBand).state)
}

func TestBandCache_TrimOfNeverOpenedBandIsNotAnError(t *testing.T) {
	c := newTestCache(t, 4)
	assert.NoError(t, c.trimBand(99))
}

func TestBandCache_FlushEmptiesIndexAndOrder(t *testing.T) {
	c := newTestCache(t, 4)

	for i := int64(0); i < 3; i++ {
		b := c.acquire(i, true)
		c.release(b)
	}
	require.Equal(t, 3, c.len())

	require.NoError(t, c.flush())
	assert.Equal(t, 0, c.len())
	assert.Equal(t, 0, c.order.Len())
}
