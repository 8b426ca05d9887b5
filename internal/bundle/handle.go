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

// Package bundle is the sparsebundle access library: it turns a
// directory-based banded disk image into a seekable byte-addressable
// logical image with Pread, Pwrite, Trim, and Flush. See Open.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/sparsebundle/internal/logger"
	"github.com/google/sparsebundle/internal/metrics"
	"github.com/google/sparsebundle/internal/plist"
)

// Options configures Open.
type Options struct {
	// Path is the sparsebundle directory, containing Info.plist and
	// bands/.
	Path string
	// MaxOpenBands bounds the number of concurrently open band file
	// descriptors. Values below 1 are treated as 1.
	MaxOpenBands int
	// Metrics, if non-nil, receives cache and I/O instrumentation. A nil
	// Metrics is fine; nothing is recorded.
	Metrics *metrics.BundleMetrics
}

// Handle is a single open sparsebundle. All state -- parsed metadata, the
// band cache, the latched open error -- lives on the handle, never in
// process-wide variables, so a process can have many bundles open at once.
//
// Every exported method is safe to call concurrently from any number of
// goroutines.
type Handle struct {
	/////////////////////////
	// Constant after Open
	/////////////////////////

	path     string
	bandsDir string
	info     plist.Info

	/////////////////////////
	// Dependencies
	/////////////////////////

	cache   *bandCache
	metrics *metrics.BundleMetrics

	/////////////////////////
	// Mutable state
	/////////////////////////

	// err is latched once, during Open, and never changed afterward. It
	// is nil unless Open failed, in which case the handle is otherwise
	// inert: Size is 0, and Pread/Pwrite/Trim/Flush return it again.
	err error
}

// Open stats bands/, parses Info.plist, and initializes the band cache.
// It always returns a non-nil *Handle: on failure, the handle's Err method
// returns the same error Open returned, so a caller that discards the
// error value can still retrieve it later. On success the returned error
// is nil.
func Open(opts Options) (*Handle, error) {
	h := &Handle{path: opts.Path, metrics: opts.Metrics}

	if opts.Path == "" {
		return h.fail(&ConfigurationError{Op: "open", Err: fmt.Errorf("empty bundle path")})
	}

	h.bandsDir = filepath.Join(opts.Path, "bands")
	fi, err := os.Stat(h.bandsDir)
	if err != nil {
		return h.fail(&ConfigurationError{Op: "stat bands/", Err: err})
	}
	if !fi.IsDir() {
		return h.fail(&ConfigurationError{Op: "stat bands/", Err: fmt.Errorf("bands is not a directory")})
	}

	plistPath := filepath.Join(opts.Path, "Info.plist")
	f, err := os.Open(plistPath)
	if err != nil {
		return h.fail(&ConfigurationError{Op: "open Info.plist", Err: err})
	}
	defer f.Close()

	info, err := plist.Read(f)
	if err != nil {
		return h.fail(&FormatError{Err: err})
	}
	h.info = info

	capacity := opts.MaxOpenBands
	if capacity < 1 {
		capacity = 1
	}
	h.cache = newBandCache(h.bandsDir, capacity, h.metrics)

	logger.Infof("sparsebundle: opened %q (band-size=%d size=%d max-open-bands=%d)", opts.Path, info.BandSize, info.Size, capacity)
	return h, nil
}

func (h *Handle) fail(err error) (*Handle, error) {
	h.err = err
	logger.Errorf("sparsebundle: open %q failed: %v", h.path, err)
	return h, err
}

// Close flushes the band cache and releases the handle's resources. It
// always succeeds from the caller's point of view -- internal close
// failures are logged, not returned -- mirroring the reference
// implementation, which has no way to report a close failure through its
// C ABI either.
func (h *Handle) Close() error {
	if h.cache == nil {
		return nil
	}
	if err := h.cache.flush(); err != nil {
		logger.Warnf("sparsebundle: close %q: %v", h.path, err)
	}
	return nil
}

// Size returns the logical image size in bytes, as recorded in
// Info.plist's size key. It is 0 if Open failed.
func (h *Handle) Size() int64 {
	return h.info.Size
}

// BandSize returns the configured band size in bytes. It is 0 if Open
// failed.
func (h *Handle) BandSize() int64 {
	return h.info.BandSize
}

// Err returns the error latched by Open, or nil if Open succeeded.
func (h *Handle) Err() error {
	return h.err
}

// OpenBandCount reports how many bands the cache currently holds, including
// entries for bands absent on disk, which hold no file descriptor. It
// exists for tests and diagnostics; callers should not
// build logic around its exact value since it changes concurrently with
// any other request.
func (h *Handle) OpenBandCount() int {
	if h.cache == nil {
		return 0
	}
	return h.cache.len()
}
