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
	"io"
)

// Pread reads len(p) bytes of the logical image starting at offset into p,
// splitting the request across however many bands it spans. Reads from a
// hole (an absent band, or past the end of a short band file) are
// zero-filled rather than failing. It returns the number of bytes
// transferred before the first error, if any.
func (h *Handle) Pread(p []byte, offset int64) (int, error) {
	return h.rw(p, offset, false)
}

// Pwrite writes len(p) bytes of p to the logical image starting at offset,
// creating any band file it touches that does not yet exist. It returns
// the number of bytes transferred before the first error, if any.
func (h *Handle) Pwrite(p []byte, offset int64) (int, error) {
	return h.rw(p, offset, true)
}

func (h *Handle) rw(buf []byte, offset int64, write bool) (int, error) {
	if h.err != nil {
		return 0, h.err
	}
	bandSize := h.info.BandSize
	total := 0

	for len(buf) > 0 {
		bandIndex := offset / bandSize
		bandOffset := offset % bandSize
		chunk := bandSize - bandOffset
		if chunk > int64(len(buf)) {
			chunk = int64(len(buf))
		}

		b := h.cache.acquire(bandIndex, write)
		n, err := h.ioOnBand(b, buf[:chunk], bandOffset, write)
		h.cache.release(b)

		if err != nil {
			if h.metrics != nil {
				op := "pread"
				if write {
					op = "pwrite"
				}
				h.metrics.IOError(op)
			}
			return total, err
		}

		total += n
		buf = buf[n:]
		offset += int64(n)
	}

	if h.metrics != nil {
		if write {
			h.metrics.WrittenBytes(total)
		} else {
			h.metrics.ReadBytes(total)
		}
	}
	return total, nil
}

// ioOnBand performs one positional I/O against a single already-acquired
// band and applies the hole-read rule. chunk never crosses a band
// boundary.
func (h *Handle) ioOnBand(b *openBand, chunk []byte, bandOffset int64, write bool) (int, error) {
	if write {
		switch b.state {
		case bandFailed:
			return 0, &IOError{Op: "open", Err: b.err}
		case bandMissing:
			// need_write always requests create-on-open, so this should
			// not happen in practice; treat it the same as a failed open.
			return 0, &IOError{Op: "open", Err: io.ErrClosedPipe}
		}
		n, err := b.file.WriteAt(chunk, bandOffset)
		if err != nil {
			return n, &IOError{Op: "pwrite", Err: err}
		}
		return n, nil
	}

	switch b.state {
	case bandMissing:
		zero(chunk)
		if h.metrics != nil {
			h.metrics.HoleFilled()
		}
		return len(chunk), nil
	case bandFailed:
		return 0, &IOError{Op: "open", Err: b.err}
	}

	n, err := b.file.ReadAt(chunk, bandOffset)
	if n == 0 {
		// Either truly at EOF within this band, or ReadAt reported an
		// error with no progress at all: both read as a hole.
		zero(chunk)
		if h.metrics != nil {
			h.metrics.HoleFilled()
		}
		return len(chunk), nil
	}
	if err != nil && err != io.EOF {
		return n, &IOError{Op: "pread", Err: err}
	}
	// A positive short read (0 < n < len(chunk)) is accepted as partial
	// progress; the caller's loop will re-acquire the band for the rest.
	return n, nil
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}

// Trim releases the storage backing any band fully contained within
// [offset, offset+length): start = ceil(offset/B), end = floor((offset+
// length)/B). Bands partially covered at either end are left untouched. A
// range smaller than one full band is a no-op, and trimming an
// already-absent band is not an error.
func (h *Handle) Trim(offset, length int64) error {
	if h.err != nil {
		return h.err
	}
	bandSize := h.info.BandSize
	start := (offset + bandSize - 1) / bandSize
	end := (offset + length) / bandSize

	for id := start; id < end; id++ {
		if err := h.cache.trimBand(id); err != nil {
			if h.metrics != nil {
				h.metrics.IOError("trim")
			}
			return &IOError{Op: "trim", Err: err}
		}
	}
	return nil
}

// Flush closes every cached band descriptor and empties the cache. It does
// not fsync; durability beyond "the kernel has the bytes" is the caller's
// responsibility.
func (h *Handle) Flush() error {
	if h.err != nil {
		return h.err
	}
	if err := h.cache.flush(); err != nil {
		if h.metrics != nil {
			h.metrics.IOError("flush")
		}
		return &IOError{Op: "flush", Err: err}
	}
	return nil
}
