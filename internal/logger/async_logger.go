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

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// AsyncLogger buffers writes to an underlying io.WriteCloser (typically a
// *lumberjack.Logger) on a channel and flushes them from a single
// goroutine, so a slow or rotating file never blocks a caller holding a
// band lock. A full buffer drops the message rather than blocking.
type AsyncLogger struct {
	dst     io.WriteCloser
	entries chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewAsyncLogger starts the background writer goroutine and returns a
// logger ready to accept writes. bufferSize bounds the number of
// not-yet-flushed messages.
func NewAsyncLogger(dst io.WriteCloser, bufferSize int) *AsyncLogger {
	a := &AsyncLogger{
		dst:     dst,
		entries: make(chan []byte, bufferSize),
		done:    make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *AsyncLogger) run() {
	defer a.wg.Done()
	for b := range a.entries {
		_, _ = a.dst.Write(b)
	}
	close(a.done)
}

// Write implements io.Writer. It copies p (the caller's buffer is not
// retained past this call) and enqueues it for the writer goroutine.
func (a *AsyncLogger) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)

	select {
	case a.entries <- cp:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains pending entries and closes the underlying writer.
func (a *AsyncLogger) Close() error {
	close(a.entries)
	<-a.done
	return a.dst.Close()
}
