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

package cmd

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/google/sparsebundle/internal/bundle"
	"github.com/google/sparsebundle/internal/clock"
)

var (
	benchReaders   int
	benchChunkSize int64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Drive concurrent reads across the configured bundle and report throughput",
	RunE: func(c *cobra.Command, args []string) error {
		h, err := bundle.Open(bundle.Options{
			Path:         string(config.Bundle.Path),
			MaxOpenBands: config.Bundle.MaxOpenBands,
			Metrics:      bundleMetrics,
		})
		if err != nil {
			return err
		}
		defer h.Close()

		clk := clock.RealClock{}
		start := clk.Now()

		size := h.Size()
		var total atomic.Int64
		var g errgroup.Group
		for r := 0; r < benchReaders; r++ {
			stride := size / int64(benchReaders)
			offset := int64(r) * stride
			g.Go(func() error {
				buf := make([]byte, benchChunkSize)
				for n := int64(0); n < stride; n += benchChunkSize {
					read, err := h.Pread(buf, offset+n)
					total.Add(int64(read))
					if err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		elapsed := clk.Now().Sub(start)
		fmt.Printf("read %d bytes with %d readers in %s\n", total.Load(), benchReaders, elapsed)
		printMetricsSummary()
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchReaders, "readers", 4, "Number of concurrent reader goroutines.")
	benchCmd.Flags().Int64Var(&benchChunkSize, "chunk-size", 1<<20, "Bytes read per Pread call.")
}
