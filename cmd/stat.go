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

	"github.com/spf13/cobra"

	"github.com/google/sparsebundle/internal/bundle"
)

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Open the configured bundle and print its metadata",
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

		fmt.Printf("path:            %s\n", config.Bundle.Path)
		fmt.Printf("size:            %d bytes\n", h.Size())
		fmt.Printf("band-size:       %d bytes\n", h.BandSize())
		fmt.Printf("bands total:     %d\n", (h.Size()+h.BandSize()-1)/h.BandSize())
		fmt.Printf("open bands:      %d\n", h.OpenBandCount())

		printMetricsSummary()
		return nil
	},
}

// printMetricsSummary prints every counter and gauge in the shared
// Prometheus registry, gathered straight from the registry rather than from
// the bundle.Handle directly, so the output reflects whatever promhttp would
// also serve. stat and bench call it before their deferred Close runs.
func printMetricsSummary() {
	families, err := metricsRegistry.Gather()
	if err != nil {
		return
	}
	fmt.Println("metrics:")
	for _, mf := range families {
		for _, m := range mf.Metric {
			switch {
			case m.Counter != nil:
				fmt.Printf("  %-28s %v\n", mf.GetName(), m.Counter.GetValue())
			case m.Gauge != nil:
				fmt.Printf("  %-28s %v\n", mf.GetName(), m.Gauge.GetValue())
			}
		}
	}
}
