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

// Package cmd wires cobra, pflag, and viper together into the
// sparsebundle command-line tool's subcommands.
package cmd

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/google/sparsebundle/cfg"
	"github.com/google/sparsebundle/internal/logger"
	"github.com/google/sparsebundle/internal/metrics"
)

var config cfg.Config

// metricsRegistry and bundleMetrics are shared by every subcommand, so a
// single process running stat or bench reports into the same Prometheus
// series regardless of which one is invoked.
var metricsRegistry = prometheus.NewRegistry()
var bundleMetrics = metrics.New(metricsRegistry)

var metricsAddr string

var rootCmd = &cobra.Command{
	Use:   "sparsebundle",
	Short: "Inspect and exercise sparsebundle disk images",
	Long: `sparsebundle is a diagnostic tool over the sparsebundle access
library. It opens a bundle directory, reports its metadata and cache
behavior, and can drive concurrent read traffic against it for benchmarking.
It does not mount anything.`,
	SilenceUsage: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&config); err != nil {
			return err
		}
		if err := config.Validate(); err != nil {
			return err
		}
		if err := logger.InitLogFile(config.Logging); err != nil {
			return err
		}
		if metricsAddr != "" {
			serveMetrics(metricsAddr)
		}
		return nil
	},
}

// serveMetrics starts a background HTTP server exposing metricsRegistry at
// /metrics. It never blocks the caller; a failure to bind is logged, not
// returned, since metrics export is diagnostic and must not prevent the
// requested stat/bench operation from running.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("sparsebundle: metrics server on %s stopped: %v", addr, err)
		}
	}()
	logger.Infof("sparsebundle: serving Prometheus metrics on %s/metrics", addr)
}

func init() {
	rootCmd.PersistentFlags().StringVar((*string)(&config.Bundle.Path), "bundle", "", "Path to the sparsebundle directory (required).")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (e.g. :9090). Empty disables the metrics server.")
	if err := cfg.BindFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("bundle.path", rootCmd.PersistentFlags().Lookup("bundle")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(statCmd, benchCmd)
}

// Execute runs the root command, returning the first error any subcommand
// produced. Errors are already printed by cobra before Execute returns.
func Execute() error {
	return rootCmd.Execute()
}
