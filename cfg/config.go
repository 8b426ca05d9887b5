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

// Package cfg holds the configuration surface shared by every entry point
// built on top of the bundle package: flag parsing, viper binding, and
// validation live here so cmd/sparsebundle stays a thin wiring layer.
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ResolvedPath marks a struct field that holds a filesystem path. The value
// is used exactly as given: no "~" or environment-variable expansion is
// applied to it.
type ResolvedPath string

// Config is the full, validated configuration for a sparsebundle command.
type Config struct {
	Bundle  BundleConfig  `yaml:"bundle"`
	Logging LoggingConfig `yaml:"logging"`
}

// BundleConfig names the bundle to open and the cache budget to open it
// with.
type BundleConfig struct {
	// Path to the sparsebundle directory (containing Info.plist and bands/).
	Path ResolvedPath `yaml:"path"`
	// MaxOpenBands bounds the number of concurrently open band file
	// descriptors. Values less than 1 are rounded up to 1.
	MaxOpenBands int `yaml:"max-open-bands" mapstructure:"max-open-bands"`
}

// LoggingConfig configures the process-wide logger.
type LoggingConfig struct {
	// Severity is one of TRACE, DEBUG, INFO, WARNING, ERROR, OFF.
	Severity string `yaml:"severity"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
	// FilePath, if non-empty, redirects logs to a rotated file instead of
	// stderr.
	FilePath  ResolvedPath    `yaml:"file-path" mapstructure:"file-path"`
	LogRotate LogRotateConfig `yaml:"log-rotate" mapstructure:"log-rotate"`
}

// LogRotateConfig mirrors lumberjack.Logger's rotation knobs.
type LogRotateConfig struct {
	MaxFileSizeMB   int  `yaml:"max-file-size-mb" mapstructure:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count" mapstructure:"backup-file-count"`
	Compress        bool `yaml:"compress"`
}

// BindFlags registers the command-line flags for Config onto flagSet and
// binds each one into viper under the matching dotted key, so that the
// flag's value (or its default) reaches Config through viper.Unmarshal.
// Environment variables and config files are not consulted.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.IntP("max-open-bands", "", 32, "Maximum number of band file descriptors held open at once.")
	if err := viper.BindPFlag("bundle.max-open-bands", flagSet.Lookup("max-open-bands")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", "INFO", "Log severity: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF.")
	if err := viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Log format: text or json.")
	if err := viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to a rotated log file. Empty means log to stderr.")
	if err := viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.IntP("log-max-size-mb", "", 512, "Log file size in MB that triggers rotation.")
	if err := viper.BindPFlag("logging.log-rotate.max-file-size-mb", flagSet.Lookup("log-max-size-mb")); err != nil {
		return err
	}

	flagSet.IntP("log-backup-count", "", 10, "Number of rotated log files to keep.")
	if err := viper.BindPFlag("logging.log-rotate.backup-file-count", flagSet.Lookup("log-backup-count")); err != nil {
		return err
	}

	flagSet.BoolP("log-compress", "", false, "gzip rotated log files.")
	return viper.BindPFlag("logging.log-rotate.compress", flagSet.Lookup("log-compress"))
}
