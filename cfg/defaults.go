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

package cfg

// DefaultLogRotateConfig returns the rotation settings used when a command
// is invoked without any log-rotate flags.
func DefaultLogRotateConfig() LogRotateConfig {
	return LogRotateConfig{
		MaxFileSizeMB:   512,
		BackupFileCount: 10,
		Compress:        false,
	}
}

// DefaultConfig returns a Config with every field set to its zero-argument
// default, equivalent to running a command with no flags at all.
func DefaultConfig() Config {
	return Config{
		Bundle: BundleConfig{
			MaxOpenBands: 32,
		},
		Logging: LoggingConfig{
			Severity:  "INFO",
			Format:    "text",
			LogRotate: DefaultLogRotateConfig(),
		},
	}
}
