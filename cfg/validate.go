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

import "fmt"

const (
	BundlePathRequiredError    = "a bundle path is required"
	MaxOpenBandsInvalidError   = "max-open-bands must be at least 1"
	LogSeverityInvalidError    = "log-severity must be one of TRACE, DEBUG, INFO, WARNING, ERROR, OFF"
	LogFormatInvalidError      = "log-format must be \"text\" or \"json\""
	LogRotateMaxSizeInvalidErr = "log-max-size-mb must be at least 1"
)

var validSeverities = map[string]bool{
	"TRACE": true, "DEBUG": true, "INFO": true, "WARNING": true, "ERROR": true, "OFF": true,
}

// Validate checks every field of c for internal consistency, rounding
// MaxOpenBands up to 1 the same way the bundle package itself would rather
// than rejecting it -- only clearly nonsensical input is an error.
func (c *Config) Validate() error {
	if c.Bundle.Path == "" {
		return fmt.Errorf(BundlePathRequiredError)
	}
	if c.Bundle.MaxOpenBands < 1 {
		c.Bundle.MaxOpenBands = 1
	}
	if c.Logging.Severity == "" {
		c.Logging.Severity = "INFO"
	} else if !validSeverities[c.Logging.Severity] {
		return fmt.Errorf(LogSeverityInvalidError)
	}
	switch c.Logging.Format {
	case "":
		c.Logging.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf(LogFormatInvalidError)
	}
	if err := isValidLogRotateConfig(&c.Logging.LogRotate); err != nil {
		return err
	}
	return nil
}

func isValidLogRotateConfig(rotate *LogRotateConfig) error {
	if rotate.MaxFileSizeMB <= 0 {
		return fmt.Errorf(LogRotateMaxSizeInvalidErr)
	}
	if rotate.BackupFileCount < 0 {
		return fmt.Errorf("log-backup-count should be 0 (retain all) or a positive value")
	}
	return nil
}
