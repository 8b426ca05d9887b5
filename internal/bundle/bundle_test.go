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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestBundle creates a minimal, valid sparsebundle directory and returns
// its path.
func newTestBundle(t *testing.T, bandSize, size int64) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "bands"), 0755))

	plist := fmt.Sprintf(`<plist><dict>
		<key>band-size</key><integer>%d</integer>
		<key>size</key><integer>%d</integer>
		<key>bundle-backingstore-version</key><integer>1</integer>
	</dict></plist>`, bandSize, size)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Info.plist"), []byte(plist), 0644))
	return dir
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
