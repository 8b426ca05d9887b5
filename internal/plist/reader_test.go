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

package plist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleInfoDictionaryVersion</key>
	<string>6.0</string>
	<key>band-size</key>
	<integer>8388608</integer>
	<key>bundle-backingstore-version</key>
	<integer>1</integer>
	<key>diskimage-bundle-type</key>
	<string>com.apple.diskimage.sparsebundle</string>
	<key>size</key>
	<integer>107374182400</integer>
</dict>
</plist>
`

func TestRead_ValidPlist(t *testing.T) {
	info, err := Read(strings.NewReader(validPlist))
	require.NoError(t, err)
	assert.Equal(t, int64(8388608), info.BandSize)
	assert.Equal(t, int64(107374182400), info.Size)
	assert.Equal(t, int64(1), info.Version)
}

func TestRead_UnknownKeysIgnored(t *testing.T) {
	doc := `<plist><dict>
		<key>some-future-key</key><string>whatever</string>
		<key>band-size</key><integer>1048576</integer>
		<key>size</key><integer>16777216</integer>
		<key>bundle-backingstore-version</key><integer>1</integer>
	</dict></plist>`

	info, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), info.BandSize)
}

func TestRead_NestedDictIgnoredButMustParse(t *testing.T) {
	doc := `<plist><dict>
		<key>band-size</key><integer>1048576</integer>
		<key>size</key><integer>16777216</integer>
		<key>bundle-backingstore-version</key><integer>1</integer>
		<key>nested</key>
		<dict>
			<key>band-size</key><integer>999</integer>
		</dict>
	</dict></plist>`

	info, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), info.BandSize, "nested dict contents must not override the top-level value")
}

func TestRead_ValueTypeIgnored(t *testing.T) {
	// Value tag name is never interpreted; any tag's inner text is parsed
	// as an integer for the three recognized keys.
	doc := `<plist><dict>
		<key>band-size</key><string>2097152</string>
		<key>size</key><real>33554432</real>
		<key>bundle-backingstore-version</key><string>1</string>
	</dict></plist>`

	info, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, int64(2097152), info.BandSize)
	assert.Equal(t, int64(33554432), info.Size)
}

func TestRead_MissingVersion(t *testing.T) {
	doc := `<plist><dict>
		<key>band-size</key><integer>1048576</integer>
		<key>size</key><integer>16777216</integer>
	</dict></plist>`

	_, err := Read(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestRead_UnsupportedVersion(t *testing.T) {
	doc := `<plist><dict>
		<key>band-size</key><integer>1048576</integer>
		<key>size</key><integer>16777216</integer>
		<key>bundle-backingstore-version</key><integer>2</integer>
	</dict></plist>`

	_, err := Read(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestRead_InvalidBandSize(t *testing.T) {
	doc := `<plist><dict>
		<key>band-size</key><integer>0</integer>
		<key>size</key><integer>16777216</integer>
		<key>bundle-backingstore-version</key><integer>1</integer>
	</dict></plist>`

	_, err := Read(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrInvalidBandSize)
}

func TestRead_InvalidSize(t *testing.T) {
	doc := `<plist><dict>
		<key>band-size</key><integer>1048576</integer>
		<key>size</key><integer>-5</integer>
		<key>bundle-backingstore-version</key><integer>1</integer>
	</dict></plist>`

	_, err := Read(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestRead_MalformedXML(t *testing.T) {
	_, err := Read(strings.NewReader("<plist><dict><key>band-size</key>"))
	assert.Error(t, err)
}

func TestAtoiLax(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1048576", 1048576},
		{"  42", 42},
		{"-7", -7},
		{"3.14", 3},
		{"abc", 0},
		{"", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, atoiLax(c.in), "atoiLax(%q)", c.in)
	}
}
