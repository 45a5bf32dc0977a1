// Copyright 2025 The driftlog Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package driftlog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestConsoleSinkHonorsColor(t *testing.T) {
	var out bytes.Buffer
	s, err := newSink(1, SinkConfig{Color: true}, &out, discardReport)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.close()) }()

	require.NoError(t, s.log(Record{
		Timestamp: time.Now(),
		Level:     ErrorLevel,
		Message:   "boom",
	}, true, true))

	assert.Equal(t, "[\x1b[31mERROR\x1b[0m] boom\n", out.String())
}

func TestFileSinkIgnoresColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	s, err := newSink(1, SinkConfig{Path: path, Color: true}, nil, discardReport)
	require.NoError(t, err)

	require.NoError(t, s.log(Record{
		Timestamp: time.Now(),
		Level:     ErrorLevel,
		Message:   "boom",
	}, true, true))
	require.NoError(t, s.close())

	assert.Equal(t, []string{"[ERROR] boom"}, readLines(t, path))
}

func TestSinkDisabledDropsSilently(t *testing.T) {
	var out bytes.Buffer
	s, err := newSink(1, SinkConfig{}, &out, discardReport)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.close()) }()

	s.enabled.Store(false)
	require.NoError(t, s.log(Record{Level: InfoLevel, Message: "hidden"}, true, true))
	assert.Zero(t, out.Len())
}

func TestSinkGlobalTogglesRoute(t *testing.T) {
	var out bytes.Buffer
	console, err := newSink(1, SinkConfig{}, &out, discardReport)
	require.NoError(t, err)
	defer func() { require.NoError(t, console.close()) }()

	path := filepath.Join(t.TempDir(), "app.log")
	file, err := newSink(2, SinkConfig{Path: path}, nil, discardReport)
	require.NoError(t, err)

	r := Record{Level: InfoLevel, Message: "routed"}
	require.NoError(t, console.log(r, false, true))
	require.NoError(t, file.log(r, true, false))
	require.NoError(t, file.close())

	assert.Zero(t, out.Len())
	assert.Empty(t, readFile(t, path))
}

func TestSinkJSONLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	s, err := newSink(1, SinkConfig{Path: path, JSON: true}, nil, discardReport)
	require.NoError(t, err)

	require.NoError(t, s.log(Record{
		Timestamp: time.Now(),
		Level:     WarningLevel,
		Message:   "disk almost full",
		Fields:    Fields{F("free_mb", 12)},
	}, true, true))
	require.NoError(t, s.close())

	lines := readLines(t, path)
	require.Len(t, lines, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "WARNING", decoded["level"])
	assert.Equal(t, "disk almost full", decoded["message"])
	assert.Equal(t, float64(12), decoded["free_mb"])
}

func TestSinkTemplateLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	s, err := newSink(1, SinkConfig{Path: path, Format: "{level} | {message}"}, nil, discardReport)
	require.NoError(t, err)

	require.NoError(t, s.log(Record{
		Timestamp: time.Now(),
		Level:     DebugLevel,
		Message:   "cache warm",
	}, true, true))
	require.NoError(t, s.close())

	assert.Equal(t, []string{"DEBUG | cache warm"}, readLines(t, path))
}

func TestMaintainRotatesIdleTimeSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	s, err := newSink(1, SinkConfig{Path: path, Rotation: "hourly"}, nil, discardReport)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.close()) }()

	require.NoError(t, s.log(Record{Level: InfoLevel, Message: "before idle"}, true, true))

	// Pretend the sink sat untouched across a period boundary.
	s.rot.periodStart = time.Now().Add(-2 * time.Hour)
	s.maintain(time.Now())

	assert.Len(t, rotatedFiles(t, dir), 1)
	assert.Empty(t, readFile(t, path))
}

func TestMaintainSkipsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	s, err := newSink(1, SinkConfig{Path: path, Rotation: "hourly"}, nil, discardReport)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.close()) }()

	s.rot.periodStart = time.Now().Add(-2 * time.Hour)
	s.maintain(time.Now())

	assert.Empty(t, rotatedFiles(t, dir))
}

func TestSinkFilterDropsBeforeWrite(t *testing.T) {
	var out bytes.Buffer
	s, err := newSink(1, SinkConfig{MinLevel: ErrorLevel, ModuleFilter: "billing"}, &out, discardReport)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.close()) }()

	require.NoError(t, s.log(Record{Level: ErrorLevel, Module: "auth", Message: "no"}, true, true))
	require.NoError(t, s.log(Record{Level: InfoLevel, Module: "billing", Message: "no"}, true, true))
	require.NoError(t, s.log(Record{Level: ErrorLevel, Module: "billing", Message: "yes"}, true, true))

	assert.Equal(t, "[ERROR] yes\n", out.String())
}
