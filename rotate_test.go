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
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "github.com/driftlog/driftlog/errorx"
)

var rotatedNameRe = regexp.MustCompile(`^app_\d{8}_\d{6}(\.\d+)?\.log(\.gz)?$`)

func discardReport(error) {}

func rotatedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		if entry.Name() == "app.log" {
			continue
		}
		names = append(names, entry.Name())
	}
	return names
}

func TestParseRotation(t *testing.T) {
	cases := map[string]time.Duration{
		"":        0,
		"hourly":  time.Hour,
		"daily":   24 * time.Hour,
		"weekly":  7 * 24 * time.Hour,
		"monthly": 30 * 24 * time.Hour,
		"yearly":  365 * 24 * time.Hour,
	}
	for name, want := range cases {
		got, err := parseRotation(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := parseRotation("fortnightly")
	assert.ErrorIs(t, err, ex.ErrInvalidConfig)
}

func TestSizeRotationAtBoundary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	r, err := newRotator(SinkConfig{Path: path, SizeLimit: 100}, discardReport)
	require.NoError(t, err)
	defer r.Close()

	line := []byte(strings.Repeat("x", 29) + "\n")
	for i := 0; i < 4; i++ {
		require.NoError(t, r.Write(line))
	}

	rotated := rotatedFiles(t, dir)
	require.Len(t, rotated, 1, "exactly one rotation expected")
	assert.Regexp(t, rotatedNameRe, rotated[0])

	info, err := os.Stat(filepath.Join(dir, rotated[0]))
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(100), "pre-rotation file must not exceed the limit")
	assert.Equal(t, int64(90), info.Size())

	// The overflow record landed in the fresh active file.
	active, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(30), active.Size())
	assert.Equal(t, int64(30), r.size)
}

func TestRotationPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	r, err := newRotator(SinkConfig{Path: path, SizeLimit: 64}, discardReport)
	require.NoError(t, err)
	defer r.Close()

	var want []string
	for i := 0; i < 40; i++ {
		line := "record-" + strings.Repeat("0", 2) + string(rune('a'+i%26)) + "-" + time.Now().Format("150405") + "\n"
		want = append(want, strings.TrimSuffix(line, "\n"))
		require.NoError(t, r.Write([]byte(line)))
	}

	// Concatenate rotated files oldest-first, then the active file; the
	// result must equal the submission order.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	type file struct {
		name string
		mod  time.Time
	}
	var rotated []file
	for _, entry := range entries {
		if entry.Name() == "app.log" {
			continue
		}
		info, ierr := entry.Info()
		require.NoError(t, ierr)
		rotated = append(rotated, file{name: entry.Name(), mod: info.ModTime()})
	}
	for i := range rotated {
		for j := i + 1; j < len(rotated); j++ {
			older := rotated[i].mod.Before(rotated[j].mod) ||
				(rotated[i].mod.Equal(rotated[j].mod) && rotated[i].name < rotated[j].name)
			if !older {
				rotated[i], rotated[j] = rotated[j], rotated[i]
			}
		}
	}

	var got []string
	for _, f := range rotated {
		got = append(got, readLines(t, filepath.Join(dir, f.name))...)
	}
	got = append(got, readLines(t, path)...)
	assert.Equal(t, want, got)
}

func TestRetentionKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	r, err := newRotator(SinkConfig{Path: path, SizeLimit: 20, Retention: 2}, discardReport)
	require.NoError(t, err)
	defer r.Close()

	line := []byte(strings.Repeat("y", 15) + "\n")
	// Each pair of writes forces one rotation; five rotations total.
	for i := 0; i < 11; i++ {
		require.NoError(t, r.Write(line))
	}

	rotated := rotatedFiles(t, dir)
	assert.Len(t, rotated, 2, "retention must keep exactly two rotated files")
	for _, name := range rotated {
		assert.Regexp(t, rotatedNameRe, name)
	}

	// The active file is never a retention candidate.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRetentionZeroKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	r, err := newRotator(SinkConfig{Path: path, SizeLimit: 20}, discardReport)
	require.NoError(t, err)
	defer r.Close()

	line := []byte(strings.Repeat("z", 15) + "\n")
	for i := 0; i < 7; i++ {
		require.NoError(t, r.Write(line))
	}

	assert.Len(t, rotatedFiles(t, dir), 6)
}

func TestTimeRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	r, err := newRotator(SinkConfig{Path: path, Rotation: "hourly"}, discardReport)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Write([]byte("before boundary\n")))
	assert.Empty(t, rotatedFiles(t, dir))

	// Cross the period boundary.
	r.periodStart = time.Now().Add(-2 * time.Hour)
	require.NoError(t, r.Write([]byte("after boundary\n")))

	rotated := rotatedFiles(t, dir)
	require.Len(t, rotated, 1)
	assert.Equal(t, []string{"before boundary"}, readLines(t, filepath.Join(dir, rotated[0])))
	assert.Equal(t, []string{"after boundary"}, readLines(t, path))
	assert.WithinDuration(t, time.Now(), r.periodStart, time.Minute)
}

func TestRotatedNameCollisionProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	r, err := newRotator(SinkConfig{Path: path, SizeLimit: 20}, discardReport)
	require.NoError(t, err)
	defer r.Close()

	// Several rotations inside one second must never overwrite each other.
	line := []byte(strings.Repeat("q", 15) + "\n")
	for i := 0; i < 9; i++ {
		require.NoError(t, r.Write(line))
	}

	rotated := rotatedFiles(t, dir)
	assert.Len(t, rotated, 8)
	seen := make(map[string]struct{})
	for _, name := range rotated {
		_, dup := seen[name]
		assert.False(t, dup)
		seen[name] = struct{}{}
	}
}

func TestCompressRotated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	r, err := newRotator(SinkConfig{Path: path, SizeLimit: 20, Compress: true}, discardReport)
	require.NoError(t, err)
	defer r.Close()

	line := []byte(strings.Repeat("c", 15) + "\n")
	require.NoError(t, r.Write(line))
	require.NoError(t, r.Write(line))

	rotated := rotatedFiles(t, dir)
	require.Len(t, rotated, 1)
	assert.True(t, strings.HasSuffix(rotated[0], ".log.gz"), "rotated file should be gzipped, got %s", rotated[0])
}

func TestRotationFailureKeepsWriting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	var reported []error
	r, err := newRotator(SinkConfig{Path: path, SizeLimit: 20}, func(err error) {
		reported = append(reported, err)
	})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Write([]byte(strings.Repeat("a", 15)+"\n")))

	// Pull the active file out from under the rotator so the rename has
	// nothing to move. The open handle keeps accepting writes.
	require.NoError(t, os.Remove(path))
	require.NoError(t, r.Write([]byte(strings.Repeat("b", 15)+"\n")))

	// The rotation was abandoned, not fatal, and nothing was renamed.
	require.NotEmpty(t, reported)
	assert.ErrorIs(t, reported[0], ex.ErrRotation)
	assert.Empty(t, rotatedFiles(t, dir))

	// Every following qualifying write retries the rotation.
	require.NoError(t, r.Write([]byte(strings.Repeat("c", 15)+"\n")))
	assert.GreaterOrEqual(t, len(reported), 2)
	assert.ErrorIs(t, reported[1], ex.ErrRotation)
}

func TestParseSize(t *testing.T) {
	cases := map[string]int64{
		"100":   100,
		"5K":    5 << 10,
		"5KB":   5 << 10,
		"10MB":  10 << 20,
		"1G":    1 << 30,
		"2TB":   2 << 40,
		" 64k ": 64 << 10,
	}
	for in, want := range cases {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "-5MB", "12XB"} {
		_, err := ParseSize(in)
		assert.ErrorIs(t, err, ex.ErrInvalidConfig, in)
	}
}
