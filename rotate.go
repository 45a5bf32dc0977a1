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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ex "github.com/driftlog/driftlog/errorx"
)

// rotatedStampLayout is the timestamp inserted into rotated file names,
// producing <stem>_<YYYYMMDD>_<HHMMSS><ext>.
const rotatedStampLayout = "20060102_150405"

var rotationIntervals = map[string]time.Duration{
	"hourly": time.Hour,
	"daily":  24 * time.Hour,
	"weekly": 7 * 24 * time.Hour,
	// Fixed windows, not calendar boundaries.
	"monthly": 30 * 24 * time.Hour,
	"yearly":  365 * 24 * time.Hour,
}

func parseRotation(name string) (time.Duration, error) {
	if name == "" {
		return 0, nil
	}

	d, ok := rotationIntervals[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: rotation interval %q", ex.ErrInvalidConfig, name)
	}
	return d, nil
}

// rotator owns the active file of one file sink: it performs the physical
// writes, decides per write whether the file must roll over, renames rotated
// files and prunes the old ones. It is not safe for concurrent use; the
// owning sink serializes access so a rename can never race an in-flight
// write.
type rotator struct {
	// Active file path and its decomposition for rotated names.
	path string
	dir  string
	stem string
	ext  string

	sizeLimit int64
	interval  time.Duration
	retention int
	compress  bool

	file *os.File
	// Bytes physically written to the current active file. Reset to zero
	// exactly when a fresh file is opened.
	size int64
	// Start of the current rotation period.
	periodStart time.Time

	// Non-fatal maintenance failures are handed off here instead of
	// aborting the log call.
	report func(error)
}

func newRotator(cfg SinkConfig, report func(error)) (*rotator, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ex.ErrSinkCreation, dir, err)
	}

	file, err := os.OpenFile(cfg.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ex.ErrSinkCreation, cfg.Path, err)
	}

	var size int64
	if stat, serr := file.Stat(); serr == nil {
		size = stat.Size()
	}

	interval, err := parseRotation(cfg.Rotation)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	ext := filepath.Ext(cfg.Path)
	base := filepath.Base(cfg.Path)

	return &rotator{
		path:        cfg.Path,
		dir:         dir,
		stem:        strings.TrimSuffix(base, ext),
		ext:         ext,
		sizeLimit:   cfg.SizeLimit,
		interval:    interval,
		retention:   cfg.Retention,
		compress:    cfg.Compress,
		file:        file,
		size:        size,
		periodStart: time.Now(),
		report:      report,
	}, nil
}

// due reports whether the file must roll over before pending more bytes are
// appended. Size and time triggers combine with OR; the size trigger fires
// when the append would push the file past the limit, so the pre-rotation
// file never exceeds it.
func (r *rotator) due(pending int64, now time.Time) bool {
	if r.sizeLimit > 0 && r.size+pending > r.sizeLimit {
		return true
	}
	return r.dueByTime(now)
}

func (r *rotator) dueByTime(now time.Time) bool {
	return r.interval > 0 && now.Sub(r.periodStart) >= r.interval
}

// WriteBatch appends items in order, coalescing runs between rotation
// boundaries into single writes. A batch is split at a boundary so no write
// spans the old and the new file. Rotation failures are reported and the
// batch keeps going against the current file; write errors are returned.
func (r *rotator) WriteBatch(items [][]byte) error {
	now := time.Now()
	var buf bytes.Buffer
	var errs []error

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		n, err := r.file.Write(buf.Bytes())
		r.size += int64(n)
		if err != nil {
			errs = append(errs, err)
		}
		buf.Reset()
	}

	for _, item := range items {
		if r.due(int64(buf.Len()+len(item)), now) {
			flush()
			if err := r.rotate(now); err != nil {
				r.report(err)
			}
		}
		buf.Write(item)
	}
	flush()

	return errors.Join(errs...)
}

func (r *rotator) Write(p []byte) error {
	return r.WriteBatch([][]byte{p})
}

// rotate renames the active file to its timestamped name and reopens a
// fresh one. The old handle stays in place until the fresh file is open, so
// an abandoned rotation leaves the sink writing to the original file and
// the next qualifying write retries.
func (r *rotator) rotate(now time.Time) error {
	rotated := r.rotatedPath(now)

	if err := os.Rename(r.path, rotated); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ex.ErrRotation, r.path, err)
	}

	file, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		// Best effort to put the renamed file back so writes keep landing
		// in the path the caller configured.
		_ = os.Rename(rotated, r.path)
		return fmt.Errorf("%w: reopen %s: %v", ex.ErrRotation, r.path, err)
	}

	_ = r.file.Sync()
	_ = r.file.Close()
	r.file = file
	r.size = 0
	r.periodStart = now

	if r.compress {
		if err := compressRotated(rotated); err != nil {
			r.report(err)
		}
	}
	r.prune()

	return nil
}

// rotatedPath returns the timestamped name for the file being rotated out,
// probing with a numeric suffix when several rotations land in the same
// second.
func (r *rotator) rotatedPath(now time.Time) string {
	stamp := now.Format(rotatedStampLayout)
	rotated := filepath.Join(r.dir, r.stem+"_"+stamp+r.ext)
	for seq := 1; ; seq++ {
		if _, err := os.Stat(rotated); errors.Is(err, os.ErrNotExist) {
			if _, gzErr := os.Stat(rotated + gzSuffix); errors.Is(gzErr, os.ErrNotExist) {
				return rotated
			}
		}
		rotated = filepath.Join(r.dir, fmt.Sprintf("%s_%s.%d%s", r.stem, stamp, seq, r.ext))
	}
}

// prune deletes the oldest rotated siblings of the active file beyond the
// retention count. The active file is never a candidate. Zero retention
// keeps everything; individual delete failures are reported and do not stop
// the sweep.
func (r *rotator) prune() {
	if r.retention <= 0 {
		return
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		r.report(fmt.Errorf("%w: list %s: %v", ex.ErrRetention, r.dir, err))
		return
	}

	type rotatedFile struct {
		name string
		mod  time.Time
	}

	active := filepath.Base(r.path)
	var files []rotatedFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == active || !r.isRotated(name) {
			continue
		}
		info, ierr := entry.Info()
		if ierr != nil {
			continue
		}
		files = append(files, rotatedFile{name: name, mod: info.ModTime()})
	}

	if len(files) <= r.retention {
		return
	}

	// Newest first; the timestamped names break modification-time ties.
	sort.Slice(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.After(files[j].mod)
		}
		return files[i].name > files[j].name
	})

	for _, f := range files[r.retention:] {
		if err := os.Remove(filepath.Join(r.dir, f.name)); err != nil {
			r.report(fmt.Errorf("%w: remove %s: %v", ex.ErrRetention, f.name, err))
		}
	}
}

func (r *rotator) isRotated(name string) bool {
	if !strings.HasPrefix(name, r.stem+"_") {
		return false
	}
	return strings.HasSuffix(name, r.ext) || strings.HasSuffix(name, r.ext+gzSuffix)
}

func (r *rotator) Sync() error {
	return r.file.Sync()
}

func (r *rotator) Close() error {
	_ = r.file.Sync()
	return r.file.Close()
}
