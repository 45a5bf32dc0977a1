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
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ex "github.com/driftlog/driftlog/errorx"
)

const (
	// DefaultBufferSize is the async queue capacity in records.
	DefaultBufferSize = 1000
	// DefaultFlushInterval bounds how long a queued record may sit before a
	// forced drain.
	DefaultFlushInterval = 100 * time.Millisecond
	// DefaultMaintenanceSpec drives the idle maintenance job: time-based
	// rotation checks for sinks that see no writes.
	DefaultMaintenanceSpec = "@every 1m"
)

// Config holds engine-wide settings. Per-destination settings live in
// SinkConfig.
type Config struct {
	// Global minimum level; records below it are dropped before any sink
	// filter runs.
	level Level
	// Global display toggles. A false consoleDisplay silences every console
	// sink, a false fileStorage silences every file sink.
	consoleDisplay bool
	fileStorage    bool
	// Capture module/function/file/line at the log call site.
	enableCaller bool
	callSkip     int
	// Destination for console sinks and for the engine's own fault reports.
	consoleOut io.Writer
	errOut     io.Writer
	// Cron spec for the background maintenance job. Empty disables it.
	maintenanceSpec string
}

// SinkConfig is the fully-resolved description of one output destination.
// It is the sole input to AddSink; any layering of defaults, files and
// overrides happens upstream.
type SinkConfig struct {
	// Path is the log file path. Empty means console output.
	Path string
	// Rotation is an interval name: hourly, daily, weekly, monthly, yearly.
	// Empty disables time-based rotation. Monthly and yearly are fixed
	// 30-day and 365-day windows, not calendar boundaries.
	Rotation string
	// SizeLimit rotates the file when appending a record would push it past
	// this many bytes. Zero disables size-based rotation.
	SizeLimit int64
	// Retention is the number of rotated files to keep. Zero keeps all.
	Retention int
	// Compress gzips rotated files after a successful rotation.
	Compress bool

	// Filter criteria. Zero/empty values always pass.
	MinLevel       Level
	ModuleFilter   string
	FunctionFilter string

	// AsyncWrite decouples callers from I/O through a bounded queue owned
	// by one background consumer.
	AsyncWrite bool
	// BufferSize is the queue capacity in records; 0 means DefaultBufferSize.
	BufferSize int
	// FlushInterval forces a periodic drain; 0 means DefaultFlushInterval.
	FlushInterval time.Duration
	// NonBlocking makes a full queue an error instead of applying
	// backpressure. Off by default: records are never silently dropped.
	NonBlocking bool

	// Format is a template with {placeholder} substitution. Empty selects
	// the default line format.
	Format string
	// JSON emits one object per line instead of text.
	JSON bool
	// Color enables ANSI level colors. Only honored for console sinks.
	Color bool
	// DateEnabled prepends a timestamp to the default line format.
	DateEnabled bool
	// DateStyle is a human pattern like "YYYY-MM-DD HH:mm:ss.SSS".
	DateStyle string
}

func (c SinkConfig) validate() error {
	if c.Retention < 0 {
		return fmt.Errorf("%w: retention %d", ex.ErrInvalidConfig, c.Retention)
	}
	if c.SizeLimit < 0 {
		return fmt.Errorf("%w: size limit %d", ex.ErrInvalidConfig, c.SizeLimit)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: buffer size %d", ex.ErrInvalidConfig, c.BufferSize)
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("%w: flush interval %s", ex.ErrInvalidConfig, c.FlushInterval)
	}
	if _, err := parseRotation(c.Rotation); err != nil {
		return err
	}
	return nil
}

// ParseSize converts a human size such as "100", "512K", "10MB" or "1GB"
// into bytes.
func ParseSize(s string) (int64, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	if str == "" {
		return 0, fmt.Errorf("%w: empty size", ex.ErrInvalidConfig)
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(str, "TB"), strings.HasSuffix(str, "T"):
		multiplier = 1 << 40
	case strings.HasSuffix(str, "GB"), strings.HasSuffix(str, "G"):
		multiplier = 1 << 30
	case strings.HasSuffix(str, "MB"), strings.HasSuffix(str, "M"):
		multiplier = 1 << 20
	case strings.HasSuffix(str, "KB"), strings.HasSuffix(str, "K"):
		multiplier = 1 << 10
	}
	str = strings.TrimRight(str, "BKMGT")

	n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: size %q", ex.ErrInvalidConfig, s)
	}

	return n * multiplier, nil
}
