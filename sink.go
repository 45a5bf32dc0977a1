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
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// SinkID identifies one registered sink. IDs are allocated from a monotonic
// counter and never reused, even after removal.
type SinkID uint64

// sink is one registered output destination with its own filter, formatter,
// rotation state and optional async buffer.
type sink struct {
	id        SinkID
	cfg       SinkConfig
	filter    Filter
	formatter *Formatter
	enabled   atomic.Bool

	// mu is the dispatcher handoff critical section. Async enqueues and
	// sync inline writes both happen inside it, which is what preserves
	// per-sink submission order through to the physical write.
	mu sync.Mutex
	// wmu guards the physical destination so a rotation rename can never
	// race an in-flight write.
	wmu  sync.Mutex
	dest destination
	// rot aliases dest for file sinks; nil for console sinks.
	rot *rotator
	// inbox is non-nil for async sinks.
	inbox *writeBuffer
}

func newSink(id SinkID, cfg SinkConfig, consoleOut io.Writer, report func(error)) (*sink, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &sink{
		id:     id,
		cfg:    cfg,
		filter: newFilter(cfg.MinLevel, cfg.ModuleFilter, cfg.FunctionFilter),
	}

	// ANSI colors only make sense on a terminal.
	colors := NewANSIColorPlugin(cfg.Color && cfg.Path == "")
	s.formatter = NewFormatter(cfg.Format, cfg.JSON, cfg.DateEnabled, cfg.DateStyle, colors)

	if cfg.Path == "" {
		s.dest = newConsoleDest(consoleOut)
	} else {
		rot, err := newRotator(cfg, report)
		if err != nil {
			return nil, err
		}
		s.rot = rot
		s.dest = rot
	}

	s.enabled.Store(true)

	if cfg.AsyncWrite {
		capacity := cfg.BufferSize
		if capacity <= 0 {
			capacity = DefaultBufferSize
		}
		interval := cfg.FlushInterval
		if interval <= 0 {
			interval = DefaultFlushInterval
		}
		s.inbox = newWriteBuffer(capacity, interval, cfg.NonBlocking,
			s.writeBatch, s.syncDest, report)
	}

	return s, nil
}

// log filters, formats and routes one record. Async sinks return once the
// record is queued; sync sinks return the write result.
func (s *sink) log(r Record, consoleOK, fileOK bool) error {
	if !s.enabled.Load() {
		return nil
	}
	if s.rot == nil && !consoleOK {
		return nil
	}
	if s.rot != nil && !fileOK {
		return nil
	}
	if !s.filter.matches(r) {
		return nil
	}

	line := append([]byte(s.formatter.Format(r)), '\n')

	s.mu.Lock()
	if s.inbox != nil {
		err := s.inbox.submit(line)
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	return s.writeBatch([][]byte{line})
}

func (s *sink) writeBatch(items [][]byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.dest.WriteBatch(items)
}

func (s *sink) syncDest() error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.dest.Sync()
}

// flush blocks until everything accepted by this sink is physically written.
func (s *sink) flush() error {
	if s.inbox != nil {
		s.inbox.flush()
		return nil
	}
	return s.syncDest()
}

// maintain rotates a time-based file sink that has gone idle; without it a
// sink that stops receiving writes would never cross its period boundary.
func (s *sink) maintain(now time.Time) {
	if s.rot == nil {
		return
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.rot.size > 0 && s.rot.dueByTime(now) {
		if err := s.rot.rotate(now); err != nil {
			s.rot.report(err)
		}
	}
}

// close drains any pending async writes, then releases the destination.
// No record accepted before close is lost.
func (s *sink) close() error {
	if s.inbox != nil {
		s.inbox.close()
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.dest.Close()
}
