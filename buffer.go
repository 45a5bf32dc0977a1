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
	"sync"
	"time"

	ex "github.com/driftlog/driftlog/errorx"
)

// message is one unit in a sink's async inbox. Either data to write, or a
// flush barrier: the consumer closes barrier once everything queued before
// it has been physically written.
type message struct {
	data    []byte
	barrier chan struct{}
}

// writeBuffer decouples producers from sink I/O: a bounded inbox channel
// plus exactly one consumer goroutine. A full inbox blocks the producer
// (backpressure) unless the non-blocking policy was configured; records are
// never silently dropped. The consumer batches everything immediately
// available into a single write and a ticker forces periodic syncs so a
// quiet sink still becomes visible on disk.
type writeBuffer struct {
	inbox       chan message
	nonBlocking bool
	interval    time.Duration

	// Physical batch write and sync, supplied by the owning sink.
	write  func(items [][]byte) error
	sync   func() error
	report func(error)

	// mu guards the closed flag against the inbox channel closing; the
	// consumer itself needs no lock, it is the only reader.
	mu     sync.RWMutex
	closed bool
	done   sync.WaitGroup
}

func newWriteBuffer(capacity int, interval time.Duration, nonBlocking bool,
	write func([][]byte) error, syncFn func() error, report func(error),
) *writeBuffer {
	wb := &writeBuffer{
		inbox:       make(chan message, capacity),
		nonBlocking: nonBlocking,
		interval:    interval,
		write:       write,
		sync:        syncFn,
		report:      report,
	}

	wb.done.Add(1)
	go wb.run()

	return wb
}

// submit enqueues one rendered record and returns once it is queued. With
// the default policy a full inbox blocks until the consumer frees space.
func (wb *writeBuffer) submit(p []byte) error {
	wb.mu.RLock()
	defer wb.mu.RUnlock()

	if wb.closed {
		return ex.ErrBufferClosed
	}

	m := message{data: p}
	if wb.nonBlocking {
		select {
		case wb.inbox <- m:
			return nil
		default:
			return ex.ErrQueueFull
		}
	}

	wb.inbox <- m
	return nil
}

// flush is a synchronous barrier: it returns only after every record queued
// before it has been written and synced. Flushing a closed buffer is a
// no-op; close already drained it.
func (wb *writeBuffer) flush() {
	wb.mu.RLock()
	if wb.closed {
		wb.mu.RUnlock()
		return
	}
	m := message{barrier: make(chan struct{})}
	wb.inbox <- m
	wb.mu.RUnlock()

	<-m.barrier
}

// close stops accepting records, waits for the consumer to drain and write
// everything already queued, then returns. The consumer is never stopped
// mid-write.
func (wb *writeBuffer) close() {
	wb.mu.Lock()
	if wb.closed {
		wb.mu.Unlock()
		wb.done.Wait()
		return
	}
	wb.closed = true
	close(wb.inbox)
	wb.mu.Unlock()

	wb.done.Wait()
}

func (wb *writeBuffer) run() {
	defer wb.done.Done()

	ticker := time.NewTicker(wb.interval)
	defer ticker.Stop()

	for {
		select {
		case m, ok := <-wb.inbox:
			if !ok {
				if err := wb.sync(); err != nil {
					wb.report(err)
				}
				return
			}
			wb.drain(m)
		case <-ticker.C:
			if err := wb.sync(); err != nil {
				wb.report(err)
			}
		}
	}
}

// drain gathers the first message plus everything immediately available and
// hands the batch to one write call. Barriers are released only after the
// batch they arrived with is on disk.
func (wb *writeBuffer) drain(first message) {
	items := make([][]byte, 0, 16)
	var barriers []chan struct{}

	add := func(m message) {
		if m.barrier != nil {
			barriers = append(barriers, m.barrier)
			return
		}
		items = append(items, m.data)
	}
	add(first)

gather:
	for {
		select {
		case m, ok := <-wb.inbox:
			if !ok {
				break gather
			}
			add(m)
		default:
			break gather
		}
	}

	if len(items) > 0 {
		if err := wb.write(items); err != nil {
			wb.report(err)
		}
	}

	if len(barriers) > 0 {
		if err := wb.sync(); err != nil {
			wb.report(err)
		}
		for _, b := range barriers {
			close(b)
		}
	}
}
