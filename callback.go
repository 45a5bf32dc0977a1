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
	"sync"
)

// RecordCallback observes every dispatched record. Callbacks run
// synchronously on the logging goroutine, in registration order, before the
// record reaches any sink.
type RecordCallback func(Record)

// ErrorCallback receives the engine's non-fatal maintenance failures
// (rotation, retention, compression, async write errors). With no error
// callback registered these fall back to the engine's error writer.
type ErrorCallback func(error)

// callbackSet holds the registered callbacks. A panicking callback is
// recovered and reported; it never aborts dispatch.
type callbackSet struct {
	mu      sync.RWMutex
	records []RecordCallback
	errs    []ErrorCallback
}

func (c *callbackSet) onRecord(cb RecordCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, cb)
}

func (c *callbackSet) onError(cb ErrorCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, cb)
}

func (c *callbackSet) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.errs = nil
}

func (c *callbackSet) fireRecord(r Record, report func(error)) {
	c.mu.RLock()
	callbacks := c.records
	c.mu.RUnlock()

	for _, cb := range callbacks {
		func() {
			defer func() {
				if p := recover(); p != nil {
					report(fmt.Errorf("record callback panic: %v", p))
				}
			}()
			cb(r)
		}()
	}
}

// fireError fans err out to the error callbacks and reports whether any
// handler was registered.
func (c *callbackSet) fireError(err error) bool {
	c.mu.RLock()
	callbacks := c.errs
	c.mu.RUnlock()

	for _, cb := range callbacks {
		func() {
			defer func() {
				// A panicking error handler has nowhere left to report to.
				_ = recover()
			}()
			cb(err)
		}()
	}

	return len(callbacks) > 0
}
