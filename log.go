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
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	ex "github.com/driftlog/driftlog/errorx"
)

// callerBaseSkip is the frame depth from captureCaller up to the caller of
// a public log method.
const callerBaseSkip = 3

// Engine routes log records to a set of independently configured sinks.
// Construct one with New, hand it around explicitly, and Close it on
// shutdown; there is no process-wide singleton. All methods are safe for
// concurrent use.
type Engine struct {
	cfg *Config

	mu     sync.RWMutex
	sinks  map[SinkID]*sink
	nextID atomic.Uint64

	enabled atomic.Bool
	closed  atomic.Bool

	boundMu sync.RWMutex
	bound   Fields

	levelMu sync.RWMutex
	custom  map[string]CustomLevel

	callbacks *callbackSet
	cr        *cron.Cron
}

func New(opts ...Options) *Engine {
	cfg := &Config{
		level:           TraceLevel,
		consoleDisplay:  true,
		fileStorage:     true,
		consoleOut:      os.Stdout,
		errOut:          os.Stderr,
		maintenanceSpec: DefaultMaintenanceSpec,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	e := &Engine{
		cfg:       cfg,
		sinks:     make(map[SinkID]*sink),
		custom:    make(map[string]CustomLevel),
		callbacks: &callbackSet{},
	}
	e.enabled.Store(true)

	if cfg.maintenanceSpec != "" {
		e.cr = cron.New(cron.WithSeconds())
		if _, err := e.cr.AddFunc(cfg.maintenanceSpec, e.maintain); err != nil {
			e.reportErr(fmt.Errorf("maintenance spec %q: %w", cfg.maintenanceSpec, err))
		} else {
			e.cr.Start()
		}
	}

	return e
}

// AddSink registers a new destination and returns its identifier. The
// configuration must be fully resolved; validation failures and unopenable
// paths fail only this call. Async sinks start their consumer here.
func (e *Engine) AddSink(cfg SinkConfig) (SinkID, error) {
	if e.closed.Load() {
		return 0, ex.ErrEngineClosed
	}

	id := SinkID(e.nextID.Add(1))
	s, err := newSink(id, cfg, e.cfg.consoleOut, e.reportErr)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	e.sinks[id] = s
	e.mu.Unlock()

	return id, nil
}

// RemoveSink drains the sink's pending async writes, closes its file and
// drops it from the registry. Returns false for an unknown id.
func (e *Engine) RemoveSink(id SinkID) bool {
	e.mu.Lock()
	s, ok := e.sinks[id]
	if ok {
		delete(e.sinks, id)
	}
	e.mu.Unlock()

	if !ok {
		return false
	}

	if err := s.close(); err != nil {
		e.reportErr(fmt.Errorf("close sink %d: %w", id, err))
	}
	return true
}

// RemoveAllSinks removes every registered sink, draining each, and returns
// how many were removed.
func (e *Engine) RemoveAllSinks() int {
	e.mu.Lock()
	removed := make([]*sink, 0, len(e.sinks))
	for id, s := range e.sinks {
		removed = append(removed, s)
		delete(e.sinks, id)
	}
	e.mu.Unlock()

	for _, s := range removed {
		if err := s.close(); err != nil {
			e.reportErr(fmt.Errorf("close sink %d: %w", s.id, err))
		}
	}

	return len(removed)
}

// ListSinks returns the registered identifiers in ascending order.
func (e *Engine) ListSinks() []SinkID {
	e.mu.RLock()
	ids := make([]SinkID, 0, len(e.sinks))
	for id := range e.sinks {
		ids = append(ids, id)
	}
	e.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Engine) SinkCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sinks)
}

// EnableSink and DisableSink toggle one sink without removing it.
func (e *Engine) EnableSink(id SinkID) bool {
	return e.setSinkEnabled(id, true)
}

func (e *Engine) DisableSink(id SinkID) bool {
	return e.setSinkEnabled(id, false)
}

func (e *Engine) setSinkEnabled(id SinkID, enabled bool) bool {
	e.mu.RLock()
	s, ok := e.sinks[id]
	e.mu.RUnlock()
	if ok {
		s.enabled.Store(enabled)
	}
	return ok
}

// Enable and Disable toggle the whole engine. Logging against a disabled
// engine is a no-op, not an error.
func (e *Engine) Enable() {
	e.enabled.Store(true)
}

func (e *Engine) Disable() {
	e.enabled.Store(false)
}

// Bind attaches a context field to every subsequent record, ahead of
// call-site fields and in insertion order.
func (e *Engine) Bind(key string, value any) {
	e.boundMu.Lock()
	defer e.boundMu.Unlock()
	e.bound = e.bound.Set(key, value)
}

func (e *Engine) Unbind(key string) bool {
	e.boundMu.Lock()
	defer e.boundMu.Unlock()
	var ok bool
	e.bound, ok = e.bound.Remove(key)
	return ok
}

func (e *Engine) ClearBindings() {
	e.boundMu.Lock()
	defer e.boundMu.Unlock()
	e.bound = nil
}

// OnRecord registers a callback observing every dispatched record.
func (e *Engine) OnRecord(cb RecordCallback) {
	e.callbacks.onRecord(cb)
}

// OnError registers a callback receiving non-fatal maintenance failures.
func (e *Engine) OnError(cb ErrorCallback) {
	e.callbacks.onError(cb)
}

func (e *Engine) ClearCallbacks() {
	e.callbacks.clear()
}

// AddCustomLevel registers a named priority usable with LogNamed.
func (e *Engine) AddCustomLevel(name string, priority Level, color Color) error {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("%w: empty custom level name", ex.ErrInvalidLevel)
	}

	e.levelMu.Lock()
	defer e.levelMu.Unlock()
	if _, ok := e.custom[key]; ok {
		return fmt.Errorf("%w: %s", ex.ErrLevelExists, key)
	}
	e.custom[key] = CustomLevel{Name: key, Priority: priority, Color: color}
	return nil
}

func (e *Engine) RemoveCustomLevel(name string) bool {
	key := strings.ToUpper(strings.TrimSpace(name))

	e.levelMu.Lock()
	defer e.levelMu.Unlock()
	if _, ok := e.custom[key]; !ok {
		return false
	}
	delete(e.custom, key)
	return true
}

// LogNamed dispatches a record at a previously registered custom level.
func (e *Engine) LogNamed(name, msg string, fields ...Field) error {
	key := strings.ToUpper(strings.TrimSpace(name))

	e.levelMu.RLock()
	cl, ok := e.custom[key]
	e.levelMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ex.ErrInvalidLevel, name)
	}

	r := newRecord(cl.Priority, msg)
	r.LevelName = cl.Name
	return e.emit(r, fields)
}

// Log dispatches one record at an explicit level. The returned error joins
// the synchronous write failures of individual sinks; maintenance failures
// never surface here.
func (e *Engine) Log(level Level, msg string, fields ...Field) error {
	return e.emit(newRecord(level, msg), fields)
}

func (e *Engine) Trace(msg string, fields ...Field) error {
	return e.emit(newRecord(TraceLevel, msg), fields)
}

func (e *Engine) Debug(msg string, fields ...Field) error {
	return e.emit(newRecord(DebugLevel, msg), fields)
}

func (e *Engine) Info(msg string, fields ...Field) error {
	return e.emit(newRecord(InfoLevel, msg), fields)
}

func (e *Engine) Success(msg string, fields ...Field) error {
	return e.emit(newRecord(SuccessLevel, msg), fields)
}

func (e *Engine) Warning(msg string, fields ...Field) error {
	return e.emit(newRecord(WarningLevel, msg), fields)
}

func (e *Engine) Error(msg string, fields ...Field) error {
	return e.emit(newRecord(ErrorLevel, msg), fields)
}

func (e *Engine) Fail(msg string, fields ...Field) error {
	return e.emit(newRecord(FailLevel, msg), fields)
}

func (e *Engine) Critical(msg string, fields ...Field) error {
	return e.emit(newRecord(CriticalLevel, msg), fields)
}

// emit completes the record and fans it out to every sink whose filter
// accepts it. Dispatch is best-effort per sink: one sink's failure never
// blocks the others.
func (e *Engine) emit(r Record, fields []Field) error {
	if !e.enabled.Load() || e.closed.Load() {
		return nil
	}
	if !r.Level.enabled(e.cfg.level) {
		return nil
	}

	e.boundMu.RLock()
	merged := e.bound.clone()
	e.boundMu.RUnlock()
	for _, f := range fields {
		merged = merged.Set(f.Key, f.Value)
	}
	r.Fields = merged

	if e.cfg.enableCaller && r.Filename == "" {
		if module, function, file, line, ok := captureCaller(callerBaseSkip + e.cfg.callSkip); ok {
			r.Module = module
			r.Function = function
			r.Filename = file
			r.Line = line
		}
	}

	e.callbacks.fireRecord(r, e.reportErr)

	e.mu.RLock()
	sinks := make([]*sink, 0, len(e.sinks))
	for _, s := range e.sinks {
		sinks = append(sinks, s)
	}
	e.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		if err := s.log(r, e.cfg.consoleDisplay, e.cfg.fileStorage); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", s.id, err))
		}
	}

	return errors.Join(errs...)
}

// Flush blocks until every sink has physically written everything it has
// accepted. There is no timeout; callers needing a bounded shutdown wrap it
// themselves.
func (e *Engine) Flush() error {
	e.mu.RLock()
	sinks := make([]*sink, 0, len(e.sinks))
	for _, s := range e.sinks {
		sinks = append(sinks, s)
	}
	e.mu.RUnlock()

	var g errgroup.Group
	for _, s := range sinks {
		g.Go(s.flush)
	}
	return g.Wait()
}

// FlushSink blocks until one sink has physically written everything it has
// accepted.
func (e *Engine) FlushSink(id SinkID) error {
	e.mu.RLock()
	s, ok := e.sinks[id]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %d", ex.ErrSinkNotFound, id)
	}
	return s.flush()
}

// Close stops the maintenance job, disables dispatch and removes every
// sink, draining async buffers on the way out. Closing twice is a no-op.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	if e.cr != nil {
		e.cr.Stop()
	}
	e.enabled.Store(false)
	e.RemoveAllSinks()

	return nil
}

// maintain runs on the cron schedule: it rotates time-based file sinks that
// have gone idle, so period boundaries are honored even without writes.
func (e *Engine) maintain() {
	now := time.Now()

	e.mu.RLock()
	sinks := make([]*sink, 0, len(e.sinks))
	for _, s := range e.sinks {
		sinks = append(sinks, s)
	}
	e.mu.RUnlock()

	for _, s := range sinks {
		s.maintain(now)
	}
}

// reportErr routes a non-fatal engine failure to the error callbacks, or to
// the error writer when none are registered. Logging never stops because
// maintenance failed.
func (e *Engine) reportErr(err error) {
	if err == nil {
		return
	}
	if e.callbacks.fireError(err) {
		return
	}
	_, _ = fmt.Fprintf(e.cfg.errOut, "driftlog: %v\n", err)
}
