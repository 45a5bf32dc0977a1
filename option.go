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

import "io"

type Options func(*Config)

// WithLevel sets the global minimum level. Default is TraceLevel so that
// per-sink filters decide.
func WithLevel(level Level) Options {
	return func(c *Config) {
		c.level = level
	}
}

// WithConsoleDisplay toggles output to every console sink at once.
func WithConsoleDisplay(enabled bool) Options {
	return func(c *Config) {
		c.consoleDisplay = enabled
	}
}

// WithFileStorage toggles output to every file sink at once.
func WithFileStorage(enabled bool) Options {
	return func(c *Config) {
		c.fileStorage = enabled
	}
}

// WithCaller captures module, function, file and line at each log call.
// skip is the extra caller depth for wrappers around the engine.
func WithCaller(skip int) Options {
	return func(c *Config) {
		c.enableCaller = true
		c.callSkip = skip
	}
}

// WithConsoleWriter redirects console sinks away from stdout.
func WithConsoleWriter(w io.Writer) Options {
	return func(c *Config) {
		c.consoleOut = w
	}
}

// WithErrorWriter redirects the engine's own fault reports away from stderr.
func WithErrorWriter(w io.Writer) Options {
	return func(c *Config) {
		c.errOut = w
	}
}

// WithMaintenanceSpec sets the cron spec of the background maintenance job
// that rotates idle time-based sinks. An empty spec disables the job.
func WithMaintenanceSpec(spec string) Options {
	return func(c *Config) {
		c.maintenanceSpec = spec
	}
}
