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

import "time"

// Record is the immutable snapshot of one log event. It is built once by the
// engine and never mutated after dispatch begins; sinks and callbacks only
// read it.
type Record struct {
	// Capture timestamp, set when the record is created.
	Timestamp time.Time
	// Numeric priority used for filtering.
	Level Level
	// Display name for the level. Empty means the standard name of Level;
	// custom levels carry their registered name here.
	LevelName string
	// Message body, already rendered by the caller.
	Message string
	// Origin of the log call. Empty values mean unknown.
	Module   string
	Function string
	Filename string
	Line     int
	// Bound context fields followed by call-site fields, insertion order
	// preserved.
	Fields Fields
}

func newRecord(level Level, msg string) Record {
	return Record{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
	}
}

func (r Record) levelName() string {
	if r.LevelName != "" {
		return r.LevelName
	}
	return r.Level.String()
}
