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

import "strings"

// Filter decides whether a sink accepts a record. All configured criteria
// must pass; an unset criterion always passes. Filters carry no mutable
// state and are safe for concurrent use.
type Filter struct {
	// Minimum accepted level. Zero means unset. The check is inclusive:
	// a record exactly at minLevel passes.
	minLevel Level
	// Module and function match when the record value equals the configured
	// string or has it as a prefix.
	module   string
	function string
}

func newFilter(minLevel Level, module, function string) Filter {
	return Filter{
		minLevel: minLevel,
		module:   module,
		function: function,
	}
}

func (f Filter) matches(r Record) bool {
	if f.minLevel != 0 && !r.Level.enabled(f.minLevel) {
		return false
	}

	if f.module != "" && !strings.HasPrefix(r.Module, f.module) {
		return false
	}

	if f.function != "" && !strings.HasPrefix(r.Function, f.function) {
		return false
	}

	return true
}
