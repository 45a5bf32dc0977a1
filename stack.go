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
	"runtime"
	"strings"
)

// pathParts is how many trailing path segments of the source file are kept
// when streamlining; full build paths are noise in log lines.
const pathParts = 3

// captureCaller resolves the origin of a log call: package path as module,
// bare function name, streamlined file path and line. ok is false when the
// runtime cannot resolve the frame.
func captureCaller(skip int) (module, function, file string, line int, ok bool) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", "", "", 0, false
	}

	if fn := runtime.FuncForPC(pc); fn != nil {
		module, function = splitFuncName(fn.Name())
	}

	return module, function, streamline(file), line, true
}

// splitFuncName splits a runtime symbol like
// "github.com/acme/app/web.(*Server).handle" into its package path and the
// trailing function name.
func splitFuncName(name string) (module, function string) {
	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	if dot < 0 {
		return "", name
	}
	dot += slash + 1

	module = name[:dot]
	function = name[dot+1:]
	if i := strings.LastIndex(function, "."); i >= 0 {
		function = function[i+1:]
	}

	return module, function
}

// streamline keeps only the last pathParts segments of a source file path.
func streamline(file string) string {
	sli := strings.Split(file, "/")
	if len(sli) <= pathParts {
		return file
	}

	return strings.Join(sli[len(sli)-pathParts:], "/")
}
