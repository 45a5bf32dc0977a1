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
	"strings"

	ex "github.com/driftlog/driftlog/errorx"
)

// Level is a numeric log priority. Larger values are more severe. The gaps
// between the standard levels leave room for custom levels registered at
// runtime.
type Level uint8

const (
	TraceLevel    Level = 5
	DebugLevel    Level = 10
	InfoLevel     Level = 20
	SuccessLevel  Level = 25
	WarningLevel  Level = 30
	ErrorLevel    Level = 40
	FailLevel     Level = 45
	CriticalLevel Level = 50
)

// String returns the canonical upper-case name used in rendered output.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case SuccessLevel:
		return "SUCCESS"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	case FailLevel:
		return "FAIL"
	case CriticalLevel:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// enabled reports whether a record at this level passes a minimum-level
// filter. The boundary is inclusive: a record exactly at min passes.
func (l Level) enabled(min Level) bool {
	return l >= min
}

func (l Level) defaultColor() Color {
	switch l {
	case TraceLevel:
		return CyanColor
	case DebugLevel:
		return BlueColor
	case InfoLevel:
		return WhiteColor
	case SuccessLevel:
		return GreenColor
	case WarningLevel:
		return YellowColor
	case ErrorLevel:
		return RedColor
	case FailLevel:
		return MagentaColor
	case CriticalLevel:
		return BrightRedColor
	default:
		return WhiteColor
	}
}

func allLevels() []Level {
	return []Level{
		TraceLevel, DebugLevel, InfoLevel, SuccessLevel,
		WarningLevel, ErrorLevel, FailLevel, CriticalLevel,
	}
}

// ParseLevel resolves a level name, accepting the common WARN/CRIT aliases.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TraceLevel, nil
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "SUCCESS":
		return SuccessLevel, nil
	case "WARNING", "WARN":
		return WarningLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FAIL":
		return FailLevel, nil
	case "CRITICAL", "CRIT":
		return CriticalLevel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ex.ErrInvalidLevel, s)
	}
}

// CustomLevel is a named priority registered on the engine in addition to
// the standard set.
type CustomLevel struct {
	Name     string
	Priority Level
	Color    Color
}
