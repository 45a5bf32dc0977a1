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

// Color is an ANSI SGR color code.
type Color uint8

const (
	RedColor       Color = 31
	GreenColor     Color = 32
	YellowColor    Color = 33
	BlueColor      Color = 34
	MagentaColor   Color = 35
	CyanColor      Color = 36
	WhiteColor     Color = 37
	BrightRedColor Color = 91
)

// Paint wraps s in the escape sequence for the color.
func (c Color) Paint(s string) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", uint8(c), s)
}

// ColorPlugin renders the level tag of a record. Implementations decide
// whether and how to colorize it.
type ColorPlugin interface {
	Format(level Level, name string) string
	SetLevelColor(level Level, c Color)
}

// ANSIColorPlugin colorizes level tags with per-level ANSI codes. When
// disabled it renders the plain tag, so sinks can share one code path.
type ANSIColorPlugin struct {
	enabled   bool
	mu        sync.RWMutex
	overrides map[Level]Color
}

func NewANSIColorPlugin(enabled bool) *ANSIColorPlugin {
	return &ANSIColorPlugin{
		enabled:   enabled,
		overrides: make(map[Level]Color),
	}
}

// SetLevelColor overrides the default color for one level.
func (p *ANSIColorPlugin) SetLevelColor(level Level, c Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides[level] = c
}

func (p *ANSIColorPlugin) Format(level Level, name string) string {
	if name == "" {
		name = level.String()
	}

	if !p.enabled {
		return name
	}

	p.mu.RLock()
	c, ok := p.overrides[level]
	p.mu.RUnlock()
	if !ok {
		c = level.defaultColor()
	}

	return c.Paint(name)
}
