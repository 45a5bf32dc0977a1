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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDateStyle is the timestamp pattern used when none is configured.
const DefaultDateStyle = "YYYY-MM-DD HH:mm:ss"

// Formatter renders a record into its final output text. It supports a
// plain default line, a custom template with {placeholder} substitution,
// and a JSON mode emitting one object per line. Formatters are immutable
// after construction and safe for concurrent use.
type Formatter struct {
	template    string
	json        bool
	dateEnabled bool
	dateStyle   string
	colors      ColorPlugin
}

func NewFormatter(template string, jsonMode, dateEnabled bool, dateStyle string, colors ColorPlugin) *Formatter {
	if dateStyle == "" {
		dateStyle = DefaultDateStyle
	}
	if colors == nil {
		colors = NewANSIColorPlugin(false)
	}

	return &Formatter{
		template:    template,
		json:        jsonMode,
		dateEnabled: dateEnabled,
		dateStyle:   dateStyle,
		colors:      colors,
	}
}

// Format renders the record without a trailing newline.
func (f *Formatter) Format(r Record) string {
	if f.json {
		return f.formatJSON(r)
	}

	if f.template != "" {
		return f.applyTemplate(r)
	}

	var b strings.Builder
	if f.dateEnabled {
		b.WriteString(formatTimePattern(r.Timestamp, f.dateStyle))
		b.WriteString(" | ")
	}

	b.WriteString("[")
	b.WriteString(f.colors.Format(r.Level, r.levelName()))
	b.WriteString("] ")
	b.WriteString(r.Message)

	for _, fd := range r.Fields {
		b.WriteString(" | ")
		b.WriteString(fd.Key)
		b.WriteString("=")
		b.WriteString(fieldText(fd.Value))
	}

	return b.String()
}

// formatJSON builds the object by hand because field insertion order must
// survive into the output; values still go through encoding/json.
func (f *Formatter) formatJSON(r Record) string {
	var b strings.Builder
	b.WriteString(`{"timestamp":`)
	b.WriteString(strconv.Quote(r.Timestamp.Format(time.RFC3339Nano)))
	b.WriteString(`,"level":`)
	b.WriteString(strconv.Quote(r.levelName()))
	b.WriteString(`,"message":`)
	b.WriteString(strconv.Quote(r.Message))

	if r.Module != "" {
		b.WriteString(`,"module":`)
		b.WriteString(strconv.Quote(r.Module))
	}
	if r.Function != "" {
		b.WriteString(`,"function":`)
		b.WriteString(strconv.Quote(r.Function))
	}
	if r.Filename != "" {
		b.WriteString(`,"filename":`)
		b.WriteString(strconv.Quote(r.Filename))
		b.WriteString(`,"lineno":`)
		b.WriteString(strconv.Itoa(r.Line))
	}

	for _, fd := range r.Fields {
		b.WriteString(",")
		b.WriteString(strconv.Quote(fd.Key))
		b.WriteString(":")
		b.WriteString(jsonValue(fd.Value))
	}

	b.WriteString("}")
	return b.String()
}

func (f *Formatter) applyTemplate(r Record) string {
	out := f.template

	// {time:PATTERN} before the bare {time} placeholder.
	for {
		start := strings.Index(out, "{time:")
		if start < 0 {
			break
		}
		end := strings.Index(out[start:], "}")
		if end < 0 {
			break
		}
		pattern := out[start+len("{time:") : start+end]
		out = out[:start] + formatTimePattern(r.Timestamp, pattern) + out[start+end+1:]
	}

	replacer := strings.NewReplacer(
		"{time}", r.Timestamp.Format(time.RFC3339),
		"{level}", f.colors.Format(r.Level, r.levelName()),
		"{message}", r.Message,
		"{module}", r.Module,
		"{function}", r.Function,
		"{filename}", r.Filename,
		"{lineno}", strconv.Itoa(r.Line),
	)
	out = replacer.Replace(out)

	for _, fd := range r.Fields {
		out = strings.ReplaceAll(out, "{"+fd.Key+"}", fieldText(fd.Value))
	}

	return out
}

func fieldText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func jsonValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return strconv.Quote(fmt.Sprint(v))
	}
	return string(data)
}

// timeToken maps one human date-pattern token to its rendering. Tokens are
// matched longest-first by formatTimePattern.
type timeToken struct {
	token  string
	render func(t time.Time) string
}

func layoutToken(token, layout string) timeToken {
	return timeToken{token: token, render: func(t time.Time) string { return t.Format(layout) }}
}

var timeTokens = []timeToken{
	layoutToken("YYYY", "2006"),
	layoutToken("YY", "06"),
	layoutToken("MMMM", "January"),
	layoutToken("MMM", "Jan"),
	layoutToken("MM", "01"),
	layoutToken("dddd", "Monday"),
	layoutToken("ddd", "Mon"),
	layoutToken("DD", "02"),
	layoutToken("HH", "15"),
	layoutToken("hh", "03"),
	layoutToken("mm", "04"),
	layoutToken("ss", "05"),
	{token: "SSSSSS", render: func(t time.Time) string {
		return fmt.Sprintf("%06d", t.Nanosecond()/1e3)
	}},
	{token: "SSS", render: func(t time.Time) string {
		return fmt.Sprintf("%03d", t.Nanosecond()/1e6)
	}},
	layoutToken("A", "PM"),
	layoutToken("a", "pm"),
	layoutToken("ZZ", "-07:00"),
	layoutToken("Z", "-0700"),
}

// formatTimePattern renders t against a human pattern such as
// "YYYY-MM-DD HH:mm:ss.SSS". A single scan substitutes tokens longest-first
// so rendered values are never re-matched as tokens.
func formatTimePattern(t time.Time, pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, tk := range timeTokens {
			if strings.HasPrefix(pattern[i:], tk.token) {
				b.WriteString(tk.render(t))
				i += len(tk.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}

	return b.String()
}
