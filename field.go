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

// Field is one structured key/value pair attached to a record.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field at a call site.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Fields is an ordered set of fields. Insertion order is preserved through
// formatting so repeated renders of the same record are byte-identical.
type Fields []Field

// Set replaces the value of an existing key in place or appends a new field,
// returning the updated slice.
func (f Fields) Set(key string, value any) Fields {
	for i := range f {
		if f[i].Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

// Get returns the value for key and whether it exists.
func (f Fields) Get(key string) (any, bool) {
	for i := range f {
		if f[i].Key == key {
			return f[i].Value, true
		}
	}
	return nil, false
}

// Remove deletes key, returning the updated slice and whether it was present.
func (f Fields) Remove(key string) (Fields, bool) {
	for i := range f {
		if f[i].Key == key {
			return append(f[:i], f[i+1:]...), true
		}
	}
	return f, false
}

func (f Fields) clone() Fields {
	if len(f) == 0 {
		return nil
	}
	out := make(Fields, len(f))
	copy(out, f)
	return out
}
