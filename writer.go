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
	"bytes"
	"io"
)

// destination is the physical write target of a sink: a rotating file or a
// console stream. Callers serialize access through the sink's write lock.
type destination interface {
	// WriteBatch appends the items in order, coalescing them into as few
	// writes as the rotation boundaries allow.
	WriteBatch(items [][]byte) error
	// Sync pushes buffered bytes to the underlying medium.
	Sync() error
	Close() error
}

// consoleDest writes to a terminal stream. No rotation, no retention.
type consoleDest struct {
	w io.Writer
}

func newConsoleDest(w io.Writer) *consoleDest {
	return &consoleDest{w: w}
}

func (c *consoleDest) WriteBatch(items [][]byte) error {
	if len(items) == 1 {
		_, err := c.w.Write(items[0])
		return err
	}

	var buf bytes.Buffer
	for _, item := range items {
		buf.Write(item)
	}
	_, err := c.w.Write(buf.Bytes())
	return err
}

func (c *consoleDest) Sync() error {
	return nil
}

func (c *consoleDest) Close() error {
	return nil
}
