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
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	ex "github.com/driftlog/driftlog/errorx"
)

const gzSuffix = ".gz"

// compressRotated gzips a rotated file in place, replacing <name> with
// <name>.gz. The original is only removed after the archive is fully
// written, so a failure mid-way leaves the plain file behind.
func compressRotated(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ex.ErrCompress, path, err)
	}
	defer src.Close()

	dst, err := os.Create(path + gzSuffix)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ex.ErrCompress, path+gzSuffix, err)
	}

	gw, err := gzip.NewWriterLevel(dst, gzip.DefaultCompression)
	if err != nil {
		_ = dst.Close()
		return fmt.Errorf("%w: %v", ex.ErrCompress, err)
	}

	if _, err = io.Copy(gw, src); err == nil {
		err = gw.Close()
	} else {
		_ = gw.Close()
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path + gzSuffix)
		return fmt.Errorf("%w: compress %s: %v", ex.ErrCompress, path, err)
	}

	_ = src.Close()
	return os.Remove(path)
}
