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

package errorx

import "errors"

var (
	ErrSinkCreation  = errors.New("sink creation failed")
	ErrSinkNotFound  = errors.New("sink not found")
	ErrInvalidConfig = errors.New("invalid sink configuration")
	ErrInvalidLevel  = errors.New("invalid log level")
	ErrLevelExists   = errors.New("custom level already exists")
)

var (
	ErrRotation  = errors.New("rotation failed")
	ErrRetention = errors.New("retention prune failed")
	ErrCompress  = errors.New("compression failed")
)

var (
	ErrBufferClosed = errors.New("async buffer is closed")
	ErrQueueFull    = errors.New("async queue is full")
	ErrEngineClosed = errors.New("engine is closed")
)
