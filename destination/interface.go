/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package destination

import (
	"time"

	"github.com/datazip-inc/tap-monday/types"
)

// Writer is where the sync engine sends its output. Implementations must be
// safe for concurrent use.
type Writer interface {
	// Schema announces a stream before any of its records
	Schema(stream *types.Stream, schema *types.Schema) error
	Record(stream string, record types.Record, extractedAt time.Time) error
	// State persists a checkpoint; records written before it must be flushed first
	State(state *types.State) error
	Message(msg *types.Message) error
	Close() error
}
