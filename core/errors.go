// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Engine error taxonomy. Only the recommendation orchestrator decides
// whether a given kind degrades the request or fails it.
var (
	// ErrDataIntegrity indicates a required source file is missing or
	// unparsable. Fatal to a rebuild.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrCacheCorruption indicates a cache artifact is missing, unreadable,
	// or schema-mismatched. Non-fatal; triggers a full rebuild.
	ErrCacheCorruption = errors.New("cache corruption")

	// ErrValidation indicates the query was rejected before any index work.
	ErrValidation = errors.New("invalid query")

	// ErrEmptyQuery indicates an empty query description.
	ErrEmptyQuery = errors.New("query description cannot be empty")

	// ErrExternalService indicates an LLM or embedding call failed, timed
	// out, or returned an unparsable response. The affected pipeline stage
	// is skipped.
	ErrExternalService = errors.New("external service error")

	// ErrIndexNotBuilt indicates a search was attempted before any index
	// was loaded or built.
	ErrIndexNotBuilt = errors.New("index not built")
)
