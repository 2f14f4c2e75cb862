// Copyright 2025 Chorus Labs
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


package pipeline

import "errors"

var (
	// ErrOracleRequired indicates that no oracle was provided.
	ErrOracleRequired = errors.New("oracle is required")

	// ErrContentRepositoryRequired indicates that no content repository was provided.
	ErrContentRepositoryRequired = errors.New("content repository is required")

	// ErrDiscussionRepositoryRequired indicates that no discussion repository was provided.
	ErrDiscussionRepositoryRequired = errors.New("discussion repository is required")

	// ErrInvalidMaxAttempts indicates maxAttempts <= 0 was passed to retry.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrAllChunksFailed indicates that classification produced nothing:
	// every chunk failed both the per-chunk retries and the global pass.
	ErrAllChunksFailed = errors.New("all classification chunks failed")

	// ErrNoSources indicates that a query resolved to zero sources.
	ErrNoSources = errors.New("no sources to query")

	// ErrNothingToSynthesize indicates that no items survived the
	// earlier stages for the synthesis call.
	ErrNothingToSynthesize = errors.New("no items to synthesize from")
)
