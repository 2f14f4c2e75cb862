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


package archive

import "errors"

var (
	// ErrContentRepositoryRequired is returned when a nil content repository is provided.
	ErrContentRepositoryRequired = errors.New("content repository is required")

	// ErrDiscussionRepositoryRequired is returned when a nil discussion repository is provided.
	ErrDiscussionRepositoryRequired = errors.New("discussion repository is required")

	// ErrSourceRequired is returned when an import is attempted without a source name.
	ErrSourceRequired = errors.New("source name is required")
)
