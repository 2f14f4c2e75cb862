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


package badger

import "github.com/chorusqa/chorus/storage"

// NewMemoryRepositories creates in-memory content and discussion repositories for testing.
// Returns contentRepo, discussionRepo, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.ContentRepository, storage.DiscussionRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	contentRepo, err := NewContentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	discussionRepo, err := NewDiscussionRepository(backend)
	if err != nil {
		contentRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return contentRepo, discussionRepo, backend, nil
}
