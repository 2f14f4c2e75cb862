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


package chorus

import (
	"log/slog"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/ai/openai"
	"github.com/chorusqa/chorus/archive"
	"github.com/chorusqa/chorus/pipeline"
	"github.com/chorusqa/chorus/storage"
	"github.com/chorusqa/chorus/storage/badger"
)

// Archive bundles the storage backend, repositories, and oracle provider
// behind one handle. It is the entry point for embedding the library.
type Archive struct {
	backend        *badger.Backend
	contentRepo    storage.ContentRepository
	discussionRepo storage.DiscussionRepository
	provider       ai.OracleProvider
	logger         *slog.Logger
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*archiveOptions)

type archiveOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithOracleConfig sets the oracle configuration.
// Default is ai.DefaultConfig().
func WithOracleConfig(config *ai.Config) ArchiveOption {
	return func(o *archiveOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemoryStorage keeps all data in memory. Intended for tests.
func WithInMemoryStorage() ArchiveOption {
	return func(o *archiveOptions) {
		o.inMemory = true
	}
}

// OpenArchive opens the archive at filePath, creating it if needed.
func OpenArchive(filePath string, opts ...ArchiveOption) (*Archive, error) {
	options := &archiveOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	contentRepo, err := badger.NewContentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	discussionRepo, err := badger.NewDiscussionRepository(backend)
	if err != nil {
		contentRepo.Close()
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		discussionRepo.Close()
		contentRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Archive{
		backend:        backend,
		contentRepo:    contentRepo,
		discussionRepo: discussionRepo,
		provider:       provider,
		logger:         slog.Default(),
	}, nil
}

// Close releases the provider, repositories, and backend, in that order.
func (a *Archive) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing oracle provider", "err", err)
	}

	if err := a.discussionRepo.Close(); err != nil {
		a.logger.Error("error closing discussion repository", "err", err)
		return err
	}
	if err := a.contentRepo.Close(); err != nil {
		a.logger.Error("error closing content repository", "err", err)
		return err
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (a *Archive) ContentRepository() storage.ContentRepository {
	return a.contentRepo
}

func (a *Archive) DiscussionRepository() storage.DiscussionRepository {
	return a.discussionRepo
}

// NewImporter creates an archive importer bound to this archive's storage.
func (a *Archive) NewImporter(opts ...archive.Option) (*archive.Importer, error) {
	return archive.NewImporter(a.contentRepo, a.discussionRepo, opts...)
}

// NewOrchestrator creates a query orchestrator bound to this archive's
// storage and oracle.
func (a *Archive) NewOrchestrator(opts ...pipeline.Option) (*pipeline.Orchestrator, error) {
	return pipeline.NewOrchestrator(a.contentRepo, a.discussionRepo, a.provider.Oracle(), opts...)
}
