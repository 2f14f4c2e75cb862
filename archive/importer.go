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

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/storage"
	"github.com/panjf2000/ants/v2"
)

// maxLineBytes bounds a single archive line. Posts longer than this are
// skipped rather than aborting the whole file.
const maxLineBytes = 1 << 20

// Importer reads newline-delimited JSON archives and writes them to storage.
// Batches are flushed concurrently through a worker pool.
type Importer struct {
	content     storage.ContentRepository
	discussions storage.DiscussionRepository
	pool        *ants.Pool
	batchSize   int
	logger      *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for concurrent batch writes.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(imp *Importer) error {
		if size < 1 {
			size = 1
		}
		if imp.pool != nil {
			imp.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		imp.pool = pool
		return nil
	}
}

// WithBatchSize sets how many records are written per storage call.
// Default is 500.
func WithBatchSize(size int) Option {
	return func(imp *Importer) error {
		if size < 1 {
			size = 1
		}
		imp.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(imp *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		imp.logger = logger
		return nil
	}
}

// NewImporter creates an archive importer.
func NewImporter(
	content storage.ContentRepository,
	discussions storage.DiscussionRepository,
	opts ...Option,
) (*Importer, error) {
	if content == nil {
		return nil, ErrContentRepositoryRequired
	}
	if discussions == nil {
		return nil, ErrDiscussionRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	imp := &Importer{
		content:     content,
		discussions: discussions,
		pool:        pool,
		batchSize:   500,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(imp); optErr != nil {
			imp.Release()
			return nil, optErr
		}
	}

	imp.logger = imp.logger.With("component", "importer")
	return imp, nil
}

// Report summarizes one import run.
type Report struct {
	Added   int
	Skipped int
}

// itemRecord is the archive wire format for one post.
type itemRecord struct {
	Id        uint64    `json:"id,omitempty"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	LinkedIds []uint64  `json:"linked_ids,omitempty"`
}

// groupRecord is the archive wire format for one discussion group.
type groupRecord struct {
	AnchorId uint64        `json:"anchor_id"`
	HasDrift bool          `json:"has_drift"`
	Topics   []topicRecord `json:"topics,omitempty"`
}

type topicRecord struct {
	Label     string   `json:"label"`
	Keywords  []string `json:"keywords,omitempty"`
	Phrases   []string `json:"phrases,omitempty"`
	Rationale string   `json:"rationale,omitempty"`
}

// ImportItems reads one post per line from r and stores each under source.
// Malformed and invalid lines are skipped with a warning. A storage write
// failure aborts the import; records already flushed stay in storage.
func (imp *Importer) ImportItems(ctx context.Context, source string, r io.Reader) (*Report, error) {
	if source == "" {
		return nil, ErrSourceRequired
	}

	report := &Report{}
	flusher := newBatchFlusher(imp.pool, imp.batchSize, func(items []*core.ContentItem) error {
		_, err := imp.content.AddItems(ctx, items...)
		return err
	})

	lineNo := 0
	scanner := newLineScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec itemRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			imp.logger.Warn("skipping malformed line", "source", source, "line", lineNo, "err", err)
			report.Skipped++
			continue
		}

		item := &core.ContentItem{
			Id:        core.ID(rec.Id),
			Source:    source,
			Author:    rec.Author,
			Text:      rec.Text,
			Timestamp: rec.Timestamp,
		}
		for _, linked := range rec.LinkedIds {
			item.LinkedIds = append(item.LinkedIds, core.ID(linked))
		}

		if err := core.ValidateContentItem(item); err != nil {
			imp.logger.Warn("skipping invalid item", "source", source, "line", lineNo, "err", err)
			report.Skipped++
			continue
		}

		if err := flusher.add(item); err != nil {
			return report, err
		}
		report.Added++
	}
	if err := scanner.Err(); err != nil {
		flusher.wait()
		return report, err
	}

	if err := flusher.finish(); err != nil {
		return report, err
	}

	imp.logger.Info("imported items", "source", source, "added", report.Added, "skipped", report.Skipped)
	return report, nil
}

// ImportDiscussions reads one discussion group per line from r and stores
// each under source. Skipping and failure semantics match ImportItems.
func (imp *Importer) ImportDiscussions(ctx context.Context, source string, r io.Reader) (*Report, error) {
	if source == "" {
		return nil, ErrSourceRequired
	}

	report := &Report{}
	flusher := newBatchFlusher(imp.pool, imp.batchSize, func(groups []*core.DiscussionGroup) error {
		return imp.discussions.AddDiscussionGroups(ctx, groups...)
	})

	lineNo := 0
	scanner := newLineScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec groupRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			imp.logger.Warn("skipping malformed line", "source", source, "line", lineNo, "err", err)
			report.Skipped++
			continue
		}

		group := &core.DiscussionGroup{
			AnchorId: core.ID(rec.AnchorId),
			Source:   source,
			HasDrift: rec.HasDrift,
		}
		for _, topic := range rec.Topics {
			group.Topics = append(group.Topics, core.DriftTopic{
				Label:     topic.Label,
				Keywords:  topic.Keywords,
				Phrases:   topic.Phrases,
				Rationale: topic.Rationale,
			})
		}

		if err := core.ValidateDiscussionGroup(group); err != nil {
			imp.logger.Warn("skipping invalid group", "source", source, "line", lineNo, "err", err)
			report.Skipped++
			continue
		}

		if err := flusher.add(group); err != nil {
			return report, err
		}
		report.Added++
	}
	if err := scanner.Err(); err != nil {
		flusher.wait()
		return report, err
	}

	if err := flusher.finish(); err != nil {
		return report, err
	}

	imp.logger.Info("imported discussion groups", "source", source, "added", report.Added, "skipped", report.Skipped)
	return report, nil
}

// Release releases the worker pool.
// The importer should not be used after calling Release.
func (imp *Importer) Release() {
	if imp.pool != nil {
		imp.pool.Release()
	}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return scanner
}

// batchFlusher accumulates records and flushes full batches through the
// worker pool. The first flush error sticks and stops further writes.
type batchFlusher[T any] struct {
	pool      *ants.Pool
	batchSize int
	flush     func([]T) error

	pending []T
	wg      sync.WaitGroup

	mu       sync.Mutex
	firstErr error
}

func newBatchFlusher[T any](pool *ants.Pool, batchSize int, flush func([]T) error) *batchFlusher[T] {
	return &batchFlusher[T]{pool: pool, batchSize: batchSize, flush: flush}
}

func (f *batchFlusher[T]) add(record T) error {
	f.pending = append(f.pending, record)
	if len(f.pending) >= f.batchSize {
		return f.submit()
	}
	return f.err()
}

func (f *batchFlusher[T]) submit() error {
	if err := f.err(); err != nil {
		return err
	}

	batch := f.pending
	f.pending = nil

	f.wg.Add(1)
	submitErr := f.pool.Submit(func() {
		defer f.wg.Done()
		if err := f.flush(batch); err != nil {
			f.mu.Lock()
			if f.firstErr == nil {
				f.firstErr = err
			}
			f.mu.Unlock()
		}
	})
	if submitErr != nil {
		f.wg.Done()
		return submitErr
	}
	return nil
}

// finish flushes the remaining partial batch and waits for in-flight writes.
func (f *batchFlusher[T]) finish() error {
	if len(f.pending) > 0 {
		if err := f.submit(); err != nil {
			f.wait()
			return err
		}
	}
	f.wait()
	return f.err()
}

func (f *batchFlusher[T]) wait() {
	f.wg.Wait()
}

func (f *batchFlusher[T]) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.firstErr
}
