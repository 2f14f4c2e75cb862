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

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
	"github.com/panjf2000/ants/v2"
)

// Classifier splits a source's content into fixed-size chunks and
// classifies each item's relevance to the query, in parallel, with
// per-chunk retries plus one global retry pass over chunks that
// exhausted their budget. A chunk that fails both layers yields no
// classifications for its members and is recorded as a partial failure.
type Classifier struct {
	oracle ai.Oracle
	config ClassifierConfig
	logger *slog.Logger
}

// ClassificationOutcome is the classifier's best-effort result.
type ClassificationOutcome struct {
	// Items holds one ClassifiedItem per input item that any attempt
	// succeeded on, sorted high tier first.
	Items []core.ClassifiedItem
	// PartialFailures describes chunks that failed every attempt.
	PartialFailures []string
}

// NewClassifier creates a relevance classifier.
func NewClassifier(oracle ai.Oracle, config ClassifierConfig, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		oracle: oracle,
		config: config,
		logger: logger.With("component", "classifier"),
	}
}

// Classify classifies all items against the query. onChunk, if non-nil,
// is invoked after each chunk settles (successfully or not) with the
// number of settled chunks and the total.
//
// Returns ErrAllChunksFailed when not a single chunk produced results;
// callers treat that as fatal for the source.
func (c *Classifier) Classify(ctx context.Context, query string, items []*core.ContentItem, onChunk func(done, total int)) (*ClassificationOutcome, error) {
	if len(items) == 0 {
		return &ClassificationOutcome{}, nil
	}

	chunks := chunkItems(items, c.config.ChunkSize)
	results := make([][]core.ClassifiedItem, len(chunks))
	failures := make([]error, len(chunks))

	pool, err := ants.NewPool(c.config.Parallelism)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		settled int
	)

	for i, chunk := range chunks {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			classified, chunkErr := c.classifyChunkWithRetry(ctx, query, chunk)

			mu.Lock()
			defer mu.Unlock()
			results[i] = classified
			failures[i] = chunkErr
			settled++
			if onChunk != nil {
				onChunk(settled, len(chunks))
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failures[i] = submitErr
			settled++
			mu.Unlock()
		}
	}
	wg.Wait()

	// Global retry pass: one more attempt for every chunk that
	// exhausted its per-chunk budget. Cancellation skips the pass.
	for i := range chunks {
		if failures[i] == nil || ctx.Err() != nil {
			continue
		}
		c.logger.Debug("global retry pass for failed chunk", "chunk", i, "error", failures[i])
		classified, retryErr := c.classifyChunk(ctx, query, chunks[i])
		if retryErr == nil {
			results[i] = classified
			failures[i] = nil
		}
	}

	outcome := &ClassificationOutcome{}
	failedChunks := 0
	for i := range chunks {
		if failures[i] != nil {
			failedChunks++
			outcome.PartialFailures = append(outcome.PartialFailures,
				fmt.Sprintf("classification chunk %d/%d (%d items) failed: %v",
					i+1, len(chunks), len(chunks[i]), failures[i]))
			continue
		}
		outcome.Items = append(outcome.Items, results[i]...)
	}

	// Stable sort keeps classification order within each tier, which
	// the re-ranker uses as a tie-break rank.
	slices.SortStableFunc(outcome.Items, func(a, b core.ClassifiedItem) int {
		return int(b.Tier) - int(a.Tier)
	})

	if failedChunks == len(chunks) {
		return outcome, ErrAllChunksFailed
	}
	return outcome, nil
}

// classifyChunkWithRetry classifies one chunk within the retry budget.
func (c *Classifier) classifyChunkWithRetry(ctx context.Context, query string, chunk []*core.ContentItem) ([]core.ClassifiedItem, error) {
	var classified []core.ClassifiedItem
	err := RetryWithBackoff(ctx, func() error {
		var opErr error
		classified, opErr = c.classifyChunk(ctx, query, chunk)
		return opErr
	}, c.config.MaxAttempts, c.config.RetryBaseDelay)
	return classified, err
}

// classifyChunk makes a single oracle call for one chunk.
func (c *Classifier) classifyChunk(ctx context.Context, query string, chunk []*core.ContentItem) ([]core.ClassifiedItem, error) {
	passages := make([]ai.Passage, len(chunk))
	byID := make(map[core.ID]*core.ContentItem, len(chunk))
	for i, item := range chunk {
		passages[i] = ai.Passage{Id: item.Id, Text: formatPassageText(item)}
		byID[item.Id] = item
	}

	judgements, err := c.oracle.ClassifyRelevance(ctx, query, passages)
	if err != nil {
		return nil, err
	}

	// The oracle's coverage is not trusted: duplicate judgements for one
	// id are collapsed (first valid entry wins) so every item yields at
	// most one ClassifiedItem.
	classified := make([]core.ClassifiedItem, 0, len(judgements))
	seen := make(map[core.ID]bool, len(chunk))
	for _, j := range judgements {
		item, ok := byID[j.Id]
		if !ok || seen[j.Id] {
			continue
		}
		tier := core.ParseTier(j.Tier)
		if tier == core.TierNone {
			c.logger.Warn("oracle returned unknown tier, skipping item", "id", j.Id, "tier", j.Tier)
			continue
		}
		seen[j.Id] = true
		classified = append(classified, core.ClassifiedItem{
			Item:      item,
			Tier:      tier,
			Rationale: j.Rationale,
		})
	}
	if len(classified) < len(chunk) {
		c.logger.Warn("oracle judged fewer items than sent",
			"sent", len(chunk), "classified", len(classified))
	}
	return classified, nil
}

// chunkItems splits items into chunks of at most size elements.
func chunkItems(items []*core.ContentItem, size int) [][]*core.ContentItem {
	if size < 1 {
		size = 1
	}
	var chunks [][]*core.ContentItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// formatPassageText renders an item for the oracle: author, post time,
// then the text. Storage records themselves never reach the oracle.
func formatPassageText(item *core.ContentItem) string {
	return fmt.Sprintf("%s (%s): %s", item.Author, item.Timestamp.Format(time.DateOnly), item.Text)
}
