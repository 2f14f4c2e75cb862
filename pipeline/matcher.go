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
	"log/slog"
	"slices"
	"sync"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
	"github.com/panjf2000/ants/v2"
)

// Matcher matches pre-computed topic-drift summaries of comment
// threads against the query. Threads already covered by the answer's
// main sources are excluded up front. Matching runs in parallel chunks
// with per-chunk retries only; a chunk that exhausts its budget simply
// yields no matches for its members.
type Matcher struct {
	oracle ai.Oracle
	config MatcherConfig
	logger *slog.Logger
}

// NewMatcher creates a discussion matcher.
func NewMatcher(oracle ai.Oracle, config MatcherConfig, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		oracle: oracle,
		config: config,
		logger: logger.With("component", "matcher"),
	}
}

// Match evaluates the drifted discussion groups against the query,
// excluding any group anchored on a main source. Only drift metadata
// travels to the oracle, never raw comment text or the anchor's own
// content. Returns matches ordered by tier, high first, then anchor ID.
func (m *Matcher) Match(ctx context.Context, query string, groups []*core.DiscussionGroup, mainSources []core.ID, onChunk func(done, total int)) []core.MatchedDiscussion {
	covered := make(map[core.ID]bool, len(mainSources))
	for _, id := range mainSources {
		covered[id] = true
	}

	byAnchor := make(map[core.ID]*core.DiscussionGroup)
	var summaries []ai.TopicSummary
	for _, group := range groups {
		if covered[group.AnchorId] || !group.HasDrift {
			continue
		}
		byAnchor[group.AnchorId] = group
		for _, topic := range group.Topics {
			summaries = append(summaries, ai.TopicSummary{
				AnchorId:  group.AnchorId,
				Label:     topic.Label,
				Keywords:  topic.Keywords,
				Phrases:   topic.Phrases,
				Rationale: topic.Rationale,
			})
		}
	}
	if len(summaries) == 0 {
		return nil
	}

	chunks := chunkSummaries(summaries, m.config.ChunkSize)
	results := make([][]ai.TopicMatch, len(chunks))

	pool, err := ants.NewPool(m.config.Parallelism)
	if err != nil {
		m.logger.Warn("matcher pool creation failed, no discussion matches", "error", err)
		return nil
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

			var matches []ai.TopicMatch
			chunkErr := RetryWithBackoff(ctx, func() error {
				var opErr error
				matches, opErr = m.oracle.MatchTopics(ctx, query, chunk)
				return opErr
			}, m.config.MaxAttempts, m.config.RetryBaseDelay)
			if chunkErr != nil {
				m.logger.Warn("discussion chunk failed, yielding no matches",
					"chunk", i, "error", chunkErr)
				matches = nil
			}

			mu.Lock()
			defer mu.Unlock()
			results[i] = matches
			settled++
			if onChunk != nil {
				onChunk(settled, len(chunks))
			}
		})
		if submitErr != nil {
			wg.Done()
		}
	}
	wg.Wait()

	// One group can carry several topics; the strongest match wins.
	best := make(map[core.ID]core.MatchedDiscussion)
	for _, matches := range results {
		for _, match := range matches {
			group, ok := byAnchor[match.AnchorId]
			if !ok {
				continue
			}
			tier := core.ParseTier(match.Tier)
			if tier != core.TierHigh && tier != core.TierMedium {
				continue
			}
			if existing, ok := best[match.AnchorId]; !ok || tier > existing.Tier {
				best[match.AnchorId] = core.MatchedDiscussion{
					Group:     group,
					Tier:      tier,
					Rationale: match.Rationale,
				}
			}
		}
	}

	matched := make([]core.MatchedDiscussion, 0, len(best))
	for _, md := range best {
		matched = append(matched, md)
	}
	slices.SortFunc(matched, func(a, b core.MatchedDiscussion) int {
		if a.Tier != b.Tier {
			return int(b.Tier) - int(a.Tier)
		}
		if a.Group.AnchorId < b.Group.AnchorId {
			return -1
		}
		if a.Group.AnchorId > b.Group.AnchorId {
			return 1
		}
		return 0
	})
	return matched
}

// chunkSummaries splits topic summaries into chunks of at most size elements.
func chunkSummaries(summaries []ai.TopicSummary, size int) [][]ai.TopicSummary {
	if size < 1 {
		size = 1
	}
	var chunks [][]ai.TopicSummary
	for start := 0; start < len(summaries); start += size {
		end := start + size
		if end > len(summaries) {
			end = len(summaries)
		}
		chunks = append(chunks, summaries[start:end])
	}
	return chunks
}
