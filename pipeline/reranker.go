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
	"strings"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
)

// Reranker rescores medium-tier items with a continuous score, then
// selects a bounded subset. One oracle call, no chunking. On oracle
// failure it degrades to zero selections rather than failing the run.
type Reranker struct {
	oracle ai.Oracle
	config RerankerConfig
	logger *slog.Logger
}

// NewReranker creates a secondary re-ranker.
func NewReranker(oracle ai.Oracle, config RerankerConfig, logger *slog.Logger) *Reranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reranker{
		oracle: oracle,
		config: config,
		logger: logger.With("component", "reranker"),
	}
}

// Rerank scores the medium items against the query and selects at most
// TopK items with score >= Threshold. Fewer than TopK clearing the
// threshold means fewer selections; sub-threshold items never pad the
// result. Input order is the classifier's output order and serves as
// the second tie-break after the score.
func (r *Reranker) Rerank(ctx context.Context, query string, medium []core.ClassifiedItem, high []core.ClassifiedItem) []core.ScoredItem {
	if len(medium) == 0 {
		return nil
	}

	// Cost cap: drop the oldest items beyond MaxItems before scoring.
	if r.config.MaxItems > 0 && len(medium) > r.config.MaxItems {
		r.logger.Debug("capping medium items before scoring",
			"have", len(medium), "cap", r.config.MaxItems)
		medium = medium[len(medium)-r.config.MaxItems:]
	}

	passages := make([]ai.Passage, len(medium))
	rank := make(map[core.ID]int, len(medium))
	byID := make(map[core.ID]core.ClassifiedItem, len(medium))
	for i, ci := range medium {
		passages[i] = ai.Passage{Id: ci.Item.Id, Text: formatPassageText(ci.Item)}
		rank[ci.Item.Id] = i
		byID[ci.Item.Id] = ci
	}

	scores, err := r.oracle.ScoreRelevance(ctx, query, passages, summarizeHigh(high))
	if err != nil {
		r.logger.Warn("scoring failed, selecting no medium items", "error", err)
		return nil
	}

	// First score entry per id wins; a duplicate must not occupy a
	// second top-K slot.
	var selected []core.ScoredItem
	seen := make(map[core.ID]bool, len(medium))
	for _, s := range scores {
		ci, ok := byID[s.Id]
		if !ok || seen[s.Id] {
			continue
		}
		seen[s.Id] = true
		if s.Score < r.config.Threshold {
			continue
		}
		selected = append(selected, core.ScoredItem{
			ClassifiedItem: ci,
			Score:          s.Score,
			ScoreRationale: s.Rationale,
		})
	}

	// Higher score first, then classifier rank, then ID for determinism.
	slices.SortFunc(selected, func(a, b core.ScoredItem) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if ra, rb := rank[a.Item.Id], rank[b.Item.Id]; ra != rb {
			return ra - rb
		}
		if a.Item.Id < b.Item.Id {
			return -1
		}
		if a.Item.Id > b.Item.Id {
			return 1
		}
		return 0
	})

	if r.config.TopK > 0 && len(selected) > r.config.TopK {
		selected = selected[:r.config.TopK]
	}
	return selected
}

// summarizeHigh builds a compact textual summary of the high-tier items
// for scoring calibration. Only the first line of each item is used.
func summarizeHigh(high []core.ClassifiedItem) string {
	if len(high) == 0 {
		return ""
	}
	var b strings.Builder
	for _, ci := range high {
		line := ci.Item.Text
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = line[:idx]
		}
		const maxLine = 160
		if len(line) > maxLine {
			line = line[:maxLine]
		}
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
