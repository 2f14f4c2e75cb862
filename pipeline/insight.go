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
	"strings"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
)

// InsightSynthesizer extracts short complementary-insight text from
// high-tier discussion matches. With no high matches the stage is
// skipped outright, costing nothing. Discussion insight describes
// community conversation, not citable primary sources, so citation
// syntax is scrubbed from the output.
type InsightSynthesizer struct {
	oracle ai.Oracle
	logger *slog.Logger
}

// NewInsightSynthesizer creates a discussion insight synthesizer.
func NewInsightSynthesizer(oracle ai.Oracle, logger *slog.Logger) *InsightSynthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightSynthesizer{
		oracle: oracle,
		logger: logger.With("component", "insight"),
	}
}

// Extract produces insight text from the high-tier matches, given the
// main answer for deduplication. Returns "" when there are no high
// matches or the oracle call fails; the pipeline proceeds either way.
func (s *InsightSynthesizer) Extract(ctx context.Context, query, answer string, matches []core.MatchedDiscussion) string {
	var summaries []ai.TopicSummary
	for _, match := range matches {
		if match.Tier != core.TierHigh {
			continue
		}
		for _, topic := range match.Group.Topics {
			summaries = append(summaries, ai.TopicSummary{
				AnchorId:  match.Group.AnchorId,
				Label:     topic.Label,
				Keywords:  topic.Keywords,
				Phrases:   topic.Phrases,
				Rationale: topic.Rationale,
			})
		}
	}
	if len(summaries) == 0 {
		return ""
	}

	insight, err := s.oracle.ExtractInsight(ctx, query, answer, summaries)
	if err != nil {
		s.logger.Warn("insight extraction failed, omitting discussion insight", "error", err)
		return ""
	}

	// The prompt forbids citation syntax; scrub anyway.
	insight = citationPattern.ReplaceAllString(insight, "")
	return strings.TrimSpace(insight)
}
