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
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
)

// citationPattern matches inline citations of the form [123].
var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// Synthesizer produces the final answer text plus the authoritative
// list of cited item identifiers. The oracle's citation claims are
// cross-checked against the identifiers actually supplied; anything
// else is stripped, never trusted.
type Synthesizer struct {
	oracle ai.Oracle
	config SynthesizerConfig
	logger *slog.Logger
}

// NewSynthesizer creates an answer synthesizer.
func NewSynthesizer(oracle ai.Oracle, config SynthesizerConfig, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		oracle: oracle,
		config: config,
		logger: logger.With("component", "synthesizer"),
	}
}

// Synthesize answers the query from the enriched items. The total item
// count, linked context included, is capped at MaxItems; when over
// budget, high-tier items survive first, then medium, with context-only
// items trimmed last-first. A synthesis failure is fatal for the
// source; there is no partial answer to degrade to.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, items []core.EnrichedItem, persona string) (*core.SynthesisResult, error) {
	if len(items) == 0 {
		return nil, ErrNothingToSynthesize
	}

	items = s.capItems(items)

	passages := make([]ai.Passage, 0, len(items))
	supplied := make(map[core.ID]bool, len(items))
	for _, ei := range items {
		passages = append(passages, ai.Passage{Id: ei.Item.Id, Text: formatEnrichedText(ei)})
		supplied[ei.Item.Id] = true
	}

	synth, err := s.oracle.Synthesize(ctx, query, passages, persona)
	if err != nil {
		return nil, err
	}

	// Validation contract: main sources are the intersection of claimed
	// and supplied identifiers, deduplicated, claim order preserved.
	var mainSources []core.ID
	for _, id := range synth.MainSources {
		if supplied[id] && !slices.Contains(mainSources, id) {
			mainSources = append(mainSources, id)
		}
	}
	if len(mainSources) != len(synth.MainSources) {
		s.logger.Warn("oracle claimed unsupplied citations, stripped",
			"claimed", len(synth.MainSources), "kept", len(mainSources))
	}

	answer := stripUnknownCitations(synth.Answer, supplied)

	return &core.SynthesisResult{
		Answer:      answer,
		MainSources: mainSources,
		Confidence:  core.ParseTier(synth.Confidence),
		Language:    synth.Language,
	}, nil
}

// capItems enforces the MaxItems budget. Selected items are already
// ordered high tier first; context attachments are trimmed once the
// budget runs out.
func (s *Synthesizer) capItems(items []core.EnrichedItem) []core.EnrichedItem {
	if s.config.MaxItems < 1 {
		return items
	}

	if len(items) > s.config.MaxItems {
		s.logger.Debug("truncating selected items for synthesis",
			"have", len(items), "cap", s.config.MaxItems)
		items = items[:s.config.MaxItems]
	}

	budget := s.config.MaxItems - len(items)
	capped := make([]core.EnrichedItem, len(items))
	for i, ei := range items {
		keep := ei
		if len(keep.Context) > budget {
			keep.Context = keep.Context[:budget]
		}
		budget -= len(keep.Context)
		capped[i] = keep
	}
	return capped
}

// formatEnrichedText renders an item and its surviving linked context
// as one passage. Context lines are framing only; their identifiers
// are never offered for citation.
func formatEnrichedText(ei core.EnrichedItem) string {
	if len(ei.Context) == 0 {
		return formatPassageText(ei.Item)
	}
	var b strings.Builder
	b.WriteString(formatPassageText(ei.Item))
	b.WriteString("\nLinked context:")
	for _, linked := range ei.Context {
		b.WriteString("\n  > ")
		b.WriteString(formatPassageText(linked))
	}
	return b.String()
}

// stripUnknownCitations removes inline [id] citations that reference
// identifiers the oracle was never given.
func stripUnknownCitations(answer string, supplied map[core.ID]bool) string {
	return citationPattern.ReplaceAllStringFunc(answer, func(match string) string {
		raw := match[1 : len(match)-1]
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || !supplied[core.ID(id)] {
			return ""
		}
		return match
	})
}
