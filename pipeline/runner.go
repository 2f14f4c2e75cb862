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

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/storage"
)

// Runner sequences the pipeline stages for one source:
//
//	mapping -> scoring_medium -> expanding -> synthesizing ->
//	validating_language -> matching_discussions -> synthesizing_discussions -> done
//
// with a terminal failed state reachable from any stage on an
// unrecoverable error. Transitions are strictly sequential; each one
// emits a ProgressEvent. The discussion stages are skipped when the
// query disabled discussion matching.
type Runner struct {
	source      string
	content     storage.ContentRepository
	discussions storage.DiscussionRepository
	oracle      ai.Oracle
	config      Config
	bus         *EventBus
	logger      *slog.Logger
}

// NewRunner creates a pipeline runner for one source.
func NewRunner(source string, content storage.ContentRepository, discussions storage.DiscussionRepository, oracle ai.Oracle, config Config, bus *EventBus, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source:      source,
		content:     content,
		discussions: discussions,
		oracle:      oracle,
		config:      config,
		bus:         bus,
		logger:      logger.With("component", "runner", "source", source),
	}
}

// Run executes the pipeline for this runner's source. It always
// returns a result: either a usable (possibly partial) answer or an
// explicit failure with a human-readable reason. Errors never escape.
func (r *Runner) Run(ctx context.Context, query *core.Query) *core.ExpertResult {
	result := &core.ExpertResult{Source: r.source}

	// mapping
	r.emit(ctx, StageMapping, StatusStarting, "loading and classifying content", nil)
	items, err := r.loadItems(ctx, query)
	if err != nil {
		return r.fail(ctx, result, StageMapping, fmt.Errorf("loading content: %w", err))
	}
	if len(items) == 0 {
		return r.fail(ctx, result, StageMapping, fmt.Errorf("source has no content items"))
	}

	classifier := NewClassifier(r.oracle, r.config.Classifier, r.logger)
	outcome, err := classifier.Classify(ctx, query.Text, items, func(done, total int) {
		r.emit(ctx, StageMapping, StatusProcessing,
			fmt.Sprintf("classified chunk %d of %d", done, total),
			map[string]any{"done": done, "total": total})
	})
	if err != nil {
		return r.fail(ctx, result, StageMapping, err)
	}
	result.PartialFailures = append(result.PartialFailures, outcome.PartialFailures...)

	var high, medium []core.ClassifiedItem
	for _, ci := range outcome.Items {
		switch ci.Tier {
		case core.TierHigh:
			high = append(high, ci)
		case core.TierMedium:
			medium = append(medium, ci)
		}
	}
	r.emit(ctx, StageMapping, StatusCompleted, "classification complete", map[string]any{
		"items":  len(items),
		"high":   len(high),
		"medium": len(medium),
		"low":    len(outcome.Items) - len(high) - len(medium),
	})

	// scoring_medium
	r.emit(ctx, StageScoringMedium, StatusStarting,
		fmt.Sprintf("re-ranking %d medium items", len(medium)), nil)
	reranker := NewReranker(r.oracle, r.config.Reranker, r.logger)
	selected := reranker.Rerank(ctx, query.Text, medium, high)
	r.emit(ctx, StageScoringMedium, StatusCompleted, "re-ranking complete",
		map[string]any{"selected": len(selected)})

	// expanding
	r.emit(ctx, StageExpanding, StatusStarting,
		fmt.Sprintf("expanding context for %d high items", len(high)), nil)
	expander := NewExpander(r.content, r.logger)
	enriched := expander.Expand(ctx, r.source, high, selected)
	r.emit(ctx, StageExpanding, StatusCompleted, "context expansion complete",
		map[string]any{"enriched": len(enriched)})

	// synthesizing
	r.emit(ctx, StageSynthesizing, StatusStarting, "synthesizing answer", nil)
	synthesizer := NewSynthesizer(r.oracle, r.config.Synthesizer, r.logger)
	synthesis, err := synthesizer.Synthesize(ctx, query.Text, enriched, r.config.Persona)
	if err != nil {
		return r.fail(ctx, result, StageSynthesizing, err)
	}
	r.emit(ctx, StageSynthesizing, StatusCompleted, "synthesis complete",
		map[string]any{"main_sources": len(synthesis.MainSources)})

	// validating_language
	r.emit(ctx, StageValidatingLanguage, StatusStarting, "validating answer language", nil)
	validator := NewLanguageValidator(r.oracle, r.config.Language, r.logger)
	synthesis = validator.Validate(ctx, query.Text, synthesis)
	result.Synthesis = synthesis
	r.emit(ctx, StageValidatingLanguage, StatusCompleted, "language validation complete",
		map[string]any{"language": synthesis.Language})

	if query.IncludeDiscussions {
		// matching_discussions
		r.emit(ctx, StageMatchingDiscussions, StatusStarting, "matching discussion threads", nil)
		groups, err := r.discussions.GetDiscussionGroups(ctx, r.source, true)
		if err != nil {
			r.logger.Warn("loading discussion groups failed, skipping matching", "error", err)
			result.PartialFailures = append(result.PartialFailures,
				fmt.Sprintf("discussion groups unavailable: %v", err))
			groups = nil
		}
		matcher := NewMatcher(r.oracle, r.config.Matcher, r.logger)
		result.Discussions = matcher.Match(ctx, query.Text, groups, synthesis.MainSources,
			func(done, total int) {
				r.emit(ctx, StageMatchingDiscussions, StatusProcessing,
					fmt.Sprintf("matched chunk %d of %d", done, total),
					map[string]any{"done": done, "total": total})
			})
		r.emit(ctx, StageMatchingDiscussions, StatusCompleted, "discussion matching complete",
			map[string]any{"matched": len(result.Discussions)})

		// synthesizing_discussions
		r.emit(ctx, StageSynthesizingDiscussions, StatusStarting, "extracting discussion insights", nil)
		insight := NewInsightSynthesizer(r.oracle, r.logger)
		result.DiscussionInsights = insight.Extract(ctx, query.Text, synthesis.Answer, result.Discussions)
		r.emit(ctx, StageSynthesizingDiscussions, StatusCompleted, "discussion insight complete",
			map[string]any{"has_insight": result.DiscussionInsights != ""})
	}

	r.emit(ctx, StageDone, StatusCompleted, "pipeline complete", map[string]any{
		"partial_failures": len(result.PartialFailures),
	})
	return result
}

// loadItems reads this source's content, honoring the recency filter.
func (r *Runner) loadItems(ctx context.Context, query *core.Query) ([]*core.ContentItem, error) {
	if query.RecentOnly {
		return r.content.GetRecentItems(ctx, r.source, r.config.RecentLimit)
	}
	return r.content.GetItems(ctx, r.source)
}

// fail marks the result failed at the given stage and emits the
// terminal failed event. Failure stays isolated to this source.
func (r *Runner) fail(ctx context.Context, result *core.ExpertResult, stage Stage, err error) *core.ExpertResult {
	r.logger.Error("pipeline failed", "stage", stage, "error", err)
	result.Failed = true
	result.FailureReason = fmt.Sprintf("%s: %v", stage, err)
	r.emit(ctx, StageFailed, StatusFailed, result.FailureReason,
		map[string]any{"failed_stage": string(stage)})
	return result
}

// emit publishes a progress event for this source. A cancelled publish
// is dropped; the runner notices cancellation at its next oracle call.
func (r *Runner) emit(ctx context.Context, stage Stage, status EventStatus, message string, data map[string]any) {
	_ = r.bus.Publish(ctx, ProgressEvent{
		Source:  r.source,
		Stage:   stage,
		Status:  status,
		Message: message,
		Data:    data,
	})
}
