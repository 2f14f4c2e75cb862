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


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Oracle implements ai.Oracle using OpenAI-compatible chat APIs.
type Oracle struct {
	client llms.Model
	config *ai.Config
	logger *slog.Logger
}

// newOracle is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newOracle(config *ai.Config) (*Oracle, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Oracle{
		client: client,
		config: config,
		logger: slog.Default().With("component", "openai-oracle"),
	}, nil
}

// NewOracle creates a new scoring oracle using the provided configuration.
//
// Returns ai.Oracle interface to enforce abstraction.
func NewOracle(config *ai.Config) (ai.Oracle, error) {
	return newOracle(config)
}

// ClassifyRelevance classifies each passage as high/medium/low relevance.
func (o *Oracle) ClassifyRelevance(ctx context.Context, query string, items []ai.Passage) ([]ai.TierJudgement, error) {
	var resp classifyResponse
	err := o.generateJSON(ctx, buildClassifyPrompt(), classifyUserMessage(query, items), 0, &resp)
	if err != nil {
		return nil, err
	}

	supplied := passageIDSet(items)
	judgements := make([]ai.TierJudgement, 0, len(resp.Judgements))
	for _, j := range resp.Judgements {
		if core.ParseTier(j.Tier) == core.TierNone {
			return nil, ai.NewOracleError(ai.FailureInvalidResponse,
				fmt.Errorf("unknown tier %q for item %d", j.Tier, j.Id))
		}
		// Judgements for identifiers that were never sent are dropped.
		if _, ok := supplied[core.ID(j.Id)]; !ok {
			o.logger.Warn("oracle judged an unsupplied item", "id", j.Id)
			continue
		}
		judgements = append(judgements, ai.TierJudgement{
			Id:        core.ID(j.Id),
			Tier:      strings.ToLower(j.Tier),
			Rationale: j.Rationale,
		})
	}

	o.logger.Debug("classified passages", "sent", len(items), "judged", len(judgements))
	return judgements, nil
}

// ScoreRelevance assigns a continuous relevance score to each passage.
func (o *Oracle) ScoreRelevance(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
	var resp scoreResponse
	err := o.generateJSON(ctx, buildScorePrompt(), scoreUserMessage(query, items, highContext), 0, &resp)
	if err != nil {
		return nil, err
	}

	supplied := passageIDSet(items)
	scores := make([]ai.ItemScore, 0, len(resp.Scores))
	for _, s := range resp.Scores {
		if s.Score < 0 || s.Score > 1 {
			return nil, ai.NewOracleError(ai.FailureInvalidResponse,
				fmt.Errorf("score %f out of range for item %d", s.Score, s.Id))
		}
		if _, ok := supplied[core.ID(s.Id)]; !ok {
			o.logger.Warn("oracle scored an unsupplied item", "id", s.Id)
			continue
		}
		scores = append(scores, ai.ItemScore{
			Id:        core.ID(s.Id),
			Score:     s.Score,
			Rationale: s.Rationale,
		})
	}

	return scores, nil
}

// Synthesize produces an answer with inline citations from the passages.
func (o *Oracle) Synthesize(ctx context.Context, query string, items []ai.Passage, persona string) (*ai.Synthesis, error) {
	var resp synthesisResponse
	err := o.generateJSON(ctx, buildSynthesisPrompt(persona), synthesisUserMessage(query, items),
		o.config.Temperature, &resp)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(resp.Answer) == "" {
		return nil, ai.NewOracleError(ai.FailureInvalidResponse, errors.New("empty answer"))
	}

	sources := make([]core.ID, 0, len(resp.MainSources))
	for _, id := range resp.MainSources {
		sources = append(sources, core.ID(id))
	}

	confidence := resp.Confidence
	if core.ParseTier(confidence) == core.TierNone {
		confidence = "medium"
	}

	language := strings.ToLower(strings.TrimSpace(resp.Language))

	return &ai.Synthesis{
		Answer:      resp.Answer,
		MainSources: sources,
		Confidence:  strings.ToLower(confidence),
		Language:    language,
	}, nil
}

// Translate translates prose while preserving citations and markdown.
func (o *Oracle) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	var resp translateResponse
	err := o.generateJSON(ctx, buildTranslatePrompt(targetLanguage), text, o.config.Temperature, &resp)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", ai.NewOracleError(ai.FailureInvalidResponse, errors.New("empty translation"))
	}

	return resp.Text, nil
}

// MatchTopics matches drift topic summaries against the query.
func (o *Oracle) MatchTopics(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error) {
	var resp matchResponse
	err := o.generateJSON(ctx, buildMatchPrompt(), matchUserMessage(query, topics), 0, &resp)
	if err != nil {
		return nil, err
	}

	supplied := make(map[core.ID]struct{}, len(topics))
	for _, t := range topics {
		supplied[t.AnchorId] = struct{}{}
	}

	matches := make([]ai.TopicMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if core.ParseTier(m.Tier) == core.TierNone {
			return nil, ai.NewOracleError(ai.FailureInvalidResponse,
				fmt.Errorf("unknown tier %q for anchor %d", m.Tier, m.AnchorId))
		}
		if _, ok := supplied[core.ID(m.AnchorId)]; !ok {
			o.logger.Warn("oracle matched an unsupplied discussion", "anchor", m.AnchorId)
			continue
		}
		matches = append(matches, ai.TopicMatch{
			AnchorId:  core.ID(m.AnchorId),
			Tier:      strings.ToLower(m.Tier),
			Rationale: m.Rationale,
		})
	}

	return matches, nil
}

// ExtractInsight produces complementary-insight text from matched topics.
func (o *Oracle) ExtractInsight(ctx context.Context, query, answer string, topics []ai.TopicSummary) (string, error) {
	var resp insightResponse
	err := o.generateJSON(ctx, buildInsightPrompt(), insightUserMessage(query, answer, topics),
		o.config.Temperature, &resp)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Insight), nil
}

// generateJSON runs one chat completion in JSON mode and unmarshals the
// response into out. Every failure is wrapped in an *ai.OracleError so
// callers can branch on the failure kind.
func (o *Oracle) generateJSON(ctx context.Context, system, user string, temperature float64, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, o.config.RequestTimeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(system),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(user),
			},
		},
	}

	response, err := o.client.GenerateContent(callCtx, content,
		llms.WithTemperature(temperature), llms.WithJSONMode())
	if err != nil {
		return o.classifyCallError(ctx, err)
	}

	if len(response.Choices) < 1 {
		return ai.NewOracleError(ai.FailureInvalidResponse, errors.New("no choices returned"))
	}

	// Strip markdown code fences if present
	responseText := strings.TrimSpace(response.Choices[0].Content)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	// Try to repair common JSON issues
	responseText = repairJSON(responseText)

	if err := json.Unmarshal([]byte(responseText), out); err != nil {
		o.logger.Warn("error parsing oracle response", "response", responseText, "err", err)
		return ai.NewOracleError(ai.FailureInvalidResponse, err)
	}

	return nil
}

// classifyCallError maps a transport-level error to a failure kind.
func (o *Oracle) classifyCallError(ctx context.Context, err error) error {
	// Caller cancellation is not an oracle failure.
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return ctx.Err()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ai.NewOracleError(ai.FailureTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
		return ai.NewOracleError(ai.FailureRateLimited, err)
	}

	return ai.NewOracleError(ai.FailureOther, err)
}

// passageIDSet collects the supplied passage identifiers.
func passageIDSet(items []ai.Passage) map[core.ID]struct{} {
	set := make(map[core.ID]struct{}, len(items))
	for _, item := range items {
		set[item.Id] = struct{}{}
	}
	return set
}

// Response payloads. Field names match the schemas in prompts.go.

type classifyResponse struct {
	Judgements []struct {
		Id        uint64 `json:"id"`
		Tier      string `json:"tier"`
		Rationale string `json:"rationale"`
	} `json:"judgements"`
}

type scoreResponse struct {
	Scores []struct {
		Id        uint64  `json:"id"`
		Score     float64 `json:"score"`
		Rationale string  `json:"rationale"`
	} `json:"scores"`
}

type synthesisResponse struct {
	Answer      string   `json:"answer"`
	MainSources []uint64 `json:"main_sources"`
	Confidence  string   `json:"confidence"`
	Language    string   `json:"language"`
}

type translateResponse struct {
	Text string `json:"text"`
}

type matchResponse struct {
	Matches []struct {
		AnchorId  uint64 `json:"anchor_id"`
		Tier      string `json:"tier"`
		Rationale string `json:"rationale"`
	} `json:"matches"`
}

type insightResponse struct {
	Insight string `json:"insight"`
}
