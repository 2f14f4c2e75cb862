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
	"encoding/json"

	"github.com/chorusqa/chorus/core"
)

// expertFrame is the caller-facing JSON shape of one per-source result.
// Synthesis fields are flattened into the frame and tiers are rendered
// as their string names; internal Go field names never reach the wire.
type expertFrame struct {
	SourceId           string            `json:"source_id"`
	Answer             string            `json:"answer"`
	MainSources        []core.ID         `json:"main_sources"`
	Confidence         string            `json:"confidence"`
	Language           string            `json:"language"`
	MatchedDiscussions []discussionFrame `json:"matched_discussions"`
	DiscussionInsights *string           `json:"discussion_insights"`
	PartialFailures    []string          `json:"partial_failures"`
	Failed             bool              `json:"failed,omitempty"`
	FailureReason      string            `json:"failure_reason,omitempty"`
}

type discussionFrame struct {
	AnchorId  core.ID  `json:"anchor_id"`
	Topics    []string `json:"topics,omitempty"`
	Tier      string   `json:"tier"`
	Rationale string   `json:"rationale,omitempty"`
}

// MarshalJSON renders the result in the caller-facing wire format:
// { query, expert_results: [{ source_id, answer, main_sources,
// confidence, language, matched_discussions, discussion_insights,
// partial_failures }] }. discussion_insights is null when the insight
// stage was skipped or produced nothing.
func (r Result) MarshalJSON() ([]byte, error) {
	frames := make([]expertFrame, 0, len(r.Experts))
	for _, expert := range r.Experts {
		if expert == nil {
			continue
		}

		frame := expertFrame{
			SourceId:           expert.Source,
			MainSources:        []core.ID{},
			MatchedDiscussions: []discussionFrame{},
			PartialFailures:    []string{},
			Failed:             expert.Failed,
			FailureReason:      expert.FailureReason,
		}
		if expert.Synthesis != nil {
			frame.Answer = expert.Synthesis.Answer
			frame.Confidence = expert.Synthesis.Confidence.String()
			frame.Language = expert.Synthesis.Language
			if len(expert.Synthesis.MainSources) > 0 {
				frame.MainSources = expert.Synthesis.MainSources
			}
		}
		for _, match := range expert.Discussions {
			df := discussionFrame{
				AnchorId:  match.Group.AnchorId,
				Tier:      match.Tier.String(),
				Rationale: match.Rationale,
			}
			for _, topic := range match.Group.Topics {
				df.Topics = append(df.Topics, topic.Label)
			}
			frame.MatchedDiscussions = append(frame.MatchedDiscussions, df)
		}
		if expert.DiscussionInsights != "" {
			insights := expert.DiscussionInsights
			frame.DiscussionInsights = &insights
		}
		if len(expert.PartialFailures) > 0 {
			frame.PartialFailures = expert.PartialFailures
		}
		frames = append(frames, frame)
	}

	return json.Marshal(struct {
		Query         string        `json:"query"`
		ExpertResults []expertFrame `json:"expert_results"`
	}{Query: r.Query, ExpertResults: frames})
}
