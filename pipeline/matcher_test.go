package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/ai/mock"
	"github.com/chorusqa/chorus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatcherConfig() MatcherConfig {
	return MatcherConfig{
		ChunkSize:      10,
		Parallelism:    4,
		MaxAttempts:    2,
		RetryBaseDelay: time.Millisecond,
	}
}

func makeGroups(anchors ...core.ID) []*core.DiscussionGroup {
	groups := make([]*core.DiscussionGroup, len(anchors))
	for i, anchor := range anchors {
		groups[i] = &core.DiscussionGroup{
			AnchorId: anchor,
			Source:   "expert_a",
			HasDrift: true,
			Topics: []core.DriftTopic{{
				Label:    "drift topic",
				Keywords: []string{"tangent"},
			}},
		}
	}
	return groups
}

func matchAll(tier string) func(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error) {
	return func(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error) {
		matches := make([]ai.TopicMatch, len(topics))
		for i, topic := range topics {
			matches[i] = ai.TopicMatch{AnchorId: topic.AnchorId, Tier: tier}
		}
		return matches, nil
	}
}

func TestMatcher_ExcludesMainSourceAnchors(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.MatchFunc = matchAll("high")
	matcher := NewMatcher(oracle, testMatcherConfig(), nil)

	groups := makeGroups(1, 2, 3, 4)
	matched := matcher.Match(context.Background(), "q", groups, []core.ID{2, 4}, nil)

	require.Len(t, matched, 2)
	assert.Equal(t, core.ID(1), matched[0].Group.AnchorId)
	assert.Equal(t, core.ID(3), matched[1].Group.AnchorId)
}

func TestMatcher_SkipsGroupsWithoutDrift(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.MatchFunc = matchAll("high")
	matcher := NewMatcher(oracle, testMatcherConfig(), nil)

	groups := makeGroups(1, 2)
	groups[1].HasDrift = false
	groups[1].Topics = nil

	matched := matcher.Match(context.Background(), "q", groups, nil, nil)
	require.Len(t, matched, 1)
	assert.Equal(t, core.ID(1), matched[0].Group.AnchorId)
}

func TestMatcher_LowMatchesDropped(t *testing.T) {
	oracle := mock.NewMockOracle() // default matches everything "low"
	matcher := NewMatcher(oracle, testMatcherConfig(), nil)

	matched := matcher.Match(context.Background(), "q", makeGroups(1, 2, 3), nil, nil)
	assert.Empty(t, matched)
}

func TestMatcher_StrongestTopicWinsPerGroup(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.MatchFunc = func(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error) {
		matches := make([]ai.TopicMatch, len(topics))
		for i, topic := range topics {
			tier := "medium"
			if topic.Label == "strong" {
				tier = "high"
			}
			matches[i] = ai.TopicMatch{AnchorId: topic.AnchorId, Tier: tier}
		}
		return matches, nil
	}
	matcher := NewMatcher(oracle, testMatcherConfig(), nil)

	group := makeGroups(1)[0]
	group.Topics = append(group.Topics, core.DriftTopic{Label: "strong"})

	matched := matcher.Match(context.Background(), "q", []*core.DiscussionGroup{group}, nil, nil)
	require.Len(t, matched, 1)
	assert.Equal(t, core.TierHigh, matched[0].Tier)
}

func TestMatcher_OrderedHighFirstThenAnchor(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.MatchFunc = func(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error) {
		matches := make([]ai.TopicMatch, len(topics))
		for i, topic := range topics {
			tier := "medium"
			if topic.AnchorId%2 == 0 {
				tier = "high"
			}
			matches[i] = ai.TopicMatch{AnchorId: topic.AnchorId, Tier: tier}
		}
		return matches, nil
	}
	matcher := NewMatcher(oracle, testMatcherConfig(), nil)

	matched := matcher.Match(context.Background(), "q", makeGroups(5, 2, 3, 4), nil, nil)
	require.Len(t, matched, 4)
	assert.Equal(t, core.ID(2), matched[0].Group.AnchorId)
	assert.Equal(t, core.ID(4), matched[1].Group.AnchorId)
	assert.Equal(t, core.ID(3), matched[2].Group.AnchorId)
	assert.Equal(t, core.ID(5), matched[3].Group.AnchorId)
}

func TestMatcher_FailedChunkYieldsNoMatches(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.MatchFunc = func(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error) {
		return nil, ai.NewOracleError(ai.FailureTimeout, nil)
	}
	matcher := NewMatcher(oracle, testMatcherConfig(), nil)

	matched := matcher.Match(context.Background(), "q", makeGroups(1, 2), nil, nil)
	assert.Empty(t, matched)
	// Per-chunk retries only, no global pass: MaxAttempts calls per chunk.
	assert.Equal(t, 2, oracle.CallCount("match"))
}

func TestMatcher_NoCandidatesMakesNoCall(t *testing.T) {
	oracle := mock.NewMockOracle()
	matcher := NewMatcher(oracle, testMatcherConfig(), nil)

	matched := matcher.Match(context.Background(), "q", makeGroups(7), []core.ID{7}, nil)
	assert.Empty(t, matched)
	assert.Zero(t, oracle.TotalCalls())
}
