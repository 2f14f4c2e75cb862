package pipeline

import (
	"context"
	"testing"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/ai/mock"
	"github.com/chorusqa/chorus/core"
	"github.com/stretchr/testify/assert"
)

func makeMatched(tier core.Tier, anchors ...core.ID) []core.MatchedDiscussion {
	groups := makeGroups(anchors...)
	matched := make([]core.MatchedDiscussion, len(groups))
	for i, group := range groups {
		matched[i] = core.MatchedDiscussion{Group: group, Tier: tier}
	}
	return matched
}

func TestInsight_SkippedWithoutHighMatches(t *testing.T) {
	oracle := mock.NewMockOracle()
	insight := NewInsightSynthesizer(oracle, nil)

	text := insight.Extract(context.Background(), "q", "answer", makeMatched(core.TierMedium, 1, 2))
	assert.Empty(t, text)
	assert.Zero(t, oracle.TotalCalls(), "no oracle call without high matches")
}

func TestInsight_ExtractsFromHighMatches(t *testing.T) {
	oracle := mock.NewMockOracle()
	insight := NewInsightSynthesizer(oracle, nil)

	text := insight.Extract(context.Background(), "q", "answer", makeMatched(core.TierHigh, 1))
	assert.Equal(t, "mock discussion insight", text)
	assert.Equal(t, 1, oracle.CallCount("insight"))
}

func TestInsight_ScrubsCitationSyntax(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.InsightFunc = func(ctx context.Context, query, answer string, topics []ai.TopicSummary) (string, error) {
		return "The community debated alternatives [42] at length.", nil
	}
	insight := NewInsightSynthesizer(oracle, nil)

	text := insight.Extract(context.Background(), "q", "answer", makeMatched(core.TierHigh, 1))
	assert.NotContains(t, text, "[42]")
	assert.Contains(t, text, "debated alternatives")
}

func TestInsight_FailureOmitsInsight(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.InsightFunc = func(ctx context.Context, query, answer string, topics []ai.TopicSummary) (string, error) {
		return "", ai.NewOracleError(ai.FailureRateLimited, nil)
	}
	insight := NewInsightSynthesizer(oracle, nil)

	text := insight.Extract(context.Background(), "q", "answer", makeMatched(core.TierHigh, 1))
	assert.Empty(t, text)
}
