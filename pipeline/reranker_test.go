package pipeline

import (
	"context"
	"testing"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/ai/mock"
	"github.com/chorusqa/chorus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeMedium(n int) []core.ClassifiedItem {
	items := makeItems(n)
	classified := make([]core.ClassifiedItem, n)
	for i, item := range items {
		classified[i] = core.ClassifiedItem{Item: item, Tier: core.TierMedium}
	}
	return classified
}

func testRerankerConfig() RerankerConfig {
	return RerankerConfig{MaxItems: 20, Threshold: 0.7, TopK: 5}
}

func TestReranker_TopKOfThresholdClearers(t *testing.T) {
	// 7 of 12 items clear the threshold; only the top 5 by score survive.
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		scores := make([]ai.ItemScore, len(items))
		for i, p := range items {
			score := 0.5
			if p.Id <= 7 {
				score = 0.7 + float64(p.Id)*0.01
			}
			scores[i] = ai.ItemScore{Id: p.Id, Score: score}
		}
		return scores, nil
	}
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	selected := reranker.Rerank(context.Background(), "q", makeMedium(12), nil)
	require.Len(t, selected, 5)
	for _, si := range selected {
		assert.GreaterOrEqual(t, si.Score, 0.7)
	}
	// Highest scores first: ids 7,6,5,4,3.
	assert.Equal(t, core.ID(7), selected[0].Item.Id)
	assert.Equal(t, core.ID(3), selected[4].Item.Id)
}

func TestReranker_FewerThanKClearThreshold(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		scores := make([]ai.ItemScore, len(items))
		for i, p := range items {
			score := 0.2
			if p.Id == 4 {
				score = 0.9
			}
			scores[i] = ai.ItemScore{Id: p.Id, Score: score}
		}
		return scores, nil
	}
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	selected := reranker.Rerank(context.Background(), "q", makeMedium(8), nil)
	require.Len(t, selected, 1, "no padding with sub-threshold items")
	assert.Equal(t, core.ID(4), selected[0].Item.Id)
}

func TestReranker_NoneClearThreshold(t *testing.T) {
	oracle := mock.NewMockOracle() // default score 0.5
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	selected := reranker.Rerank(context.Background(), "q", makeMedium(6), nil)
	assert.Empty(t, selected)
}

func TestReranker_TieBreakByRankThenID(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		scores := make([]ai.ItemScore, len(items))
		for i, p := range items {
			scores[i] = ai.ItemScore{Id: p.Id, Score: 0.8}
		}
		return scores, nil
	}
	config := testRerankerConfig()
	config.TopK = 3
	reranker := NewReranker(oracle, config, nil)

	selected := reranker.Rerank(context.Background(), "q", makeMedium(6), nil)
	require.Len(t, selected, 3)
	// Identical scores fall back to the classifier's output order.
	assert.Equal(t, core.ID(1), selected[0].Item.Id)
	assert.Equal(t, core.ID(2), selected[1].Item.Id)
	assert.Equal(t, core.ID(3), selected[2].Item.Id)
}

func TestReranker_CapsInputDroppingOldestFirst(t *testing.T) {
	var sent []ai.Passage
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		sent = items
		return nil, nil
	}
	config := testRerankerConfig()
	config.MaxItems = 10
	reranker := NewReranker(oracle, config, nil)

	reranker.Rerank(context.Background(), "q", makeMedium(25), nil)
	require.Len(t, sent, 10)
	// Items arrive oldest first, so the newest 10 survive the cap.
	assert.Equal(t, core.ID(16), sent[0].Id)
	assert.Equal(t, core.ID(25), sent[9].Id)
}

func TestReranker_DegradesGracefullyOnOracleFailure(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		return nil, ai.NewOracleError(ai.FailureRateLimited, nil)
	}
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	selected := reranker.Rerank(context.Background(), "q", makeMedium(5), nil)
	assert.Empty(t, selected)
}

func TestReranker_EmptyInputMakesNoCall(t *testing.T) {
	oracle := mock.NewMockOracle()
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	selected := reranker.Rerank(context.Background(), "q", nil, nil)
	assert.Empty(t, selected)
	assert.Zero(t, oracle.TotalCalls())
}

func TestReranker_HighContextForwarded(t *testing.T) {
	var gotContext string
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		gotContext = highContext
		return nil, nil
	}
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	high := []core.ClassifiedItem{{Item: makeItems(1)[0], Tier: core.TierHigh}}
	reranker.Rerank(context.Background(), "q", makeMedium(3), high)
	assert.Contains(t, gotContext, "post number 1")
}

func TestReranker_DuplicateScoresSelectItemOnce(t *testing.T) {
	// An oracle echoing every id twice must not let one item fill two
	// top-K slots or re-enter past the threshold with a second score.
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		scores := make([]ai.ItemScore, 0, 2*len(items))
		for _, p := range items {
			scores = append(scores,
				ai.ItemScore{Id: p.Id, Score: 0.8},
				ai.ItemScore{Id: p.Id, Score: 0.95},
			)
		}
		return scores, nil
	}
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	selected := reranker.Rerank(context.Background(), "q", makeMedium(3), nil)
	require.Len(t, selected, 3)

	seen := make(map[core.ID]int)
	for _, si := range selected {
		seen[si.Item.Id]++
		assert.Equal(t, 0.8, si.Score, "first score for item %d wins", si.Item.Id)
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "item %d selected exactly once", id)
	}
}

func TestReranker_SubThresholdFirstScoreBlocksDuplicate(t *testing.T) {
	// The first score settles the item even when it falls below the
	// threshold; a higher duplicate cannot resurrect it.
	oracle := mock.NewMockOracle()
	oracle.ScoreFunc = func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
		scores := make([]ai.ItemScore, 0, 2*len(items))
		for _, p := range items {
			scores = append(scores,
				ai.ItemScore{Id: p.Id, Score: 0.3},
				ai.ItemScore{Id: p.Id, Score: 0.9},
			)
		}
		return scores, nil
	}
	reranker := NewReranker(oracle, testRerankerConfig(), nil)

	selected := reranker.Rerank(context.Background(), "q", makeMedium(4), nil)
	assert.Empty(t, selected)
}
