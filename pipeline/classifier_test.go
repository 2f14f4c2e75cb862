package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/ai/mock"
	"github.com/chorusqa/chorus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pipelineEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func makeItems(n int) []*core.ContentItem {
	items := make([]*core.ContentItem, n)
	for i := range items {
		items[i] = &core.ContentItem{
			Id:        core.ID(i + 1),
			Source:    "expert_a",
			Author:    "author",
			Text:      fmt.Sprintf("post number %d", i+1),
			Timestamp: pipelineEpoch.Add(time.Duration(i) * time.Minute),
		}
	}
	return items
}

func testClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		ChunkSize:      10,
		Parallelism:    4,
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
	}
}

func TestClassifier_EveryItemClassifiedOnce(t *testing.T) {
	oracle := mock.NewMockOracle()
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	items := makeItems(45)
	outcome, err := classifier.Classify(context.Background(), "what tools?", items, nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.PartialFailures)
	require.Len(t, outcome.Items, 45)

	seen := make(map[core.ID]int)
	for _, ci := range outcome.Items {
		seen[ci.Item.Id]++
	}
	for _, item := range items {
		assert.Equal(t, 1, seen[item.Id], "item %d classified exactly once", item.Id)
	}
}

func TestClassifier_SortsHighFirst(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.ClassifyFunc = func(ctx context.Context, query string, passages []ai.Passage) ([]ai.TierJudgement, error) {
		judgements := make([]ai.TierJudgement, len(passages))
		for i, p := range passages {
			tier := "low"
			switch p.Id % 3 {
			case 0:
				tier = "high"
			case 1:
				tier = "medium"
			}
			judgements[i] = ai.TierJudgement{Id: p.Id, Tier: tier}
		}
		return judgements, nil
	}
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	outcome, err := classifier.Classify(context.Background(), "q", makeItems(30), nil)
	require.NoError(t, err)
	require.Len(t, outcome.Items, 30)

	lastTier := core.TierHigh
	for _, ci := range outcome.Items {
		assert.LessOrEqual(t, int(ci.Tier), int(lastTier), "tiers descend")
		lastTier = ci.Tier
	}
	assert.Equal(t, core.TierHigh, outcome.Items[0].Tier)
}

func TestClassifier_ChunkRecoversOnRetry(t *testing.T) {
	var calls atomic.Int32
	oracle := mock.NewMockOracle()
	oracle.ClassifyFunc = func(ctx context.Context, query string, passages []ai.Passage) ([]ai.TierJudgement, error) {
		if calls.Add(1) == 1 {
			return nil, ai.NewOracleError(ai.FailureTimeout, context.DeadlineExceeded)
		}
		judgements := make([]ai.TierJudgement, len(passages))
		for i, p := range passages {
			judgements[i] = ai.TierJudgement{Id: p.Id, Tier: "low"}
		}
		return judgements, nil
	}
	config := testClassifierConfig()
	config.ChunkSize = 50
	classifier := NewClassifier(oracle, config, nil)

	outcome, err := classifier.Classify(context.Background(), "q", makeItems(20), nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.PartialFailures)
	assert.Len(t, outcome.Items, 20)
}

func TestClassifier_GlobalRetryPassRecoversChunk(t *testing.T) {
	// One chunk fails its entire per-chunk budget, then succeeds on the
	// single global pass attempt.
	var calls atomic.Int32
	oracle := mock.NewMockOracle()
	oracle.ClassifyFunc = func(ctx context.Context, query string, passages []ai.Passage) ([]ai.TierJudgement, error) {
		if passages[0].Id == 1 && calls.Add(1) <= 3 {
			return nil, ai.NewOracleError(ai.FailureRateLimited, nil)
		}
		judgements := make([]ai.TierJudgement, len(passages))
		for i, p := range passages {
			judgements[i] = ai.TierJudgement{Id: p.Id, Tier: "medium"}
		}
		return judgements, nil
	}
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	outcome, err := classifier.Classify(context.Background(), "q", makeItems(20), nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.PartialFailures)
	assert.Len(t, outcome.Items, 20)
}

func TestClassifier_FailedChunkRecordedAsPartialFailure(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.ClassifyFunc = func(ctx context.Context, query string, passages []ai.Passage) ([]ai.TierJudgement, error) {
		if passages[0].Id == 1 {
			return nil, ai.NewOracleError(ai.FailureTimeout, nil)
		}
		judgements := make([]ai.TierJudgement, len(passages))
		for i, p := range passages {
			judgements[i] = ai.TierJudgement{Id: p.Id, Tier: "low"}
		}
		return judgements, nil
	}
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	outcome, err := classifier.Classify(context.Background(), "q", makeItems(30), nil)
	require.NoError(t, err)
	require.Len(t, outcome.PartialFailures, 1)
	assert.Contains(t, outcome.PartialFailures[0], "chunk 1/3")
	// The failed chunk's 10 items yield nothing; the rest survive.
	assert.Len(t, outcome.Items, 20)
}

func TestClassifier_AllChunksFailed(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.ClassifyFunc = func(ctx context.Context, query string, passages []ai.Passage) ([]ai.TierJudgement, error) {
		return nil, ai.NewOracleError(ai.FailureOther, nil)
	}
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	outcome, err := classifier.Classify(context.Background(), "q", makeItems(20), nil)
	assert.ErrorIs(t, err, ErrAllChunksFailed)
	assert.Len(t, outcome.PartialFailures, 2)
	assert.Empty(t, outcome.Items)
}

func TestClassifier_ReportsChunkProgress(t *testing.T) {
	oracle := mock.NewMockOracle()
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	var progress []int
	_, err := classifier.Classify(context.Background(), "q", makeItems(30), func(done, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, progress)
}

func TestClassifier_EmptyInput(t *testing.T) {
	oracle := mock.NewMockOracle()
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	outcome, err := classifier.Classify(context.Background(), "q", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.Items)
	assert.Zero(t, oracle.TotalCalls())
}

func TestClassifier_CollapsesDuplicateJudgements(t *testing.T) {
	// An oracle echoing every id twice with conflicting tiers must not
	// produce two ClassifiedItems for one item; the first valid
	// judgement wins.
	oracle := mock.NewMockOracle()
	oracle.ClassifyFunc = func(ctx context.Context, query string, passages []ai.Passage) ([]ai.TierJudgement, error) {
		judgements := make([]ai.TierJudgement, 0, 2*len(passages))
		for _, p := range passages {
			judgements = append(judgements,
				ai.TierJudgement{Id: p.Id, Tier: "medium", Rationale: "first"},
				ai.TierJudgement{Id: p.Id, Tier: "high", Rationale: "echo"},
			)
		}
		return judgements, nil
	}
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	items := makeItems(8)
	outcome, err := classifier.Classify(context.Background(), "q", items, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Items, 8)

	seen := make(map[core.ID]int)
	for _, ci := range outcome.Items {
		seen[ci.Item.Id]++
		assert.Equal(t, core.TierMedium, ci.Tier, "first judgement for item %d wins", ci.Item.Id)
	}
	for _, item := range items {
		assert.Equal(t, 1, seen[item.Id], "item %d classified exactly once", item.Id)
	}
}

func TestClassifier_InvalidTierDoesNotConsumeItem(t *testing.T) {
	// A garbage tier is skipped without blocking a later valid
	// judgement for the same id.
	oracle := mock.NewMockOracle()
	oracle.ClassifyFunc = func(ctx context.Context, query string, passages []ai.Passage) ([]ai.TierJudgement, error) {
		judgements := make([]ai.TierJudgement, 0, 2*len(passages))
		for _, p := range passages {
			judgements = append(judgements,
				ai.TierJudgement{Id: p.Id, Tier: "critical"},
				ai.TierJudgement{Id: p.Id, Tier: "low"},
			)
		}
		return judgements, nil
	}
	classifier := NewClassifier(oracle, testClassifierConfig(), nil)

	outcome, err := classifier.Classify(context.Background(), "q", makeItems(5), nil)
	require.NoError(t, err)
	require.Len(t, outcome.Items, 5)
	for _, ci := range outcome.Items {
		assert.Equal(t, core.TierLow, ci.Tier)
	}
}
