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

func makeEnriched(n int, tier core.Tier) []core.EnrichedItem {
	items := makeItems(n)
	enriched := make([]core.EnrichedItem, n)
	for i, item := range items {
		enriched[i] = core.EnrichedItem{Item: item, Tier: tier, Selected: true}
	}
	return enriched
}

func TestSynthesizer_StripsHallucinatedCitations(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.SynthesizeFunc = func(ctx context.Context, query string, items []ai.Passage, persona string) (*ai.Synthesis, error) {
		return &ai.Synthesis{
			Answer:      "Tools were discussed in [1] and [9999], see also [2].",
			MainSources: []core.ID{1, 9999, 2},
			Confidence:  "high",
			Language:    "en",
		}, nil
	}
	synthesizer := NewSynthesizer(oracle, SynthesizerConfig{MaxItems: 50}, nil)

	result, err := synthesizer.Synthesize(context.Background(), "what tools?", makeEnriched(13, core.TierHigh), "")
	require.NoError(t, err)

	assert.Equal(t, []core.ID{1, 2}, result.MainSources, "unsupplied identifier 9999 excluded")
	assert.NotContains(t, result.Answer, "9999")
	assert.Contains(t, result.Answer, "[1]")
	assert.Contains(t, result.Answer, "[2]")
	assert.Equal(t, core.TierHigh, result.Confidence)
}

func TestSynthesizer_MainSourcesSubsetOfSupplied(t *testing.T) {
	oracle := mock.NewMockOracle() // default cites everything supplied
	synthesizer := NewSynthesizer(oracle, SynthesizerConfig{MaxItems: 50}, nil)

	enriched := makeEnriched(5, core.TierHigh)
	result, err := synthesizer.Synthesize(context.Background(), "q", enriched, "")
	require.NoError(t, err)

	supplied := make(map[core.ID]bool)
	for _, ei := range enriched {
		supplied[ei.Item.Id] = true
	}
	for _, id := range result.MainSources {
		assert.True(t, supplied[id])
	}
}

func TestSynthesizer_CapTrimsContextFirst(t *testing.T) {
	var sent []ai.Passage
	oracle := mock.NewMockOracle()
	oracle.SynthesizeFunc = func(ctx context.Context, query string, items []ai.Passage, persona string) (*ai.Synthesis, error) {
		sent = items
		return &ai.Synthesis{Answer: "ok", Language: "en"}, nil
	}
	synthesizer := NewSynthesizer(oracle, SynthesizerConfig{MaxItems: 6}, nil)

	contextItems := makeItems(10)
	enriched := makeEnriched(4, core.TierHigh)
	enriched[0].Context = contextItems[4:9] // 5 context items, budget is 2

	_, err := synthesizer.Synthesize(context.Background(), "q", enriched, "")
	require.NoError(t, err)

	require.Len(t, sent, 4, "all selected items survive")
	// 6-item cap leaves room for only 2 of the 5 context attachments.
	assert.Contains(t, sent[0].Text, "post number 5")
	assert.Contains(t, sent[0].Text, "post number 6")
	assert.NotContains(t, sent[0].Text, "post number 7")
}

func TestSynthesizer_CapTruncatesSelectedItems(t *testing.T) {
	var sent []ai.Passage
	oracle := mock.NewMockOracle()
	oracle.SynthesizeFunc = func(ctx context.Context, query string, items []ai.Passage, persona string) (*ai.Synthesis, error) {
		sent = items
		return &ai.Synthesis{Answer: "ok", Language: "en"}, nil
	}
	synthesizer := NewSynthesizer(oracle, SynthesizerConfig{MaxItems: 3}, nil)

	// High items precede medium in the expander's output; the cap keeps
	// the front of the list, so high survives.
	enriched := append(makeEnriched(2, core.TierHigh), makeEnriched(4, core.TierMedium)...)
	_, err := synthesizer.Synthesize(context.Background(), "q", enriched, "")
	require.NoError(t, err)
	require.Len(t, sent, 3)
}

func TestSynthesizer_EmptyInput(t *testing.T) {
	oracle := mock.NewMockOracle()
	synthesizer := NewSynthesizer(oracle, SynthesizerConfig{MaxItems: 50}, nil)

	_, err := synthesizer.Synthesize(context.Background(), "q", nil, "")
	assert.ErrorIs(t, err, ErrNothingToSynthesize)
	assert.Zero(t, oracle.TotalCalls())
}

func TestSynthesizer_OracleFailurePropagates(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.SynthesizeFunc = func(ctx context.Context, query string, items []ai.Passage, persona string) (*ai.Synthesis, error) {
		return nil, ai.NewOracleError(ai.FailureTimeout, nil)
	}
	synthesizer := NewSynthesizer(oracle, SynthesizerConfig{MaxItems: 50}, nil)

	_, err := synthesizer.Synthesize(context.Background(), "q", makeEnriched(3, core.TierHigh), "")
	require.Error(t, err)
	assert.Equal(t, ai.FailureTimeout, ai.Kind(err))
}
