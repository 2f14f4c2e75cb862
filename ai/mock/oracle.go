package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/chorusqa/chorus/ai"
)

// MockOracle is a test double for ai.Oracle.
// It allows custom behavior injection via function fields and records
// call counts per task. Safe for concurrent use.
type MockOracle struct {
	// ClassifyFunc is called by ClassifyRelevance if set.
	// If nil, every passage is judged "medium".
	ClassifyFunc func(ctx context.Context, query string, items []ai.Passage) ([]ai.TierJudgement, error)

	// ScoreFunc is called by ScoreRelevance if set.
	// If nil, every passage scores 0.5.
	ScoreFunc func(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error)

	// SynthesizeFunc is called by Synthesize if set.
	// If nil, returns a canned answer citing every supplied passage.
	SynthesizeFunc func(ctx context.Context, query string, items []ai.Passage, persona string) (*ai.Synthesis, error)

	// TranslateFunc is called by Translate if set.
	// If nil, returns the input text unchanged.
	TranslateFunc func(ctx context.Context, text, targetLanguage string) (string, error)

	// MatchFunc is called by MatchTopics if set.
	// If nil, every topic matches "low".
	MatchFunc func(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error)

	// InsightFunc is called by ExtractInsight if set.
	// If nil, returns a canned insight string.
	InsightFunc func(ctx context.Context, query, answer string, topics []ai.TopicSummary) (string, error)

	mu     sync.Mutex
	counts map[string]int
}

var _ ai.Oracle = (*MockOracle)(nil)

// NewMockOracle creates a mock oracle with default behaviors.
// Note: Returns concrete type to allow test assertions and injection.
func NewMockOracle() *MockOracle {
	return &MockOracle{counts: make(map[string]int)}
}

// ClassifyRelevance records the call and delegates to ClassifyFunc.
func (m *MockOracle) ClassifyRelevance(ctx context.Context, query string, items []ai.Passage) ([]ai.TierJudgement, error) {
	m.record("classify")

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, query, items)
	}

	judgements := make([]ai.TierJudgement, len(items))
	for i, item := range items {
		judgements[i] = ai.TierJudgement{Id: item.Id, Tier: "medium", Rationale: "mock judgement"}
	}
	return judgements, nil
}

// ScoreRelevance records the call and delegates to ScoreFunc.
func (m *MockOracle) ScoreRelevance(ctx context.Context, query string, items []ai.Passage, highContext string) ([]ai.ItemScore, error) {
	m.record("score")

	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, query, items, highContext)
	}

	scores := make([]ai.ItemScore, len(items))
	for i, item := range items {
		scores[i] = ai.ItemScore{Id: item.Id, Score: 0.5, Rationale: "mock score"}
	}
	return scores, nil
}

// Synthesize records the call and delegates to SynthesizeFunc.
func (m *MockOracle) Synthesize(ctx context.Context, query string, items []ai.Passage, persona string) (*ai.Synthesis, error) {
	m.record("synthesize")

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, query, items, persona)
	}

	var b strings.Builder
	b.WriteString("Mock answer to: ")
	b.WriteString(query)
	synthesis := &ai.Synthesis{Answer: b.String(), Confidence: "medium", Language: "en"}
	for _, item := range items {
		synthesis.MainSources = append(synthesis.MainSources, item.Id)
	}
	return synthesis, nil
}

// Translate records the call and delegates to TranslateFunc.
func (m *MockOracle) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	m.record("translate")

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, targetLanguage)
	}
	return text, nil
}

// MatchTopics records the call and delegates to MatchFunc.
func (m *MockOracle) MatchTopics(ctx context.Context, query string, topics []ai.TopicSummary) ([]ai.TopicMatch, error) {
	m.record("match")

	if m.MatchFunc != nil {
		return m.MatchFunc(ctx, query, topics)
	}

	matches := make([]ai.TopicMatch, len(topics))
	for i, t := range topics {
		matches[i] = ai.TopicMatch{AnchorId: t.AnchorId, Tier: "low", Rationale: "mock match"}
	}
	return matches, nil
}

// ExtractInsight records the call and delegates to InsightFunc.
func (m *MockOracle) ExtractInsight(ctx context.Context, query, answer string, topics []ai.TopicSummary) (string, error) {
	m.record("insight")

	if m.InsightFunc != nil {
		return m.InsightFunc(ctx, query, answer, topics)
	}
	return "mock discussion insight", nil
}

// CallCount returns the number of calls recorded for a task:
// "classify", "score", "synthesize", "translate", "match" or "insight".
func (m *MockOracle) CallCount(task string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[task]
}

// TotalCalls returns the number of oracle calls across all tasks.
func (m *MockOracle) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.counts {
		total += c
	}
	return total
}

// Reset clears call counts and custom functions.
func (m *MockOracle) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
	m.ClassifyFunc = nil
	m.ScoreFunc = nil
	m.SynthesizeFunc = nil
	m.TranslateFunc = nil
	m.MatchFunc = nil
	m.InsightFunc = nil
}

func (m *MockOracle) record(task string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[task]++
}
