package ai

import "context"

// Oracle is the scoring oracle: an external LLM inference service treated
// as an opaque request/response collaborator. Every pipeline stage that
// needs a judgement goes through this interface.
// Implementations must be thread-safe for concurrent use.
type Oracle interface {
	// ClassifyRelevance classifies each passage as high/medium/low
	// relevance to the query. Returns one judgement per passage that the
	// oracle produced a valid answer for; callers must not assume full
	// coverage and should treat missing passages as unclassified.
	ClassifyRelevance(ctx context.Context, query string, items []Passage) ([]TierJudgement, error)

	// ScoreRelevance assigns a continuous relevance score in [0,1] to each
	// passage. highContext is a compact summary of already-selected
	// high-relevance content, given to the oracle for calibration only.
	ScoreRelevance(ctx context.Context, query string, items []Passage, highContext string) ([]ItemScore, error)

	// Synthesize produces an answer to the query from the supplied
	// passages, citing passage identifiers inline. The returned
	// MainSources list is the oracle's claim and must be validated by the
	// caller against the supplied identifiers before trusting it.
	Synthesize(ctx context.Context, query string, items []Passage, persona string) (*Synthesis, error)

	// Translate translates prose to the target language while preserving
	// inline citations, links, and markdown structure exactly.
	Translate(ctx context.Context, text, targetLanguage string) (string, error)

	// MatchTopics matches pre-computed discussion drift topics against the
	// query. Only drift metadata is sent, never raw comment text.
	MatchTopics(ctx context.Context, query string, topics []TopicSummary) ([]TopicMatch, error)

	// ExtractInsight produces short complementary-insight text from
	// matched discussion topics, given the main answer for deduplication.
	// The output must not contain inline citation syntax.
	ExtractInsight(ctx context.Context, query, answer string, topics []TopicSummary) (string, error)
}

// OracleProvider aggregates oracle services for convenient initialization
// and lifecycle management.
type OracleProvider interface {
	// Oracle returns the scoring oracle service.
	// The returned Oracle is safe for concurrent use.
	Oracle() Oracle

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
