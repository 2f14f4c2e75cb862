package ai

import "github.com/chorusqa/chorus/core"

// Passage is one unit of content sent to the oracle for judgement.
// Text already includes whatever framing the stage chose (author,
// timestamp, linked context); the oracle never sees storage records.
type Passage struct {
	Id   core.ID
	Text string
}

// TierJudgement is the oracle's relevance classification for one passage.
type TierJudgement struct {
	Id        core.ID
	Tier      string // "high", "medium" or "low"
	Rationale string
}

// ItemScore is the oracle's continuous relevance score for one passage.
type ItemScore struct {
	Id        core.ID
	Score     float64 // in [0,1]
	Rationale string
}

// Synthesis is the oracle's answer to a query.
type Synthesis struct {
	Answer      string
	MainSources []core.ID // identifiers the oracle claims to have cited
	Confidence  string    // "high", "medium" or "low"
	Language    string    // ISO 639-1 code of the answer text
}

// TopicSummary is the drift metadata of one discussion group, as sent to
// the oracle for matching. Raw comment text never appears here.
type TopicSummary struct {
	AnchorId  core.ID
	Label     string
	Keywords  []string
	Phrases   []string
	Rationale string
}

// TopicMatch is the oracle's relevance judgement for one discussion group.
type TopicMatch struct {
	AnchorId  core.ID
	Tier      string
	Rationale string
}
