package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for content items within one source.
// Items imported from an archive keep their upstream numeric identifier;
// items without one get a content-based ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Tier is a relevance classification for a content item or discussion match.
type Tier int

const (
	// TierNone means no classification has been made.
	TierNone Tier = iota
	// TierLow marks content with no meaningful relation to the query.
	TierLow
	// TierMedium marks content that may be relevant.
	TierMedium
	// TierHigh marks content directly relevant to the query.
	TierHigh
)

// String returns the canonical lowercase name of the tier.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return "none"
	}
}

// ParseTier converts an oracle-supplied tier label to a Tier.
// Unknown labels map to TierNone.
func ParseTier(s string) Tier {
	switch s {
	case "high", "HIGH", "High":
		return TierHigh
	case "medium", "MEDIUM", "Medium":
		return TierMedium
	case "low", "LOW", "Low":
		return TierLow
	default:
		return TierNone
	}
}

// ContentItem is one archived post or comment from a source.
// Items are immutable once ingested; the pipeline only reads them.
type ContentItem struct {
	Id        ID
	Source    string
	Author    string
	Text      string
	Timestamp time.Time // When the item was originally posted
	LinkedIds []ID      // Items this one replies to, forwards, or mentions
}

// DriftTopic is a pre-computed summary of how a comment thread departed
// from its anchor item's subject. Produced by an offline analysis job.
type DriftTopic struct {
	Label     string
	Keywords  []string
	Phrases   []string
	Rationale string
}

// DiscussionGroup summarizes the reply thread under one anchor item.
type DiscussionGroup struct {
	AnchorId ID
	Source   string
	HasDrift bool
	Topics   []DriftTopic
}

// Query is the caller's question plus optional filters.
type Query struct {
	Text               string
	Sources            []string // nil means all configured sources
	RecentOnly         bool
	IncludeDiscussions bool
}

// ClassifiedItem is a ContentItem annotated with a relevance tier.
// The tier is immutable once set.
type ClassifiedItem struct {
	Item      *ContentItem
	Tier      Tier
	Rationale string
}

// ScoredItem is a MEDIUM-tier ClassifiedItem annotated with a continuous
// relevance score in [0,1] from the secondary re-ranking pass.
type ScoredItem struct {
	ClassifiedItem
	Score          float64
	ScoreRationale string
}

// EnrichedItem is a classified or scored item plus its one-hop linked
// context. Selected distinguishes originally selected items from items
// pulled in as context only; context-only items are never citable.
type EnrichedItem struct {
	Item     *ContentItem
	Tier     Tier
	Selected bool
	Context  []*ContentItem
}

// SynthesisResult is the generated answer for one source.
// MainSources holds only identifiers that were actually supplied to the
// synthesis call; claimed citations outside that set are stripped.
type SynthesisResult struct {
	Answer      string
	MainSources []ID
	Confidence  Tier
	Language    string
}

// MatchedDiscussion is a DiscussionGroup matched against the query.
type MatchedDiscussion struct {
	Group     *DiscussionGroup
	Tier      Tier
	Rationale string
}

// ExpertResult is the final per-source output of the pipeline.
type ExpertResult struct {
	Source             string
	Synthesis          *SynthesisResult
	Discussions        []MatchedDiscussion
	DiscussionInsights string
	PartialFailures    []string
	Failed             bool
	FailureReason      string
}
