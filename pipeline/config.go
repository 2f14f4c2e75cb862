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

import "time"

// ClassifierConfig controls the relevance classification stage.
type ClassifierConfig struct {
	// ChunkSize is the number of items sent to the oracle per call.
	ChunkSize int
	// Parallelism bounds concurrent chunk calls.
	Parallelism int
	// MaxAttempts is the per-chunk attempt budget, including the first try.
	MaxAttempts int
	// RetryBaseDelay is the backoff base; it doubles on each retry.
	RetryBaseDelay time.Duration
}

// RerankerConfig controls the secondary re-ranking stage.
type RerankerConfig struct {
	// MaxItems caps how many medium items are sent for scoring.
	// Excess items are dropped oldest first.
	MaxItems int
	// Threshold is the minimum score for selection.
	Threshold float64
	// TopK caps how many items survive selection.
	TopK int
}

// SynthesizerConfig controls the answer synthesis stage.
type SynthesizerConfig struct {
	// MaxItems caps the total item count, linked context included.
	// Truncation keeps high tier first, then medium, then context.
	MaxItems int
}

// LanguageConfig controls the language validation stage.
type LanguageConfig struct {
	// Primary is the language queries are expected in.
	Primary string
	// Fallback is the language the corpus is predominantly in, and the
	// detector's answer when a text is ambiguous.
	Fallback string
}

// MatcherConfig controls the discussion matching stage.
type MatcherConfig struct {
	ChunkSize      int
	Parallelism    int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Config aggregates per-stage configuration for one pipeline run.
type Config struct {
	Classifier  ClassifierConfig
	Reranker    RerankerConfig
	Synthesizer SynthesizerConfig
	Language    LanguageConfig
	Matcher     MatcherConfig

	// Persona is an optional style instruction passed to synthesis.
	Persona string
	// RecentLimit is how many items a recent-only query considers.
	RecentLimit int
	// EventBuffer is the progress event bus capacity.
	EventBuffer int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Classifier: ClassifierConfig{
			ChunkSize:      30,
			Parallelism:    8,
			MaxAttempts:    3,
			RetryBaseDelay: 1 * time.Second,
		},
		Reranker: RerankerConfig{
			MaxItems:  20,
			Threshold: 0.7,
			TopK:      5,
		},
		Synthesizer: SynthesizerConfig{
			MaxItems: 50,
		},
		Language: LanguageConfig{
			Primary:  "en",
			Fallback: "ru",
		},
		Matcher: MatcherConfig{
			ChunkSize:      20,
			Parallelism:    8,
			MaxAttempts:    3,
			RetryBaseDelay: 1 * time.Second,
		},
		RecentLimit: 200,
		EventBuffer: 100,
	}
}
