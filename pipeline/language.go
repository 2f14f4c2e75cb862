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

import (
	"context"
	"log/slog"
	"regexp"
	"unicode"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
)

// markdownLinkPattern matches a whole markdown link span, text and URL.
var markdownLinkPattern = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)

// LanguageValidator checks the synthesized answer's language against
// the query's and translates when the answer came back in the fallback
// language for a primary-language query. Detection is a local script
// heuristic; the only oracle call is the translation itself. A failed
// or citation-mangling translation keeps the original answer.
type LanguageValidator struct {
	oracle ai.Oracle
	config LanguageConfig
	logger *slog.Logger
}

// NewLanguageValidator creates a language validator.
func NewLanguageValidator(oracle ai.Oracle, config LanguageConfig, logger *slog.Logger) *LanguageValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LanguageValidator{
		oracle: oracle,
		config: config,
		logger: logger.With("component", "language"),
	}
}

// Validate returns the synthesis result, translated if the query is in
// the primary language but the answer is not. When languages already
// match the input is returned untouched, making repeated validation a
// no-op.
func (v *LanguageValidator) Validate(ctx context.Context, query string, result *core.SynthesisResult) *core.SynthesisResult {
	queryLang := v.DetectLanguage(query)
	answerLang := v.DetectLanguage(result.Answer)

	if queryLang == answerLang {
		result.Language = answerLang
		return result
	}
	if queryLang != v.config.Primary || answerLang != v.config.Fallback {
		// Only the fallback-answer-to-primary-query direction is corrected.
		result.Language = answerLang
		return result
	}

	translated, err := v.oracle.Translate(ctx, result.Answer, v.config.Primary)
	if err != nil {
		v.logger.Warn("translation failed, keeping original answer", "error", err)
		result.Language = answerLang
		return result
	}
	if !citationsPreserved(result.Answer, translated) {
		v.logger.Warn("translation altered citations, keeping original answer")
		result.Language = answerLang
		return result
	}
	if !linksPreserved(result.Answer, translated) {
		v.logger.Warn("translation altered markdown links, keeping original answer")
		result.Language = answerLang
		return result
	}

	result.Answer = translated
	result.Language = v.config.Primary
	return result
}

// DetectLanguage classifies text as the primary or fallback language by
// counting Latin versus Cyrillic letters. Deterministic and local.
// Ambiguous text (no letters, or a tie) maps to the fallback language.
func (v *LanguageValidator) DetectLanguage(text string) string {
	var latin, cyrillic int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if latin > cyrillic {
		return v.config.Primary
	}
	return v.config.Fallback
}

// citationsPreserved checks that the translated text carries exactly
// the citations of the original, in order.
func citationsPreserved(original, translated string) bool {
	return sameMatches(citationPattern, original, translated)
}

// linksPreserved checks that every markdown link span survives the
// translation byte for byte, in order. Link text counts as part of the
// span; the translation contract excludes links from the prose.
func linksPreserved(original, translated string) bool {
	return sameMatches(markdownLinkPattern, original, translated)
}

func sameMatches(pattern *regexp.Regexp, original, translated string) bool {
	before := pattern.FindAllString(original, -1)
	after := pattern.FindAllString(translated, -1)
	if len(before) != len(after) {
		return false
	}
	for i := range before {
		if before[i] != after[i] {
			return false
		}
	}
	return true
}
