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

func testLanguageConfig() LanguageConfig {
	return LanguageConfig{Primary: "en", Fallback: "ru"}
}

func TestLanguageValidator_DetectLanguage(t *testing.T) {
	validator := NewLanguageValidator(mock.NewMockOracle(), testLanguageConfig(), nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "What tools were discussed last week?", "en"},
		{"russian", "Какие инструменты обсуждались на прошлой неделе?", "ru"},
		{"mixed mostly russian", "Обсуждали Docker и Kubernetes вчера вечером", "ru"},
		{"empty is ambiguous", "", "ru"},
		{"digits only is ambiguous", "12345 67890", "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validator.DetectLanguage(tt.text))
		})
	}
}

func TestLanguageValidator_NoOpWhenLanguagesMatch(t *testing.T) {
	oracle := mock.NewMockOracle()
	validator := NewLanguageValidator(oracle, testLanguageConfig(), nil)

	result := &core.SynthesisResult{Answer: "The tools discussed were Docker [1] and Kubernetes [2]."}
	first := validator.Validate(context.Background(), "What tools?", result)
	second := validator.Validate(context.Background(), "What tools?", first)

	assert.Equal(t, first.Answer, second.Answer, "idempotent on matching languages")
	assert.Equal(t, "en", second.Language)
	assert.Zero(t, oracle.CallCount("translate"))
}

func TestLanguageValidator_TranslatesFallbackAnswerForPrimaryQuery(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.TranslateFunc = func(ctx context.Context, text, targetLanguage string) (string, error) {
		assert.Equal(t, "en", targetLanguage)
		return "The discussion covered tooling [1] and deployment [2].", nil
	}
	validator := NewLanguageValidator(oracle, testLanguageConfig(), nil)

	result := &core.SynthesisResult{Answer: "Обсуждение касалось инструментов [1] и развертывания [2]."}
	validated := validator.Validate(context.Background(), "What was discussed?", result)

	assert.Equal(t, 1, oracle.CallCount("translate"), "exactly one translation call")
	assert.Equal(t, "en", validated.Language)
	assert.Contains(t, validated.Answer, "[1]")
	assert.Contains(t, validated.Answer, "[2]")
}

func TestLanguageValidator_PrimaryAnswerForFallbackQueryUntouched(t *testing.T) {
	oracle := mock.NewMockOracle()
	validator := NewLanguageValidator(oracle, testLanguageConfig(), nil)

	result := &core.SynthesisResult{Answer: "The tools were Docker and Kubernetes."}
	validated := validator.Validate(context.Background(), "Какие инструменты?", result)

	assert.Zero(t, oracle.CallCount("translate"), "only fallback-to-primary is corrected")
	assert.Equal(t, "en", validated.Language)
}

func TestLanguageValidator_KeepsOriginalOnTranslationFailure(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.TranslateFunc = func(ctx context.Context, text, targetLanguage string) (string, error) {
		return "", ai.NewOracleError(ai.FailureTimeout, nil)
	}
	validator := NewLanguageValidator(oracle, testLanguageConfig(), nil)

	original := "Ответ на русском языке [1]."
	result := &core.SynthesisResult{Answer: original}
	validated := validator.Validate(context.Background(), "English question here", result)

	assert.Equal(t, original, validated.Answer)
	assert.Equal(t, "ru", validated.Language)
}

func TestLanguageValidator_KeepsOriginalWhenCitationsMangled(t *testing.T) {
	oracle := mock.NewMockOracle()
	oracle.TranslateFunc = func(ctx context.Context, text, targetLanguage string) (string, error) {
		return "Translated but citation dropped.", nil
	}
	validator := NewLanguageValidator(oracle, testLanguageConfig(), nil)

	original := "Ответ с цитатой [1] и ссылкой [2]."
	result := &core.SynthesisResult{Answer: original}
	validated := validator.Validate(context.Background(), "English question here", result)

	require.Equal(t, original, validated.Answer, "mangled translation discarded")
	assert.Equal(t, "ru", validated.Language)
}

func TestLanguageValidator_KeepsOriginalWhenTranslationAltersLink(t *testing.T) {
	// Citations survive but the link URL is rewritten; the original
	// answer must be kept since every link span is contractually
	// byte-for-byte.
	oracle := mock.NewMockOracle()
	oracle.TranslateFunc = func(ctx context.Context, text, targetLanguage string) (string, error) {
		return "See the thread [1] at [исходный пост](https://example.com/translated/42).", nil
	}
	validator := NewLanguageValidator(oracle, testLanguageConfig(), nil)

	original := "Смотрите обсуждение [1] в [исходный пост](https://example.com/post/42)."
	result := &core.SynthesisResult{Answer: original}
	validated := validator.Validate(context.Background(), "Where is the thread?", result)

	assert.Equal(t, original, validated.Answer)
	assert.Equal(t, "ru", validated.Language, "kept answer keeps its language")
}

func TestLanguageValidator_AcceptsTranslationWithLinksIntact(t *testing.T) {
	link := "[исходный пост](https://example.com/post/42)"
	oracle := mock.NewMockOracle()
	oracle.TranslateFunc = func(ctx context.Context, text, targetLanguage string) (string, error) {
		return "See the thread [1] at " + link + ".", nil
	}
	validator := NewLanguageValidator(oracle, testLanguageConfig(), nil)

	result := &core.SynthesisResult{Answer: "Смотрите обсуждение [1] в " + link + "."}
	validated := validator.Validate(context.Background(), "Where is the thread?", result)

	assert.Equal(t, "en", validated.Language)
	assert.Contains(t, validated.Answer, link, "link span untouched")
}
