package openai

import (
	"fmt"
	"strings"

	"github.com/chorusqa/chorus/ai"
)

const jsonOutputRules = `Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace { and end
with the closing brace }. Your output must exactly follow this schema:

%s`

const classifySchema = `{
  "type": "object",
  "properties": {
    "judgements": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "tier": {"type": "string", "enum": ["high", "medium", "low"]},
          "rationale": {"type": "string"}
        },
        "required": ["id", "tier", "rationale"],
        "additionalProperties": false
      }
    }
  },
  "required": ["judgements"],
  "additionalProperties": false
}`

const scoreSchema = `{
  "type": "object",
  "properties": {
    "scores": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "score": {"type": "number", "minimum": 0, "maximum": 1},
          "rationale": {"type": "string"}
        },
        "required": ["id", "score", "rationale"],
        "additionalProperties": false
      }
    }
  },
  "required": ["scores"],
  "additionalProperties": false
}`

const synthesisSchema = `{
  "type": "object",
  "properties": {
    "answer": {"type": "string"},
    "main_sources": {"type": "array", "items": {"type": "integer"}},
    "confidence": {"type": "string", "enum": ["high", "medium", "low"]},
    "language": {"type": "string"}
  },
  "required": ["answer", "main_sources", "confidence", "language"],
  "additionalProperties": false
}`

const translateSchema = `{
  "type": "object",
  "properties": {
    "text": {"type": "string"}
  },
  "required": ["text"],
  "additionalProperties": false
}`

const matchSchema = `{
  "type": "object",
  "properties": {
    "matches": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "anchor_id": {"type": "integer"},
          "tier": {"type": "string", "enum": ["high", "medium", "low"]},
          "rationale": {"type": "string"}
        },
        "required": ["anchor_id", "tier", "rationale"],
        "additionalProperties": false
      }
    }
  },
  "required": ["matches"],
  "additionalProperties": false
}`

const insightSchema = `{
  "type": "object",
  "properties": {
    "insight": {"type": "string"}
  },
  "required": ["insight"],
  "additionalProperties": false
}`

// buildClassifyPrompt creates the system prompt for relevance classification.
func buildClassifyPrompt() string {
	return fmt.Sprintf(`You judge how relevant archived posts are to a user's question.

%s

Rules:
- Return exactly one judgement per post, keyed by the numeric id in its [id] marker.
- "high": the post directly answers or substantially informs the question.
- "medium": the post touches the question's subject but may not answer it.
- "low": no meaningful relation to the question.
- The rationale is one short sentence.
- Judge only the posts you were given. Do not invent ids.`,
		fmt.Sprintf(jsonOutputRules, classifySchema))
}

// buildScorePrompt creates the system prompt for continuous re-scoring.
func buildScorePrompt() string {
	return fmt.Sprintf(`You re-score borderline posts against a user's question on a continuous scale.

%s

Rules:
- Return exactly one score per post, keyed by the numeric id in its [id] marker.
- 1.0 means the post is essential for answering the question; 0.0 means it contributes nothing.
- A summary of already-selected highly relevant content may be provided; use it to avoid
  rewarding posts that only duplicate it.
- The rationale is one short sentence.`,
		fmt.Sprintf(jsonOutputRules, scoreSchema))
}

// buildSynthesisPrompt creates the system prompt for answer synthesis.
func buildSynthesisPrompt(persona string) string {
	base := fmt.Sprintf(`You answer a user's question using only the archived posts provided.

%s

Rules:
- Write the answer in the same language as the question.
- Cite posts inline with their numeric id in square brackets, e.g. [142].
- List in main_sources the ids of every post you actually cited, and no others.
- Never cite an id that was not provided.
- If the posts do not answer the question, say so plainly and set confidence to "low".
- Use markdown for structure where it helps.
- Set language to the ISO 639-1 code of the answer text.`,
		fmt.Sprintf(jsonOutputRules, synthesisSchema))

	if persona != "" {
		base += "\n\nVoice and style:\n" + persona
	}
	return base
}

// buildTranslatePrompt creates the system prompt for answer translation.
func buildTranslatePrompt(targetLanguage string) string {
	return fmt.Sprintf(`Translate the user's text to %s.

%s

Rules:
- Translate prose only.
- Preserve every inline citation like [142] exactly as written.
- Preserve every markdown link, code span, and structural element byte for byte.
- Do not add, remove, or reorder citations.`,
		targetLanguage, fmt.Sprintf(jsonOutputRules, translateSchema))
}

// buildMatchPrompt creates the system prompt for discussion topic matching.
func buildMatchPrompt() string {
	return fmt.Sprintf(`You judge whether community discussion topics are relevant to a user's question.
Each candidate describes how a comment thread drifted away from its original post.

%s

Rules:
- Return exactly one match per candidate, keyed by its numeric anchor_id.
- "high": the drift topic would add substantial value for someone asking this question.
- "medium": tangentially related.
- "low": unrelated.
- The rationale is one short sentence.`,
		fmt.Sprintf(jsonOutputRules, matchSchema))
}

// buildInsightPrompt creates the system prompt for discussion insight extraction.
func buildInsightPrompt() string {
	return fmt.Sprintf(`You summarize what community discussions add beyond an already-written answer.

%s

Rules:
- Two to four sentences of complementary insight drawn from the discussion topics.
- Never repeat what the main answer already covers.
- Never use inline citation syntax like [142]; discussions are not citable sources.
- Write in the same language as the question.`,
		fmt.Sprintf(jsonOutputRules, insightSchema))
}

// classifyUserMessage renders the query and passages for classification.
func classifyUserMessage(query string, items []ai.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nPosts:\n", query)
	writePassages(&b, items)
	return b.String()
}

// scoreUserMessage renders the query, passages and high-relevance context.
func scoreUserMessage(query string, items []ai.Passage, highContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", query)
	if highContext != "" {
		fmt.Fprintf(&b, "\nAlready selected content (summary):\n%s\n", highContext)
	}
	b.WriteString("\nPosts to score:\n")
	writePassages(&b, items)
	return b.String()
}

// synthesisUserMessage renders the query and the enriched passages.
func synthesisUserMessage(query string, items []ai.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nPosts:\n", query)
	writePassages(&b, items)
	return b.String()
}

// matchUserMessage renders the query and drift topic candidates.
func matchUserMessage(query string, topics []ai.TopicSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nDiscussion drift candidates:\n", query)
	writeTopics(&b, topics)
	return b.String()
}

// insightUserMessage renders the query, main answer and matched topics.
func insightUserMessage(query, answer string, topics []ai.TopicSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nMain answer (do not repeat its points):\n%s\n\nDiscussion topics:\n", query, answer)
	writeTopics(&b, topics)
	return b.String()
}

func writePassages(b *strings.Builder, items []ai.Passage) {
	for _, item := range items {
		fmt.Fprintf(b, "[%d] %s\n", item.Id, item.Text)
	}
}

func writeTopics(b *strings.Builder, topics []ai.TopicSummary) {
	for _, t := range topics {
		fmt.Fprintf(b, "anchor_id=%d topic=%q keywords=%s phrases=%s rationale=%q\n",
			t.AnchorId, t.Label,
			strings.Join(t.Keywords, ","),
			strings.Join(t.Phrases, "; "),
			t.Rationale)
	}
}
