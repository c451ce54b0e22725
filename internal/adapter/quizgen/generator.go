package quizgen

import (
	"context"
	"fmt"
	"strings"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// promptTemplate carries the structural contract sent to the model. The model
// does not enforce its own output shape, so the contract has to be explicit:
// exactly four distinct options per question and an answer present among them.
const promptTemplate = `Based on the following transcript, generate a quiz in valid JSON format.

The quiz must follow this exact structure:

{
  "title": "Create a concise quiz title based on the topic of the transcript.",
  "description": "Summarize the transcript in no more than 150 characters. Do not include any quiz questions or answers.",
  "questions": [
    {
      "question": "The question goes here.",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "The correct answer from the above options"
    },
    ...
    (exactly %d questions)
  ]
}

Requirements:
- Each question must have exactly 4 distinct answer options.
- Only one correct answer is allowed per question, and it must be present in 'options'.
- The output must be valid JSON and parsable as-is.
- Do not include explanations, comments, or any text outside the JSON.

Transcript:
%s`

// LLMQuestionGenerator implements domain.QuestionGenerator on top of a
// langchaingo model. The raw response is returned untouched; parsing and
// validation belong to the assembler.
type LLMQuestionGenerator struct {
	llm                 llms.Model
	transcriptCharLimit int
	maxResponseBytes    int
}

// NewLLMQuestionGenerator creates a new generator.
func NewLLMQuestionGenerator(llm llms.Model, transcriptCharLimit, maxResponseBytes int) *LLMQuestionGenerator {
	return &LLMQuestionGenerator{
		llm:                 llm,
		transcriptCharLimit: transcriptCharLimit,
		maxResponseBytes:    maxResponseBytes,
	}
}

// Generate asks the model for numQuestions quiz questions over transcript.
func (g *LLMQuestionGenerator) Generate(ctx context.Context, transcript string, numQuestions int) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", domain.NewInvalidInputError("transcript must be non-empty")
	}

	if g.transcriptCharLimit > 0 && len(transcript) > g.transcriptCharLimit {
		transcript = transcript[:g.transcriptCharLimit]
	}

	prompt := fmt.Sprintf(promptTemplate, numQuestions, transcript)

	logger.Get().Info("Requesting quiz generation",
		zap.Int("num_questions", numQuestions),
		zap.Int("transcript_chars", len(transcript)))

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", classifyGenerationError(err)
	}

	if strings.TrimSpace(response) == "" {
		return "", domain.NewGenerationEmptyResponseError()
	}
	if g.maxResponseBytes > 0 && len(response) > g.maxResponseBytes {
		return "", domain.NewGenerationResponseTooLargeError(len(response), g.maxResponseBytes)
	}

	return response, nil
}

func classifyGenerationError(err error) *domain.DomainError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") {
		return domain.NewGenerationRateLimitedError(err)
	}
	return domain.NewGenerationServiceFailureError(err)
}

var _ domain.QuestionGenerator = (*LLMQuestionGenerator)(nil)
