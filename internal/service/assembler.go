package service

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"vidquiz/internal/domain"
)

// rawQuiz mirrors the JSON contract sent to the generative model. Fields stay
// raw so a present-but-wrong-typed value can be told apart from a missing one
// without failing the whole decode.
type rawQuiz struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Questions   json.RawMessage `json:"questions"`
}

type rawQuestion struct {
	Text    json.RawMessage `json:"question"`
	Options json.RawMessage `json:"options"`
	Answer  json.RawMessage `json:"answer"`
}

// AssembleQuiz parses and validates raw model output into a well-formed Quiz.
// It is a pure function: identical input always yields an identical Quiz or
// an identical error kind.
//
// The model output is untrusted. Extraction is tolerant (prose, code fences
// and reasoning markers around the JSON object are fine) but validation is
// strict: any single malformed question fails the whole assembly, and the
// video URL always comes from ref, never from the model.
func AssembleQuiz(rawOutput string, ref domain.VideoReference) (*domain.Quiz, error) {
	payload, ok := extractJSONObject(rawOutput)
	if !ok {
		return nil, domain.NewAssemblyNoJSONFoundError()
	}

	var parsed rawQuiz
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, domain.NewAssemblyNoJSONFoundError()
	}

	title, ok := decodeString(parsed.Title)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, domain.NewAssemblyMissingFieldError("title")
	}
	description, ok := decodeString(parsed.Description)
	if !ok {
		return nil, domain.NewAssemblyMissingFieldError("description")
	}

	var rawQuestions []json.RawMessage
	if len(parsed.Questions) == 0 || json.Unmarshal(parsed.Questions, &rawQuestions) != nil || len(rawQuestions) == 0 {
		return nil, domain.NewAssemblyMissingFieldError("questions")
	}

	questions := make([]*domain.Question, 0, len(rawQuestions))
	for i, raw := range rawQuestions {
		question, err := assembleQuestion(i, raw)
		if err != nil {
			return nil, err
		}
		question.Position = i
		questions = append(questions, question)
	}

	description = truncateDescription(strings.TrimSpace(description))

	return domain.NewQuiz(strings.TrimSpace(title), description, ref.URL, questions), nil
}

func assembleQuestion(index int, raw json.RawMessage) (*domain.Question, error) {
	var rq rawQuestion
	if err := json.Unmarshal(raw, &rq); err != nil {
		return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "question entry must be an object")
	}

	text, ok := decodeString(rq.Text)
	if !ok || strings.TrimSpace(text) == "" {
		return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "question text is missing or empty")
	}

	var rawOpts []json.RawMessage
	if len(rq.Options) == 0 || json.Unmarshal(rq.Options, &rawOpts) != nil {
		return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "options must be a list of exactly four items")
	}
	if len(rawOpts) != domain.QuestionOptionCount {
		return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "options must be a list of exactly four items")
	}

	options := make([]string, 0, domain.QuestionOptionCount)
	seen := make(map[string]struct{}, domain.QuestionOptionCount)
	for _, rawOpt := range rawOpts {
		opt, ok := decodeString(rawOpt)
		if !ok {
			return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "options must be strings")
		}
		if opt == "" {
			return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "options must be non-empty")
		}
		if _, dup := seen[opt]; dup {
			return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "options must be pairwise distinct")
		}
		seen[opt] = struct{}{}
		options = append(options, opt)
	}

	answer, ok := decodeString(rq.Answer)
	if !ok {
		return nil, domain.NewAssemblyInvalidQuestionShapeError(index, "answer is missing or not a string")
	}

	// Exact byte equality against exactly one option. Distinctness above
	// guarantees at most one match, so a single hit is sufficient.
	matches := 0
	for _, opt := range options {
		if opt == answer {
			matches++
		}
	}
	if matches != 1 {
		return nil, domain.NewAssemblyAnswerMismatchError(index)
	}

	// Text, options and answer are all stored verbatim so the answer keeps
	// matching its option byte for byte.
	return domain.NewQuestion(text, options, answer), nil
}

// decodeString reports whether raw holds a JSON string and returns its value.
// A missing field and a JSON null both count as absent.
func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// truncateDescription bounds the description without splitting a multi-byte
// rune at the cut point.
func truncateDescription(s string) string {
	if len(s) <= domain.MaxDescriptionLength {
		return s
	}
	cut := domain.MaxDescriptionLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// extractJSONObject isolates the first syntactically balanced JSON object in
// text. Models wrap their output in prose, markdown fences or reasoning
// blocks; scanning for a balanced top-level object tolerates all of those.
func extractJSONObject(text string) (string, bool) {
	// Reasoning models may emit a <think> block before the payload.
	if start := strings.Index(text, "<think>"); start != -1 {
		if end := strings.Index(text, "</think>"); end != -1 {
			text = text[end+len("</think>"):]
		}
	}

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				start = -1
			}
		}
	}

	return "", false
}
