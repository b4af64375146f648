package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"contentwizard/internal/catalog"
	"contentwizard/internal/substitute"
)

// Input limits, in characters.
const (
	MaxPromptLength       = 2000
	MaxContentLength      = 8000
	MaxInstructionsLength = 1000
)

var (
	// ErrEmptyInput is returned when the prompt or content is blank.
	ErrEmptyInput = errors.New("empty input")

	// ErrInputTooLong is returned when an input exceeds its limit.
	ErrInputTooLong = errors.New("input too long")

	// ErrEmptyResult is returned when the provider answers with no text.
	ErrEmptyResult = errors.New("empty result from provider")
)

// FlaggedError is returned when moderation rejects the user's text.
type FlaggedError struct {
	Categories []string
}

func (e *FlaggedError) Error() string {
	if len(e.Categories) == 0 {
		return "prompt flagged by moderation"
	}
	return "prompt flagged by moderation: " + strings.Join(e.Categories, ", ")
}

// Generator is the part of Registry the Writer generates with.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PromptChecker is the part of Registry the Writer moderates with.
type PromptChecker interface {
	CheckPrompt(ctx context.Context, text string) (*ModerationResult, error)
}

// GenerateRequest describes a block of copy to write.
type GenerateRequest struct {
	Prompt    string            `json:"prompt"`
	Style     catalog.Style     `json:"style"`
	BlockType catalog.BlockType `json:"blockType,omitempty"`
	Niche     string            `json:"niche,omitempty"`
	Language  string            `json:"language,omitempty"`
}

// Writer produces and improves template content with an LLM. Its results
// are treated as template content, so placeholders survive generation.
type Writer struct {
	gen     Generator
	checker PromptChecker
}

// NewWriter returns a Writer. checker may be nil to skip moderation.
func NewWriter(gen Generator, checker PromptChecker) *Writer {
	return &Writer{gen: gen, checker: checker}
}

var toneDescriptions = map[catalog.Tone]string{
	catalog.ToneFormal:   "formal, precise and respectful",
	catalog.ToneCasual:   "casual and conversational",
	catalog.ToneUrgent:   "urgent, energetic and action-oriented",
	catalog.ToneFriendly: "warm, friendly and encouraging",
}

var lengthDescriptions = map[catalog.Length]string{
	catalog.LengthShort:  "one or two sentences",
	catalog.LengthMedium: "one short paragraph",
	catalog.LengthLong:   "two to four paragraphs",
}

var emotionDescriptions = map[catalog.Emotion]string{
	catalog.EmotionExcitement: "excitement about the result",
	catalog.EmotionFear:       "the cost of missing out",
	catalog.EmotionTrust:      "trust and credibility",
	catalog.EmotionCuriosity:  "curiosity",
}

func languageName(code string) string {
	if code == "en" {
		return "English"
	}
	return "Russian"
}

const placeholderRule = `Text in double curly braces such as {{name}} is a placeholder that the user fills in later.
Keep every placeholder exactly as written, and you may add new ones in the same form for details you do not know.`

func buildGenerateSystemPrompt(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString("You are an experienced direct-response copywriter writing marketing copy for a small business.\n")
	if d, ok := toneDescriptions[req.Style.Tone]; ok {
		fmt.Fprintf(&b, "Tone: %s.\n", d)
	}
	if d, ok := lengthDescriptions[req.Style.Length]; ok {
		fmt.Fprintf(&b, "Length: %s.\n", d)
	}
	if d, ok := emotionDescriptions[req.Style.Emotion]; ok {
		fmt.Fprintf(&b, "Appeal to %s.\n", d)
	}
	if req.BlockType != "" {
		fmt.Fprintf(&b, "The text is the %q section of the page.\n", req.BlockType)
	}
	if req.Niche != "" && req.Niche != catalog.UniversalNiche {
		fmt.Fprintf(&b, "The audience is in the %q niche.\n", req.Niche)
	}
	fmt.Fprintf(&b, "Write in %s.\n", languageName(req.Language))
	b.WriteString(placeholderRule)
	b.WriteString("\nOutput ONLY the text, without quotes, headings or commentary.")
	return b.String()
}

const improveSystemPrompt = `You are an experienced editor of marketing copy. Improve the given text following the user's instructions.
Keep the language of the original text.
` + placeholderRule + `
Output ONLY the improved text, nothing else.`

// Generate writes new copy for req.
func (w *Writer) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if err := checkLength(prompt, MaxPromptLength); err != nil {
		return "", fmt.Errorf("generate: prompt: %w", err)
	}
	if err := w.moderate(ctx, prompt); err != nil {
		return "", err
	}

	out, err := w.gen.Generate(ctx, buildGenerateSystemPrompt(req), prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return cleanResult(out)
}

// Improve rewrites content following instructions. Placeholders that the
// provider dropped are logged, not restored.
func (w *Writer) Improve(ctx context.Context, content, instructions string) (string, error) {
	content = strings.TrimSpace(content)
	instructions = strings.TrimSpace(instructions)
	if err := checkLength(content, MaxContentLength); err != nil {
		return "", fmt.Errorf("improve: content: %w", err)
	}
	if utf8.RuneCountInString(instructions) > MaxInstructionsLength {
		return "", fmt.Errorf("improve: instructions: %w", ErrInputTooLong)
	}
	if instructions == "" {
		instructions = "Make it clearer and more persuasive."
	}
	if err := w.moderate(ctx, instructions+"\n\n"+content); err != nil {
		return "", err
	}

	userPrompt := "Instructions: " + instructions + "\n\nText:\n" + content
	out, err := w.gen.Generate(ctx, improveSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("improve: %w", err)
	}
	result, err := cleanResult(out)
	if err != nil {
		return "", err
	}

	if lost := lostPlaceholders(content, result); len(lost) > 0 {
		slog.Warn("improved text dropped placeholders", "placeholders", lost)
	}
	return result, nil
}

// moderate fails open: a broken moderation endpoint does not block
// generation, providers have their own filters.
func (w *Writer) moderate(ctx context.Context, text string) error {
	if w.checker == nil {
		return nil
	}
	res, err := w.checker.CheckPrompt(ctx, text)
	if err != nil {
		slog.Warn("moderation check failed, allowing prompt", "error", err)
		return nil
	}
	if !res.Safe {
		slog.Warn("prompt flagged by moderation", "categories", strings.Join(res.Categories, ", "))
		return &FlaggedError{Categories: res.Categories}
	}
	return nil
}

func checkLength(s string, max int) error {
	if s == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(s) > max {
		return ErrInputTooLong
	}
	return nil
}

// cleanResult strips code fences and surrounding quotes some models add.
func cleanResult(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	for _, q := range [][2]string{{`"`, `"`}, {"«", "»"}} {
		if len(s) > len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) &&
			!strings.Contains(s[len(q[0]):len(s)-len(q[1])], q[0]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	if s == "" {
		return "", ErrEmptyResult
	}
	return s, nil
}

func lostPlaceholders(before, after string) []string {
	kept := make(map[string]bool)
	for _, name := range substitute.Placeholders(after) {
		kept[name] = true
	}
	var lost []string
	for _, name := range substitute.Placeholders(before) {
		if !kept[name] {
			lost = append(lost, name)
		}
	}
	return lost
}
