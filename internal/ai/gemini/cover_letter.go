package gemini

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/ai"
	"github.com/spigell/hh-scout/internal/utils"
)

//go:embed cover_letter_prompt.md
var coverLetterPrompt string

type CoverLetterWriter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewCoverLetterWriter(generator contentGenerator, logger *zap.Logger, maxLogLength int) *CoverLetterWriter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CoverLetterWriter{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Write returns a cover letter in the language of the vacancy.
func (w *CoverLetterWriter) Write(ctx context.Context, vacancyText, resumeText string) (string, error) {
	vacancyText = strings.TrimSpace(vacancyText)
	if vacancyText == "" {
		return "", errors.New("vacancy text is empty")
	}

	lang := ai.DetectLanguage(vacancyText)
	system := strings.ReplaceAll(coverLetterPrompt, "{{LANGUAGE}}", string(lang))
	prompt := fmt.Sprintf("Vacancy:\n%s\n\nRésumé:\n%s", vacancyText, strings.TrimSpace(resumeText))

	w.logger.Debug("gemini cover letter request",
		zap.String("language", string(lang)),
		zap.String("vacancy_preview", utils.TruncateForLog(vacancyText, w.maxLogLen)),
	)

	letter, err := w.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	letter = strings.Trim(strings.TrimSpace(letter), "`\"")
	if letter == "" {
		return "", errors.New("gemini returned empty cover letter")
	}

	w.logger.Debug("gemini cover letter response",
		zap.Int("response_length", utf8.RuneCountInString(letter)),
		zap.String("response_preview", utils.TruncateForLog(letter, w.maxLogLen)),
	)

	return letter, nil
}
