// Package ai declares the language model collaborators of the pipeline.
package ai

import (
	"context"
	"unicode"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/profile"
)

// ProfileAnalyzer extracts a structured profile from résumé text.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, resumeText string) (*profile.Profile, error)
}

// CoverLetterWriter writes a cover letter for a vacancy.
type CoverLetterWriter interface {
	Write(ctx context.Context, vacancyText, resumeText string) (string, error)
}

type Language string

const (
	Russian Language = "Russian"
	English Language = "English"
)

// DetectLanguage picks Russian when Cyrillic letters dominate the text.
func DetectLanguage(text string) Language {
	var cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.In(r, unicode.Latin) && unicode.IsLetter(r):
			latin++
		}
	}

	if latin > cyrillic {
		return English
	}
	return Russian
}

type fallbackAnalyzer struct {
	primary ProfileAnalyzer
	logger  *zap.Logger
}

// WithKeywordFallback returns an analyzer that never fails: when primary is nil or
// returns an error the profile is built from keywords.
func WithKeywordFallback(primary ProfileAnalyzer, logger *zap.Logger) ProfileAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fallbackAnalyzer{primary: primary, logger: logger}
}

func (a *fallbackAnalyzer) Analyze(ctx context.Context, resumeText string) (*profile.Profile, error) {
	if a.primary == nil {
		return profile.FromKeywords(resumeText), nil
	}

	p, err := a.primary.Analyze(ctx, resumeText)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.logger.Warn("resume analysis failed, using keyword profile", zap.Error(err))
		return profile.FromKeywords(resumeText), nil
	}

	return p, nil
}
