package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/profile"
	"github.com/spigell/hh-scout/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

//go:embed profile_prompt.md
var profilePrompt string

const (
	defaultMaxLogLength = 200
	// Longer résumés are cut before they are sent to the model.
	maxResumeRunes = 12000
)

type ProfileAnalyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// analysis mirrors the JSON answer of the model.
type analysis struct {
	ExactPosition        string   `mapstructure:"exact_position"`
	AlternativePositions []string `mapstructure:"alternative_positions"`
	ExperienceLevel      string   `mapstructure:"experience_level"`
	ExperienceYears      int      `mapstructure:"experience_years"`
	TopSkills            []string `mapstructure:"top_skills"`
	Domain               string   `mapstructure:"domain"`
	Field                string   `mapstructure:"field"`
	Salary               struct {
		HasExplicit  bool     `mapstructure:"has_explicit"`
		EstimatedMin *float64 `mapstructure:"estimated_min"`
	} `mapstructure:"salary_expectation"`
	Location struct {
		Areas    []int `mapstructure:"areas"`
		RemoteOK bool  `mapstructure:"remote_ok"`
	} `mapstructure:"location_preferences"`
}

func NewProfileAnalyzer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *ProfileAnalyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProfileAnalyzer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Analyze asks the model for a structured profile of the résumé.
func (a *ProfileAnalyzer) Analyze(ctx context.Context, resumeText string) (*profile.Profile, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, errors.New("resume text is empty")
	}

	if runes := []rune(resumeText); len(runes) > maxResumeRunes {
		resumeText = string(runes[:maxResumeRunes])
	}

	prompt := strings.ReplaceAll(profilePrompt, "{{RESUME}}", resumeText)

	a.logger.Debug("gemini profile analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(resumeText, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini profile analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseProfile(raw)
}

func parseProfile(raw string) (*profile.Profile, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var parsed analysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &parsed,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini profile: %w", err)
	}

	p := profile.Profile{
		ExactPosition:        parsed.ExactPosition,
		AlternativePositions: parsed.AlternativePositions,
		TopSkills:            parsed.TopSkills,
		ExperienceYears:      parsed.ExperienceYears,
		ExperienceLevel:      profile.Level(parsed.ExperienceLevel),
		Areas:                parsed.Location.Areas,
		Domain:               parsed.Domain,
		Field:                parsed.Field,
	}
	if parsed.Salary.HasExplicit && parsed.Salary.EstimatedMin != nil {
		p.SalaryFrom = parsed.Salary.EstimatedMin
	}

	if strings.TrimSpace(p.ExactPosition) == "" && len(p.TopSkills) == 0 {
		return nil, errors.New("gemini profile has neither position nor skills")
	}

	return profile.New(p)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	// Models sometimes wrap the object in prose.
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start > 0 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}
