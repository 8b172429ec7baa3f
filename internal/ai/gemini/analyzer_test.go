package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/profile"
)

type stubGenerator struct {
	response string
	err      error
	system   string
	prompt   string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.system = system
	s.prompt = prompt
	return s.response, s.err
}

func TestAnalyze(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"exact_position": "Python разработчик",
		"alternative_positions": ["Backend разработчик"],
		"experience_level": "Senior",
		"experience_years": "5",
		"top_skills": ["Python", "Django", "PostgreSQL", "Docker", "Redis", "Celery"],
		"domain": "backend",
		"field": "python",
		"salary_expectation": {"has_explicit": true, "estimated_min": 300000, "currency": "RUR"},
		"location_preferences": {"areas": [2], "remote_ok": true}
	}` + "\n```"}

	p, err := NewProfileAnalyzer(gen, zap.NewNop(), 0).Analyze(context.Background(), "Python разработчик, 5 лет")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if !strings.Contains(gen.prompt, "Python разработчик, 5 лет") {
		t.Fatalf("resume must be in the prompt")
	}
	if p.ExactPosition != "Python разработчик" || p.ExperienceLevel != profile.Senior || p.ExperienceYears != 5 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if len(p.TopSkills) != profile.MaxTopSkills {
		t.Fatalf("expected skills to be cut to %d, got %v", profile.MaxTopSkills, p.TopSkills)
	}
	if p.SalaryFrom == nil || *p.SalaryFrom != 300000 {
		t.Fatalf("unexpected salary: %v", p.SalaryFrom)
	}
	if len(p.Areas) != 1 || p.Areas[0] != 2 {
		t.Fatalf("unexpected areas: %v", p.Areas)
	}
}

func TestAnalyzeIgnoresImplicitSalary(t *testing.T) {
	gen := &stubGenerator{response: `Here you go: {"exact_position": "QA", "experience_years": 1,
		"salary_expectation": {"has_explicit": false, "estimated_min": 90000}}`}

	p, err := NewProfileAnalyzer(gen, nil, 0).Analyze(context.Background(), "QA engineer")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if p.SalaryFrom != nil {
		t.Fatalf("estimated salary must be ignored, got %v", *p.SalaryFrom)
	}
	if p.ExperienceLevel != profile.Junior {
		t.Fatalf("level must be derived from years, got %s", p.ExperienceLevel)
	}
	if len(p.Areas) != 2 {
		t.Fatalf("expected default areas, got %v", p.Areas)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	cases := []struct {
		name   string
		gen    *stubGenerator
		resume string
	}{
		{name: "empty resume", gen: &stubGenerator{}, resume: " "},
		{name: "generator error", gen: &stubGenerator{err: errors.New("quota")}, resume: "text"},
		{name: "not json", gen: &stubGenerator{response: "sorry"}, resume: "text"},
		{name: "empty profile", gen: &stubGenerator{response: `{"domain": "backend"}`}, resume: "text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewProfileAnalyzer(tc.gen, nil, 0).Analyze(context.Background(), tc.resume); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"{\"a\":1}":               `{"a":1}`,
		"Result: {\"a\":1} done":  `{"a":1}`,
	}

	for in, want := range cases {
		if got := extractJSON(in); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}
