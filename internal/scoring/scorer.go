// Package scoring rates how well vacancies fit a profile and ranks them.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/profile"
)

var ErrMalformedVacancy = errors.New("malformed vacancy")

type Scorer struct {
	logger *zap.Logger
	now    func() time.Time
}

type ScorerOption func(*Scorer)

// WithClock sets the time source used for freshness.
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) {
		s.now = now
	}
}

func NewScorer(logger *zap.Logger, opts ...ScorerOption) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scorer{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score returns the relevance of v for p in [0,1]. Any failure gives 0.
func (s *Scorer) Score(v *headhunter.Vacancy, p *profile.Profile) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("vacancy scoring panicked", zap.Any("panic", r), zap.String("vacancy_id", vacancyID(v)))
			score = 0
		}
	}()

	b, err := s.Evaluate(v, p)
	if err != nil {
		s.logger.Warn("vacancy scored as zero", zap.String("vacancy_id", vacancyID(v)), zap.Error(err))
		return 0
	}

	return b.Total
}

// Evaluate computes every component of the score.
func (s *Scorer) Evaluate(v *headhunter.Vacancy, p *profile.Profile) (Breakdown, error) {
	if p == nil {
		return Breakdown{}, fmt.Errorf("%w: profile is nil", profile.ErrInvalidProfile)
	}
	if err := checkVacancy(v); err != nil {
		return Breakdown{}, err
	}

	text := vacancyText(v)

	b := Breakdown{
		Title:      titleScore(v, p),
		Skills:     skillsScore(text, p),
		Experience: experienceScore(text, p),
		Salary:     salaryScore(v, p),
		Location:   locationScore(v, p),
		Freshness:  freshnessScore(v, s.now()),
		Weights:    BaseWeights,
	}

	if v.HasSalary() && p.HasSalary() {
		b.Weights = SalaryWeights
	}

	total := b.weighted()
	if math.IsNaN(total) {
		total = 0
	}
	b.Total = min(max(total, 0), 1)

	return b, nil
}

func checkVacancy(v *headhunter.Vacancy) error {
	if v == nil {
		return fmt.Errorf("%w: vacancy is nil", ErrMalformedVacancy)
	}

	if v.Salary == nil {
		return nil
	}

	for _, bound := range []*float64{v.Salary.From, v.Salary.To} {
		if bound == nil {
			continue
		}
		if math.IsNaN(*bound) || math.IsInf(*bound, 0) || *bound < 0 {
			return fmt.Errorf("%w: salary bound %v", ErrMalformedVacancy, *bound)
		}
	}

	return nil
}

func vacancyID(v *headhunter.Vacancy) string {
	if v == nil {
		return ""
	}
	return v.ID
}
