// Package pipeline turns a candidate profile into a ranked list of vacancies.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/filtering"
	"github.com/spigell/hh-scout/internal/headhunter"
	applog "github.com/spigell/hh-scout/internal/logger"
	"github.com/spigell/hh-scout/internal/profile"
	"github.com/spigell/hh-scout/internal/scoring"
)

// Searcher is satisfied by *search.Orchestrator.
type Searcher interface {
	SearchWithFallback(ctx context.Context, p *profile.Profile) ([]*headhunter.Vacancy, error)
}

// Filterer is satisfied by *filtering.Filtering.
type Filterer interface {
	Run(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, []filtering.Step, error)
}

// Ranker is satisfied by *scoring.Ranker.
type Ranker interface {
	ScoreAndRank(ctx context.Context, vacancies []*headhunter.Vacancy, p *profile.Profile) ([]scoring.ScoredVacancy, error)
}

type Pipeline struct {
	searcher Searcher
	filters  Filterer
	ranker   Ranker
	logger   *zap.Logger
}

type Result struct {
	RunID string
	// Discovered is the number of unique vacancies found by search.
	Discovered int
	// Filtered is the number of vacancies left after filtering.
	Filtered int
	Steps    []filtering.Step
	Ranked   []scoring.ScoredVacancy
}

// New creates a pipeline. filters may be nil.
func New(searcher Searcher, filters Filterer, ranker Ranker, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		searcher: searcher,
		filters:  filters,
		ranker:   ranker,
		logger:   logger,
	}
}

// Run searches, filters and ranks vacancies for the profile.
func (p *Pipeline) Run(ctx context.Context, prof *profile.Profile, userID int64) (*Result, error) {
	if err := prof.Validate(); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString()}
	log := applog.WithRun(p.logger, res.RunID, userID)

	log.Info("searching vacancies",
		zap.String("position", prof.ExactPosition),
		zap.Strings("skills", prof.TopSkills),
		zap.String("level", string(prof.ExperienceLevel)),
	)

	found, err := p.searcher.SearchWithFallback(ctx, prof)
	if err != nil {
		return res, fmt.Errorf("search vacancies: %w", err)
	}
	res.Discovered = len(found)

	vacancies := &headhunter.Vacancies{Items: found}
	if p.filters != nil {
		vacancies, res.Steps, err = p.filters.Run(ctx, vacancies)
		if err != nil {
			return res, fmt.Errorf("filter vacancies: %w", err)
		}
	}
	res.Filtered = vacancies.Len()

	res.Ranked, err = p.ranker.ScoreAndRank(ctx, vacancies.Items, prof)
	if err != nil {
		return res, fmt.Errorf("rank vacancies: %w", err)
	}

	log.Info("pipeline finished",
		zap.Int("discovered", res.Discovered),
		zap.Int("filtered", res.Filtered),
		zap.Int("ranked", len(res.Ranked)),
	)

	return res, nil
}
