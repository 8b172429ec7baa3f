package scoring

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/metrics"
	"github.com/spigell/hh-scout/internal/profile"
)

const (
	PrimaryThreshold = 0.25
	// RelaxedThreshold is applied to the full list when the primary one leaves too few vacancies.
	RelaxedThreshold = 0.15
	MinPrimaryCount  = 5
	// FallbackCount vacancies are returned when nothing passes any threshold.
	FallbackCount = 5

	defaultConcurrency = 4
)

type ScoredVacancy struct {
	Vacancy   *headhunter.Vacancy
	Score     float64
	Breakdown Breakdown
	// Position is the discovery index of the vacancy.
	Position int
}

// Evaluator is satisfied by *Scorer.
type Evaluator interface {
	Evaluate(v *headhunter.Vacancy, p *profile.Profile) (Breakdown, error)
}

type Ranker struct {
	evaluator   Evaluator
	logger      *zap.Logger
	concurrency int
}

func NewRanker(evaluator Evaluator, logger *zap.Logger, concurrency int) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Ranker{
		evaluator:   evaluator,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ScoreAndRank scores every vacancy, keeps the relevant ones and sorts them by score.
// Ties keep discovery order. The result is never empty when vacancies is not empty.
// An error is returned only for an invalid profile or a cancelled context.
func (r *Ranker) ScoreAndRank(ctx context.Context, vacancies []*headhunter.Vacancy, p *profile.Profile) ([]ScoredVacancy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	scored := make([]ScoredVacancy, len(vacancies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, v := range vacancies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i] = r.score(i, v, p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := above(scored, PrimaryThreshold)
	outcome := "primary"

	if len(ranked) < MinPrimaryCount {
		r.logger.Debug("too few relevant vacancies, relaxing threshold",
			zap.Int("passed", len(ranked)),
			zap.Float64("threshold", RelaxedThreshold),
		)
		ranked = above(scored, RelaxedThreshold)
		outcome = "relaxed"
	}

	if len(ranked) == 0 {
		ranked = append([]ScoredVacancy(nil), scored...)
		sortByScore(ranked)
		metrics.RankingOutcomes.WithLabelValues("fallback").Inc()

		return Top(ranked, FallbackCount), nil
	}

	sortByScore(ranked)
	metrics.RankingOutcomes.WithLabelValues(outcome).Inc()

	r.logger.Debug("vacancies ranked",
		zap.Int("scored", len(scored)),
		zap.Int("ranked", len(ranked)),
		zap.String("threshold", outcome),
	)

	return ranked, nil
}

// score never fails: a vacancy that can not be evaluated gets 0.
func (r *Ranker) score(pos int, v *headhunter.Vacancy, p *profile.Profile) (sv ScoredVacancy) {
	sv = ScoredVacancy{Vacancy: v, Position: pos}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("vacancy scoring panicked", zap.Any("panic", rec), zap.String("vacancy_id", vacancyID(v)))
			sv.Score = 0
			sv.Breakdown = Breakdown{}
		}
		metrics.ObserveScore(sv.Score)
	}()

	b, err := r.evaluator.Evaluate(v, p)
	if err != nil {
		r.logger.Warn("vacancy scored as zero", zap.String("vacancy_id", vacancyID(v)), zap.Error(err))
		return sv
	}

	sv.Score = b.Total
	sv.Breakdown = b

	return sv
}

// Top returns at most n first vacancies. n <= 0 means all.
func Top(list []ScoredVacancy, n int) []ScoredVacancy {
	if n <= 0 || n >= len(list) {
		return list
	}
	return list[:n]
}

func above(scored []ScoredVacancy, threshold float64) []ScoredVacancy {
	out := make([]ScoredVacancy, 0, len(scored))
	for _, sv := range scored {
		if sv.Score >= threshold {
			out = append(out, sv)
		}
	}
	return out
}

func sortByScore(list []ScoredVacancy) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
}
