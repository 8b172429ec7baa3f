package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/metrics"
	"github.com/spigell/hh-scout/internal/profile"
)

// The cascade stops as soon as it has collected enough vacancies.
const (
	StrictEnough  = 20
	RelaxedEnough = 30
	AnyModeEnough = 50
)

// Searcher is satisfied by *headhunter.Client.
type Searcher interface {
	Search(ctx context.Context, q headhunter.Query) (*headhunter.SearchResult, error)
}

type Orchestrator struct {
	searcher  Searcher
	generator Generator
	logger    *zap.Logger
}

func NewOrchestrator(searcher Searcher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		searcher: searcher,
		logger:   logger,
	}
}

// SearchWithFallback runs modes from strict to any and collects unique vacancies
// in the order they were first seen. A failed mode is logged and skipped.
// The only returned error is context cancellation, together with what was collected so far.
func (o *Orchestrator) SearchWithFallback(ctx context.Context, p *profile.Profile) ([]*headhunter.Vacancy, error) {
	var (
		collected []*headhunter.Vacancy
		seen      = make(map[string]struct{})
		used      int
	)

	defer func() {
		metrics.SearchModesUsed.Observe(float64(used))
	}()

	for _, mode := range Modes {
		if err := ctx.Err(); err != nil {
			return collected, fmt.Errorf("search interrupted before %s mode: %w", mode, err)
		}

		used++
		log := o.logger.With(zap.String("mode", string(mode)))
		q := o.generator.Build(p, mode)

		log.Debug("searching vacancies", zap.String("text", q.Text), zap.Ints("areas", q.Areas))

		res, err := o.searcher.Search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return collected, fmt.Errorf("search interrupted in %s mode: %w", mode, ctx.Err())
			}
			metrics.ObserveSearch(string(mode), "failed", 0)
			log.Warn("search mode failed, trying next one", zap.Error(err))
			continue
		}

		added := 0
		for _, v := range res.Items {
			if v == nil || v.ID == "" {
				continue
			}
			if _, ok := seen[v.ID]; ok {
				continue
			}
			seen[v.ID] = struct{}{}
			collected = append(collected, v)
			added++
		}

		metrics.ObserveSearch(string(mode), "ok", added)
		log.Info("search mode finished",
			zap.Int("found", res.Found),
			zap.Int("returned", len(res.Items)),
			zap.Int("new", added),
			zap.Int("total", len(collected)),
		)

		if enough(mode, len(collected)) {
			log.Debug("enough vacancies collected, stopping", zap.Int("total", len(collected)))
			break
		}
	}

	return collected, nil
}

func enough(mode Mode, total int) bool {
	switch {
	case mode == Strict && total >= StrictEnough:
		return true
	case mode == Relaxed && total >= RelaxedEnough:
		return true
	default:
		return total >= AnyModeEnough
	}
}
