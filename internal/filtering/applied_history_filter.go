package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
)

// NegotiationsGetter is satisfied by *headhunter.Client.
type NegotiationsGetter interface {
	GetNegotiations(ctx context.Context) (headhunter.Negotiations, error)
}

type appliedHistoryFilter struct {
	toggle
	deps   *AppliedHistoryDeps
	ignore bool
}

type AppliedHistoryDeps struct {
	HH     NegotiationsGetter
	Logger *zap.Logger
}

type AppliedHistoryConfig struct {
	Ignore bool
}

// NewAppliedHistory creates a filter that removes vacancies found in negotiation history.
func NewAppliedHistory(cfg *AppliedHistoryConfig, deps *AppliedHistoryDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &appliedHistoryFilter{
		deps:   deps,
		ignore: ignore,
	}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.HH == nil {
		return fmt.Errorf("headhunter client is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *appliedHistoryFilter) Apply(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	if f.ignore {
		f.deps.Logger.Info("ignoring already applied vacancies", zap.String("reason", forceFlagSetMsg))
		return v, Step{Initial: initial, Left: v.Len()}, nil
	}

	negotiations, err := f.deps.HH.GetNegotiations(ctx)
	if err != nil {
		return v, Step{}, fmt.Errorf("get my negotiations: %w", err)
	}

	excluded := v.ExcludeIDs(negotiations.VacanciesIDs())
	logExcluded(f.deps.Logger, "excluding vacancies based on my negotiations", excluded, v)

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}
