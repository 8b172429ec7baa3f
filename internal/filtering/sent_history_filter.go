package filtering

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
)

// DefaultSentLookback is how long an already delivered vacancy is not shown again.
const DefaultSentLookback = 7 * 24 * time.Hour

// SentLister is satisfied by *store.SentRepository.
type SentLister interface {
	SentSince(ctx context.Context, userID int64, since time.Time) ([]string, error)
}

type SentHistoryDeps struct {
	Store  SentLister
	Logger *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type SentHistoryConfig struct {
	UserID   int64
	Lookback time.Duration
}

type sentHistoryFilter struct {
	toggle
	cfg  SentHistoryConfig
	deps *SentHistoryDeps
}

// NewSentHistory creates a filter that removes vacancies already delivered to or applied by the user.
func NewSentHistory(cfg SentHistoryConfig, deps *SentHistoryDeps) Filter {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultSentLookback
	}

	return &sentHistoryFilter{cfg: cfg, deps: deps}
}

func (f *sentHistoryFilter) Name() string { return "sent_history" }

func (f *sentHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("sent vacancies store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *sentHistoryFilter) Apply(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()

	now := time.Now
	if f.deps.Now != nil {
		now = f.deps.Now
	}

	ids, err := f.deps.Store.SentSince(ctx, f.cfg.UserID, now().Add(-f.cfg.Lookback))
	if err != nil {
		return v, Step{}, fmt.Errorf("get sent vacancies: %w", err)
	}

	excluded := v.ExcludeIDs(ids)
	logExcluded(f.deps.Logger, "excluding recently sent vacancies", excluded, v)

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}
