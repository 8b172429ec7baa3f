package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
)

type employersFilter struct {
	toggle
	employers []string
	logger    *zap.Logger
}

// NewExcludedEmployers creates a filter that removes vacancies of the listed employer ids.
func NewExcludedEmployers(employers []string, logger *zap.Logger) Filter {
	return &employersFilter{
		employers: employers,
		logger:    orNop(logger),
	}
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) Validate() error { return nil }

func (f *employersFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	if len(f.employers) == 0 {
		return v, Step{Initial: initial, Left: v.Len()}, nil
	}

	excluded := v.ExcludeEmployers(f.employers)
	logExcluded(f.logger, "excluding vacancies of excluded employers", excluded, v)

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}
