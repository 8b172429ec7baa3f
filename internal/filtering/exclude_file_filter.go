package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
)

type excludeFileFilter struct {
	toggle
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes vacancies listed in the exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	return &excludeFileFilter{
		path:   path,
		logger: orNop(logger),
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	if f.path == "" {
		return v, Step{Initial: initial, Left: v.Len()}, nil
	}

	excluded, err := headhunter.GetExcludedVacanciesFromFile(f.path)
	if err != nil {
		return v, Step{}, fmt.Errorf("getting excluded vacancies from file: %w", err)
	}

	removed := v.ExcludeIDs(excluded.VacanciesIDs())
	logExcluded(f.logger, "excluding vacancies from exclude file", removed, v)

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}
