package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/headhunter"
)

type withTestFilter struct {
	toggle
	logger *zap.Logger
}

// NewWithTest creates a filter that removes vacancies requiring tests.
func NewWithTest(logger *zap.Logger) Filter {
	return &withTestFilter{logger: orNop(logger)}
}

func (f *withTestFilter) Name() string { return "with_test" }

func (f *withTestFilter) Validate() error { return nil }

func (f *withTestFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	excluded := v.ExcludeWithTest()
	logExcluded(f.logger, "excluding vacancies with tests. It is impossible to apply them", excluded, v)

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}
