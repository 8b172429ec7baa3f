package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-scout/internal/filtering"
	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/profile"
	"github.com/spigell/hh-scout/internal/scoring"
)

type stubSearcher struct {
	found []*headhunter.Vacancy
	err   error
}

func (s stubSearcher) SearchWithFallback(context.Context, *profile.Profile) ([]*headhunter.Vacancy, error) {
	return s.found, s.err
}

type fixedEvaluator map[string]float64

func (f fixedEvaluator) Evaluate(v *headhunter.Vacancy, _ *profile.Profile) (scoring.Breakdown, error) {
	return scoring.Breakdown{Total: f[v.ID]}, nil
}

func goProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.New(profile.Profile{ExactPosition: "Go Developer", TopSkills: []string{"go"}})
	require.NoError(t, err)
	return p
}

func TestRun(t *testing.T) {
	found := []*headhunter.Vacancy{
		{ID: "1"}, {ID: "2", HasTest: true}, {ID: "3"}, {ID: "4"}, {ID: "5"}, {ID: "6"},
	}
	scores := fixedEvaluator{"1": 0.4, "3": 0.9, "4": 0.5, "5": 0.3, "6": 0.26}

	core, logs := observer.New(zapcore.InfoLevel)
	p := New(
		stubSearcher{found: found},
		filtering.New(nil, filtering.NewWithTest(nil)),
		scoring.NewRanker(scores, nil, 2),
		zap.New(core),
	)

	res, err := p.Run(context.Background(), goProfile(t), 77)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Discovered)
	assert.Equal(t, 5, res.Filtered)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "with_test", res.Steps[0].Name)

	require.Len(t, res.Ranked, 5)
	assert.Equal(t, "3", res.Ranked[0].Vacancy.ID)

	_, err = uuid.Parse(res.RunID)
	require.NoError(t, err)

	finished := logs.FilterMessage("pipeline finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, res.RunID, finished[0].ContextMap()["run_id"])
	assert.Equal(t, "77", finished[0].ContextMap()["user_id"])
}

func TestRunWithoutFilters(t *testing.T) {
	p := New(stubSearcher{found: []*headhunter.Vacancy{{ID: "1"}}}, nil, scoring.NewRanker(fixedEvaluator{}, nil, 1), nil)

	res, err := p.Run(context.Background(), goProfile(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Filtered)
	// nothing passes the thresholds, so the best vacancies are still returned
	assert.Len(t, res.Ranked, 1)
}

func TestRunRejectsInvalidProfile(t *testing.T) {
	p := New(stubSearcher{}, nil, scoring.NewRanker(fixedEvaluator{}, nil, 1), nil)

	_, err := p.Run(context.Background(), &profile.Profile{ExperienceLevel: "guru"}, 0)
	assert.ErrorIs(t, err, profile.ErrInvalidProfile)

	_, err = p.Run(context.Background(), nil, 0)
	assert.ErrorIs(t, err, profile.ErrInvalidProfile)
}

func TestRunPropagatesSearchError(t *testing.T) {
	p := New(stubSearcher{err: context.Canceled}, nil, scoring.NewRanker(fixedEvaluator{}, nil, 1), nil)

	res, err := p.Run(context.Background(), goProfile(t), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotEmpty(t, res.RunID)
}
