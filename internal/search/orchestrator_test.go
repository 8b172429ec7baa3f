package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-scout/internal/headhunter"
)

type stubSearcher struct {
	results map[string][]*headhunter.Vacancy
	errs    map[string]error
	texts   []string
	onCall  func()
}

func (s *stubSearcher) Search(_ context.Context, q headhunter.Query) (*headhunter.SearchResult, error) {
	s.texts = append(s.texts, q.Text)
	if s.onCall != nil {
		s.onCall()
	}
	if err := s.errs[q.Text]; err != nil {
		return nil, err
	}
	items := s.results[q.Text]
	return &headhunter.SearchResult{Items: items, Found: len(items)}, nil
}

// vacancies returns n vacancies with ids prefix-0..prefix-(n-1).
func vacancies(prefix string, n int) []*headhunter.Vacancy {
	out := make([]*headhunter.Vacancy, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &headhunter.Vacancy{ID: fmt.Sprintf("%s-%d", prefix, i)})
	}
	return out
}

// Texts produced by testProfile for each mode.
const (
	strictText     = "Senior Python Developer"
	relaxedText    = "Senior Python Developer Python"
	broadQueryText = "Backend Developer"
	anyQueryText   = "backend"
)

func TestStopsAfterStrict(t *testing.T) {
	s := &stubSearcher{results: map[string][]*headhunter.Vacancy{
		strictText: vacancies("s", 20),
	}}

	got, err := NewOrchestrator(s, nil).SearchWithFallback(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Len(t, got, 20)
	assert.Equal(t, []string{strictText}, s.texts)
}

func TestStopsAfterRelaxed(t *testing.T) {
	s := &stubSearcher{results: map[string][]*headhunter.Vacancy{
		strictText:  vacancies("s", 10),
		relaxedText: vacancies("r", 25),
	}}

	got, err := NewOrchestrator(s, nil).SearchWithFallback(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Len(t, got, 35)
	assert.Equal(t, []string{strictText, relaxedText}, s.texts)
}

func TestRunsAllModes(t *testing.T) {
	s := &stubSearcher{results: map[string][]*headhunter.Vacancy{
		strictText:     vacancies("s", 5),
		relaxedText:    vacancies("r", 5),
		broadQueryText: vacancies("b", 5),
		anyQueryText:   vacancies("a", 5),
	}}

	got, err := NewOrchestrator(s, nil).SearchWithFallback(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Len(t, got, 20)
	assert.Equal(t, []string{strictText, relaxedText, broadQueryText, anyQueryText}, s.texts)
}

func TestStopsAfterBroadWithFiftyVacancies(t *testing.T) {
	s := &stubSearcher{results: map[string][]*headhunter.Vacancy{
		strictText:     vacancies("s", 15),
		relaxedText:    vacancies("r", 10),
		broadQueryText: vacancies("b", 30),
	}}

	got, err := NewOrchestrator(s, nil).SearchWithFallback(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Len(t, got, 55)
	assert.Equal(t, []string{strictText, relaxedText, broadQueryText}, s.texts)
}

func TestDeduplicatesInFirstSeenOrder(t *testing.T) {
	s := &stubSearcher{results: map[string][]*headhunter.Vacancy{
		strictText:     {{ID: "1"}, {ID: "2"}},
		relaxedText:    {{ID: "2", Name: "duplicate"}, {ID: "3"}, {ID: ""}},
		broadQueryText: {{ID: "1"}, {ID: "4"}, nil},
		anyQueryText:   {{ID: "3"}},
	}}

	got, err := NewOrchestrator(s, nil).SearchWithFallback(context.Background(), testProfile())
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Empty(t, got[1].Name, "first occurrence wins")
}

func TestFailedModeIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	s := &stubSearcher{
		results: map[string][]*headhunter.Vacancy{
			relaxedText: vacancies("r", 30),
		},
		errs: map[string]error{strictText: errors.New("boom")},
	}

	got, err := NewOrchestrator(s, zap.New(core)).SearchWithFallback(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Len(t, got, 30)
	assert.Equal(t, []string{strictText, relaxedText}, s.texts)

	entries := logs.FilterMessage("search mode failed, trying next one").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "strict", entries[0].ContextMap()["mode"])
}

func TestAllModesFailGiveEmptyResult(t *testing.T) {
	fail := errors.New("unavailable")
	s := &stubSearcher{errs: map[string]error{
		strictText: fail, relaxedText: fail, broadQueryText: fail, anyQueryText: fail,
	}}

	got, err := NewOrchestrator(s, nil).SearchWithFallback(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, s.texts, 4)
}

func TestCancellationReturnsCollected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &stubSearcher{results: map[string][]*headhunter.Vacancy{
		strictText: vacancies("s", 3),
	}}
	s.onCall = cancel

	got, err := NewOrchestrator(s, nil).SearchWithFallback(ctx, testProfile())
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{strictText}, s.texts)
}
