package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/core/report"
)

type MockLogRepo struct {
	mock.Mock
}

func (m *MockLogRepo) Create(ctx context.Context, l *domain.ScalpLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLogRepo) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.ScalpLog, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScalpLog), args.Error(1)
}

func (m *MockLogRepo) CountByUserBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockLogRepo) LatestByUser(ctx context.Context, userID string) (*domain.ScalpLog, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScalpLog), args.Error(1)
}

func (m *MockLogRepo) ListByUser(ctx context.Context, userID string) ([]*domain.ScalpLog, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScalpLog), args.Error(1)
}

func (m *MockLogRepo) ExistsSince(ctx context.Context, userID string, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, since)
	return args.Bool(0), args.Error(1)
}

var now = time.Date(2025, 3, 31, 15, 30, 0, 0, time.UTC)

func entry(at time.Time, sym domain.Symptoms, stress int) *domain.ScalpLog {
	return &domain.ScalpLog{
		ID:          at.Format(time.RFC3339Nano),
		UserID:      "user-1",
		Symptoms:    sym,
		StressLevel: stress,
		CreatedAt:   at,
	}
}

func summaryFor(t *testing.T, rep *domain.AggregateReport, sym domain.Symptom) domain.SymptomSummary {
	t.Helper()
	for _, s := range rep.SymptomSummaries {
		if s.Symptom == sym {
			return s
		}
	}
	t.Fatalf("symptom %s missing from report", sym)
	return domain.SymptomSummary{}
}

func TestWindow(t *testing.T) {
	start, end := report.Window(now)

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, now, end)

	tokyo := time.FixedZone("JST", 9*60*60)
	start, _ = report.Window(now.In(tokyo))
	assert.Equal(t, tokyo, start.Location())
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, tokyo).AddDate(0, 0, -30), start)
}

func TestSummarize_Averages(t *testing.T) {
	start, end := report.Window(now)

	entries := []*domain.ScalpLog{
		entry(start.Add(1*time.Hour), domain.Symptoms{domain.SymptomItching: 4}, 3),
		entry(start.Add(2*time.Hour), domain.Symptoms{domain.SymptomItching: 0}, 3),
		entry(start.Add(3*time.Hour), domain.Symptoms{domain.SymptomItching: 6}, 3),
	}

	rep := report.Summarize(entries, start, end)

	itching := summaryFor(t, rep, domain.SymptomItching)
	assert.Equal(t, "5.0", itching.Average)
	assert.Equal(t, 2, itching.DaysReported)

	flaking := summaryFor(t, rep, domain.SymptomFlaking)
	assert.Equal(t, "0", flaking.Average)
	assert.Equal(t, 0, flaking.DaysReported)

	require.Len(t, rep.SymptomSummaries, len(domain.AllSymptoms()))
	for i, sym := range domain.AllSymptoms() {
		assert.Equal(t, sym, rep.SymptomSummaries[i].Symptom)
	}
}

func TestSummarize_RoundsHalfAwayFromZero(t *testing.T) {
	start, end := report.Window(now)

	entries := []*domain.ScalpLog{
		entry(start.Add(time.Hour), domain.Symptoms{domain.SymptomRedness: 1}, 1),
		entry(start.Add(2*time.Hour), domain.Symptoms{domain.SymptomRedness: 2}, 1),
		entry(start.Add(3*time.Hour), domain.Symptoms{domain.SymptomRedness: 2}, 1),
		entry(start.Add(4*time.Hour), domain.Symptoms{domain.SymptomRedness: 2}, 1),
		entry(start.Add(5*time.Hour), domain.Symptoms{domain.SymptomOiliness: 7}, 1),
		entry(start.Add(6*time.Hour), domain.Symptoms{domain.SymptomOiliness: 8}, 1),
		entry(start.Add(7*time.Hour), domain.Symptoms{domain.SymptomOiliness: 8}, 1),
	}

	rep := report.Summarize(entries, start, end)

	// 7/4 = 1.75 and 23/3 = 7.666...
	assert.Equal(t, "1.8", summaryFor(t, rep, domain.SymptomRedness).Average)
	assert.Equal(t, "7.7", summaryFor(t, rep, domain.SymptomOiliness).Average)
}

func TestSummarize_AllZeroSymptoms(t *testing.T) {
	start, end := report.Window(now)

	entries := []*domain.ScalpLog{
		entry(start.Add(time.Hour), domain.Symptoms{}.Normalized(), 2),
		entry(start.Add(2*time.Hour), nil, 2),
	}

	rep := report.Summarize(entries, start, end)

	assert.Equal(t, 2, rep.EntryCount)
	for _, s := range rep.SymptomSummaries {
		assert.Equal(t, "0", s.Average, s.Symptom)
		assert.Equal(t, 0, s.DaysReported, s.Symptom)
	}
	for _, row := range rep.DailyRows {
		assert.Empty(t, row.Symptoms)
	}
}

func TestSummarize_InclusiveWindowStart(t *testing.T) {
	start, end := report.Window(now)

	entries := []*domain.ScalpLog{
		entry(start.Add(-time.Nanosecond), domain.Symptoms{domain.SymptomDryness: 9}, 5),
		entry(start, domain.Symptoms{domain.SymptomDryness: 3}, 5),
	}

	rep := report.Summarize(entries, start, end)

	assert.Equal(t, 1, rep.EntryCount)
	require.Len(t, rep.DailyRows, 1)
	assert.Equal(t, "Mar 01, 2025", rep.DailyRows[0].Date)
	assert.Equal(t, "3.0", summaryFor(t, rep, domain.SymptomDryness).Average)
}

func TestSummarize_ScrambledOrderIsSorted(t *testing.T) {
	start, end := report.Window(now)

	d1 := entry(start.AddDate(0, 0, 1), domain.Symptoms{}, 1)
	d2 := entry(start.AddDate(0, 0, 2), domain.Symptoms{}, 2)
	d3 := entry(start.AddDate(0, 0, 3), domain.Symptoms{}, 3)
	d3.PersonalNotes = "third"
	d1.PersonalNotes = "first"

	entries := []*domain.ScalpLog{d3, d1, d2}
	rep := report.Summarize(entries, start, end)

	require.Len(t, rep.DailyRows, 3)
	assert.Equal(t, 1, rep.DailyRows[0].StressLevel)
	assert.Equal(t, 2, rep.DailyRows[1].StressLevel)
	assert.Equal(t, 3, rep.DailyRows[2].StressLevel)

	require.Len(t, rep.Notes, 2)
	assert.Equal(t, "first", rep.Notes[0].Note)
	assert.Equal(t, "third", rep.Notes[1].Note)

	assert.Same(t, d3, entries[0], "input slice must not be reordered")
}

func TestSummarize_Products(t *testing.T) {
	start, end := report.Window(now)

	e1 := entry(start.Add(time.Hour), nil, 4)
	e1.ProductsUsed = domain.ProductsUsed{CatalogProducts: []string{"Argan Oil", "Shea Butter Mix"}}
	e2 := entry(start.Add(2*time.Hour), nil, 4)
	e2.ProductsUsed = domain.ProductsUsed{OtherProducts: "Shea Butter Mix"}
	e3 := entry(start.Add(3*time.Hour), nil, 4)
	e3.ProductsUsed = domain.ProductsUsed{CatalogProducts: []string{"Tea Tree Shampoo"}, OtherProducts: "shea butter mix"}

	rep := report.Summarize([]*domain.ScalpLog{e1, e2, e3}, start, end)

	assert.Equal(t, []domain.ProductCount{
		{Product: "Shea Butter Mix", Count: 2},
		{Product: "Argan Oil", Count: 1},
		{Product: "Tea Tree Shampoo", Count: 1},
		{Product: "shea butter mix", Count: 1},
	}, rep.ProductUsage)

	assert.Equal(t, "Argan Oil, Shea Butter Mix", rep.DailyRows[0].Products)
	assert.Equal(t, "Shea Butter Mix", rep.DailyRows[1].Products)
	assert.Equal(t, "Tea Tree Shampoo, shea butter mix", rep.DailyRows[2].Products)
}

func TestSummarize_DailyRowSymptomText(t *testing.T) {
	start, end := report.Window(now)

	e := entry(start.Add(time.Hour), domain.Symptoms{
		domain.SymptomDryness:      2,
		domain.SymptomItching:      7,
		domain.SymptomHairThinning: 1,
	}, 6)

	rep := report.Summarize([]*domain.ScalpLog{e}, start, end)

	require.Len(t, rep.DailyRows, 1)
	assert.Equal(t, "itching: 7/10, hairThinning: 1/10, dryness: 2/10", rep.DailyRows[0].Symptoms)
	assert.Equal(t, 6, rep.DailyRows[0].StressLevel)
}

func TestSummarize_MalformedValuesAreClamped(t *testing.T) {
	start, end := report.Window(now)

	e := entry(start.Add(time.Hour), domain.Symptoms{domain.SymptomFlaking: 42, domain.SymptomRedness: -3}, 99)

	rep := report.Summarize([]*domain.ScalpLog{e}, start, end)

	assert.Equal(t, "10.0", summaryFor(t, rep, domain.SymptomFlaking).Average)
	assert.Equal(t, "0", summaryFor(t, rep, domain.SymptomRedness).Average)
	assert.Equal(t, 10, rep.DailyRows[0].StressLevel)
}

func TestSummarize_NotesSkipBlank(t *testing.T) {
	start, end := report.Window(now)

	e1 := entry(start.Add(time.Hour), nil, 1)
	e1.PersonalNotes = "   "
	e2 := entry(start.Add(2*time.Hour), nil, 1)
	e2.PersonalNotes = "  washed twice\nfelt better "

	rep := report.Summarize([]*domain.ScalpLog{e1, e2}, start, end)

	require.Len(t, rep.Notes, 1)
	assert.Equal(t, "  washed twice\nfelt better ", rep.Notes[0].Note)
}

func TestSummarize_Deterministic(t *testing.T) {
	start, end := report.Window(now)

	e1 := entry(start.Add(time.Hour), domain.Symptoms{domain.SymptomItching: 3}, 2)
	e1.ProductsUsed = domain.ProductsUsed{CatalogProducts: []string{"A", "B"}, OtherProducts: "C"}
	e2 := entry(start.Add(time.Hour), domain.Symptoms{domain.SymptomTightness: 5}, 7)
	e2.ProductsUsed = domain.ProductsUsed{CatalogProducts: []string{"B"}}
	entries := []*domain.ScalpLog{e1, e2}

	first := report.Summarize(entries, start, end)
	second := report.Summarize(entries, start, end)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"A", "B"}, e1.ProductsUsed.CatalogProducts)
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()
	start, end := report.Window(now)

	t.Run("Success: returns report", func(t *testing.T) {
		repo := new(MockLogRepo)
		agg := report.NewAggregator(repo)

		repo.On("ListByUserSince", ctx, "user-1", start).Return([]*domain.ScalpLog{
			entry(start.Add(time.Hour), domain.Symptoms{domain.SymptomItching: 2}, 3),
		}, nil)

		out, err := agg.Aggregate(ctx, "user-1", now)

		require.NoError(t, err)
		rep, ok := out.(*domain.AggregateReport)
		require.True(t, ok, "expected *AggregateReport, got %T", out)
		assert.Equal(t, "user-1", rep.UserID)
		assert.Equal(t, 1, rep.EntryCount)
		assert.Equal(t, start, rep.WindowStart)
		assert.Equal(t, end, rep.WindowEnd)
		repo.AssertExpectations(t)
	})

	t.Run("Empty window", func(t *testing.T) {
		repo := new(MockLogRepo)
		agg := report.NewAggregator(repo)

		repo.On("ListByUserSince", ctx, "user-2", start).Return([]*domain.ScalpLog{}, nil)

		out, err := agg.Aggregate(ctx, "user-2", now)

		require.NoError(t, err)
		assert.Equal(t, domain.EmptyWindow{WindowStart: start, WindowEnd: end}, out)
	})

	t.Run("Store failure is wrapped", func(t *testing.T) {
		repo := new(MockLogRepo)
		agg := report.NewAggregator(repo)

		dbErr := errors.New("db down")
		repo.On("ListByUserSince", ctx, "user-3", start).Return(nil, dbErr)

		out, err := agg.Aggregate(ctx, "user-3", now)

		assert.Nil(t, out)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "user-3")
	})
}
