package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

// DateLayout is used for every date shown in a report.
const DateLayout = "Jan 02, 2006"

type Aggregator struct {
	logRepo domain.ScalpLogRepository
}

func NewAggregator(logRepo domain.ScalpLogRepository) *Aggregator {
	return &Aggregator{logRepo: logRepo}
}

// Window returns the reporting window ending at now. The start is midnight,
// in now's location, thirty days earlier.
func Window(now time.Time) (start, end time.Time) {
	d := now.AddDate(0, 0, -domain.ReportWindowDays)
	start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
	return start, now
}

func (a *Aggregator) Aggregate(ctx context.Context, userID string, now time.Time) (domain.AggregateOutcome, error) {
	start, end := Window(now)

	entries, err := a.logRepo.ListByUserSince(ctx, userID, start)
	if err != nil {
		return nil, fmt.Errorf("aggregator: list logs for user %s since %s: %w",
			userID, start.Format(time.RFC3339), err)
	}

	rep := Summarize(entries, start, end)
	if rep.EntryCount == 0 {
		return domain.EmptyWindow{WindowStart: start, WindowEnd: end}, nil
	}
	rep.UserID = userID
	return rep, nil
}

// Summarize builds a report from entries created at or after windowStart.
// entries is not modified.
func Summarize(entries []*domain.ScalpLog, windowStart, windowEnd time.Time) *domain.AggregateReport {
	inWindow := make([]*domain.ScalpLog, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.CreatedAt.Before(windowStart) {
			continue
		}
		inWindow = append(inWindow, e)
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].CreatedAt.Before(inWindow[j].CreatedAt)
	})

	loc := windowStart.Location()
	symptoms := domain.AllSymptoms()

	sums := make(map[domain.Symptom]int64, len(symptoms))
	days := make(map[domain.Symptom]int, len(symptoms))

	counts := make(map[string]int)
	var order []string
	countProduct := func(name string) {
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	rep := &domain.AggregateReport{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		EntryCount:  len(inWindow),
		DailyRows:   make([]domain.DailyRow, 0, len(inWindow)),
		Notes:       []domain.NoteLine{},
	}

	for _, e := range inWindow {
		date := e.CreatedAt.In(loc).Format(DateLayout)

		var symParts []string
		for _, sym := range symptoms {
			v := clamp(e.Symptoms.Severity(sym), domain.MinSeverity, domain.MaxSeverity)
			if v == 0 {
				continue
			}
			sums[sym] += int64(v)
			days[sym]++
			symParts = append(symParts, string(sym)+": "+strconv.Itoa(v)+"/10")
		}

		var products []string
		for _, p := range e.ProductsUsed.CatalogProducts {
			if p == "" {
				continue
			}
			countProduct(p)
			products = append(products, p)
		}
		if other := e.ProductsUsed.OtherProducts; strings.TrimSpace(other) != "" {
			countProduct(other)
			products = append(products, other)
		}

		rep.DailyRows = append(rep.DailyRows, domain.DailyRow{
			Date:        date,
			Symptoms:    strings.Join(symParts, ", "),
			Products:    strings.Join(products, ", "),
			StressLevel: clamp(e.StressLevel, 0, domain.MaxStress),
		})

		if strings.TrimSpace(e.PersonalNotes) != "" {
			rep.Notes = append(rep.Notes, domain.NoteLine{Date: date, Note: e.PersonalNotes})
		}
	}

	rep.SymptomSummaries = make([]domain.SymptomSummary, 0, len(symptoms))
	for _, sym := range symptoms {
		rep.SymptomSummaries = append(rep.SymptomSummaries, domain.SymptomSummary{
			Symptom:      sym,
			Average:      average(sums[sym], days[sym]),
			DaysReported: days[sym],
		})
	}

	rep.ProductUsage = make([]domain.ProductCount, 0, len(order))
	for _, name := range order {
		rep.ProductUsage = append(rep.ProductUsage, domain.ProductCount{Product: name, Count: counts[name]})
	}
	sort.SliceStable(rep.ProductUsage, func(i, j int) bool {
		return rep.ProductUsage[i].Count > rep.ProductUsage[j].Count
	})

	return rep
}

// average rounds half away from zero to one decimal. A symptom that was
// never reported yields "0".
func average(sum int64, n int) string {
	if n == 0 {
		return "0"
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n))).StringFixed(1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
