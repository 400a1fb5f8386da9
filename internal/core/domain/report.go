package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoLogsInWindow  = errors.New("no logs in report window")
	ErrReportAggregate = errors.New("report aggregation failed")
	ErrReportRender    = errors.New("report rendering failed")
	ErrReportDelivery  = errors.New("report delivery failed")
	ErrNoLogs          = errors.New("no logs found for user")
)

const ReportWindowDays = 30

type SymptomSummary struct {
	Symptom Symptom `json:"symptom"`
	// Average is formatted with one decimal, or "0" when never reported.
	Average      string `json:"average"`
	DaysReported int    `json:"days_reported"`
}

type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type DailyRow struct {
	Date        string `json:"date"`
	Symptoms    string `json:"symptoms"`
	Products    string `json:"products"`
	StressLevel int    `json:"stress_level"`
}

type NoteLine struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

// AggregateOutcome is either EmptyWindow or *AggregateReport.
type AggregateOutcome interface {
	aggregateOutcome()
}

// EmptyWindow means the user has no logs inside the window.
type EmptyWindow struct {
	WindowStart time.Time
	WindowEnd   time.Time
}

func (EmptyWindow) aggregateOutcome() {}

type AggregateReport struct {
	UserID      string
	WindowStart time.Time
	WindowEnd   time.Time
	EntryCount  int

	SymptomSummaries []SymptomSummary
	ProductUsage     []ProductCount
	DailyRows        []DailyRow
	Notes            []NoteLine
}

func (*AggregateReport) aggregateOutcome() {}

// ReportError carries the user and window a report failed for.
// errors.Is matches both Kind and the underlying cause.
type ReportError struct {
	Kind        error
	UserID      string
	WindowStart time.Time
	WindowEnd   time.Time
	Err         error
}

func (e *ReportError) Error() string {
	msg := fmt.Sprintf("%v (user=%s window=%s..%s)",
		e.Kind, e.UserID,
		e.WindowStart.Format(time.RFC3339), e.WindowEnd.Format(time.RFC3339))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
