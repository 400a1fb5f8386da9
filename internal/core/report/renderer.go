package report

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

const (
	DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	noneReported   = "None reported"
	noNotesMessage = "No personal notes recorded during this period."
)

var errNilReport = errors.New("renderer: nil report")

// DocxRenderer lays an AggregateReport out as a Word document.
type DocxRenderer struct{}

func NewDocxRenderer() *DocxRenderer {
	return &DocxRenderer{}
}

func (r *DocxRenderer) Render(userName string, rep *domain.AggregateReport) ([]byte, error) {
	if rep == nil {
		return nil, errNilReport
	}

	title := "Hair Care Log Report - " + userName

	b := &docBuilder{}
	b.heading(1, title, true)
	b.heading(2, fmt.Sprintf("Last %d Days Report (%s - %s)",
		domain.ReportWindowDays,
		rep.WindowStart.Format(DateLayout),
		rep.WindowEnd.In(rep.WindowStart.Location()).Format(DateLayout)), true)

	b.heading(2, "Report Summary", false)
	b.paragraph(paraStyle{}, run{text: "Total Log Entries: " + strconv.Itoa(rep.EntryCount), bold: true})

	b.heading(2, "Daily Log Entries", false)
	daily := make([][]string, 0, len(rep.DailyRows))
	for _, row := range rep.DailyRows {
		daily = append(daily, []string{
			row.Date,
			orNone(row.Symptoms),
			orNone(row.Products),
			strconv.Itoa(row.StressLevel) + "/10",
		})
	}
	b.table([]int{20, 40, 25, 15}, []string{"Date", "Symptoms", "Products Used", "Stress Level"}, daily)

	b.heading(2, "Symptoms Summary", false)
	symptoms := make([][]string, 0, len(rep.SymptomSummaries))
	for _, s := range rep.SymptomSummaries {
		symptoms = append(symptoms, []string{s.Symptom.Label(), s.Average, strconv.Itoa(s.DaysReported)})
	}
	b.table([]int{40, 30, 30}, []string{"Symptom", "Average Score", "Days Reported"}, symptoms)

	b.heading(2, "Products Used Summary", false)
	products := make([][]string, 0, len(rep.ProductUsage))
	for _, p := range rep.ProductUsage {
		products = append(products, []string{p.Product, strconv.Itoa(p.Count)})
	}
	b.table([]int{70, 30}, []string{"Product", "Times Used"}, products)

	b.heading(2, "Personal Notes", false)
	if len(rep.Notes) == 0 {
		b.paragraph(paraStyle{}, run{text: noNotesMessage, italic: true})
	}
	for _, n := range rep.Notes {
		b.paragraph(paraStyle{}, run{text: n.Date + ": ", bold: true}, run{text: n.Note})
	}

	out, err := b.pack(docMeta{title: title, created: rep.WindowEnd})
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	return out, nil
}

func orNone(s string) string {
	if s == "" {
		return noneReported
	}
	return s
}
