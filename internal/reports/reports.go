// Package reports reshapes server-computed statistics into chart input. It
// performs no aggregation of its own.
package reports

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/status"
)

// MaxBarLabel is the widest bar label before truncation.
const MaxBarLabel = 12

// Card is one stat card.
type Card struct {
	Label string
	Value string
}

// Cards returns the headline numbers in display order.
func Cards(s api.ReportStats) []Card {
	return []Card{
		{Label: "Users", Value: fmt.Sprintf("%d", s.TotalUsers)},
		{Label: "Scholarships", Value: fmt.Sprintf("%d", s.TotalScholarships)},
		{Label: "Applications", Value: fmt.Sprintf("%d", s.TotalApplications)},
		{Label: "Approval rate", Value: fmt.Sprintf("%.1f%%", s.ApprovalRate)},
	}
}

// MonthlyPoints places each month's count on the first day of that month.
// Months that do not parse as YYYY-MM are skipped.
func MonthlyPoints(s api.ReportStats, loc *time.Location) []tslc.TimePoint {
	if loc == nil {
		loc = time.Local
	}
	out := make([]tslc.TimePoint, 0, len(s.MonthlyApplications))
	for _, m := range s.MonthlyApplications {
		t, err := time.ParseInLocation("2006-01", m.Month, loc)
		if err != nil {
			continue
		}
		out = append(out, tslc.TimePoint{Time: t, Value: float64(m.Count)})
	}
	return out
}

// ScholarshipBars converts the per-scholarship series into one bar each.
func ScholarshipBars(s api.ReportStats, style lipgloss.Style) []barchart.BarData {
	out := make([]barchart.BarData, 0, len(s.ScholarshipDistribution))
	for _, d := range s.ScholarshipDistribution {
		label := ansi.Truncate(d.Name, MaxBarLabel, "…")
		out = append(out, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: d.Name, Value: float64(d.Count), Style: style}},
		})
	}
	return out
}

// StatusBars converts the per-status series into bars colored by status.
func StatusBars(s api.ReportStats) []barchart.BarData {
	out := make([]barchart.BarData, 0, len(s.StatusDistribution))
	for _, d := range s.StatusDistribution {
		style := lipgloss.NewStyle().Foreground(status.Color(d.Status))
		out = append(out, barchart.BarData{
			Label:  status.Label(d.Status),
			Values: []barchart.BarValue{{Name: string(d.Status), Value: float64(d.Count), Style: style}},
		})
	}
	return out
}

// MaxCount returns the largest count across the bar series. It is 0 for an
// empty or all-zero series.
func MaxCount(data []barchart.BarData) float64 {
	max := 0.0
	for _, d := range data {
		for _, v := range d.Values {
			if v.Value > max {
				max = v.Value
			}
		}
	}
	return max
}
