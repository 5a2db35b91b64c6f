package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/reports"
)

const (
	monthlyChartHeight = 10
	barChartHeight     = 10
)

type reportsScreen struct {
	ctx     context.Context
	backend Backend
	log     *zap.Logger
	keys    *keyRegistry
	loc     *time.Location

	loading bool
	loaded  bool
	stats   *api.ReportStats
}

func newReportsScreen(ctx context.Context, backend Backend, keys *keyRegistry, opts Options) *reportsScreen {
	return &reportsScreen{ctx: ctx, backend: backend, log: opts.Logger, keys: keys, loc: opts.Location}
}

func (s *reportsScreen) Title() string   { return "Reports" }
func (s *reportsScreen) Scope() string   { return scopeReports }
func (s *reportsScreen) Capturing() bool { return false }

func (s *reportsScreen) Init() tea.Cmd {
	return s.fetch()
}

func (s *reportsScreen) fetch() tea.Cmd {
	s.loading = true
	return func() tea.Msg {
		stats, err := s.backend.Reports(s.ctx)
		return reportsMsg{stats: stats, err: err}
	}
}

// Update never raises an alert: report failures are logged only and the last
// good numbers stay on screen.
func (s *reportsScreen) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(reportsMsg)
	if !ok {
		return nil
	}
	s.loading = false
	s.loaded = true
	if m.err != nil {
		s.log.Error("fetch report data failed", zap.Error(m.err))
		return nil
	}
	stats := m.stats
	s.stats = &stats
	return nil
}

func (s *reportsScreen) HandleKey(m tea.KeyMsg) tea.Cmd {
	if s.keys.lookup(m, scopeReports) == actionRefresh {
		return s.fetch()
	}
	return nil
}

func (s *reportsScreen) View(width, height int) string {
	if s.loading && !s.loaded {
		return mutedStyle.Render("Loading reports…")
	}
	if s.stats == nil {
		return mutedStyle.Render("No report data.")
	}
	if width < 40 {
		width = 40
	}

	sections := []string{
		renderStatCards(reports.Cards(*s.stats)),
		sectionTitle("Applications per month"),
		renderMonthlyChart(*s.stats, width, s.loc),
	}
	half := (width - 2) / 2
	left := lipgloss.JoinVertical(lipgloss.Left,
		sectionTitle("By scholarship"),
		renderBarChart(reports.ScholarshipBars(*s.stats, lipgloss.NewStyle().Foreground(colorBlue)), half),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		sectionTitle("By status"),
		renderBarChart(reports.StatusBars(*s.stats), half),
	)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	return strings.Join(sections, "\n")
}

func sectionTitle(s string) string {
	return "\n" + lipgloss.NewStyle().Foreground(colorMauve).Bold(true).Render(s)
}

func renderStatCards(cards []reports.Card) string {
	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		boxes = append(boxes, cardStyle.Render(cardLabelStyle.Render(c.Label)+"\n"+cardValueStyle.Render(c.Value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func renderMonthlyChart(stats api.ReportStats, width int, loc *time.Location) string {
	points := reports.MonthlyPoints(stats, loc)
	if len(points) == 0 {
		return mutedStyle.Render("No monthly data.")
	}
	start, end := points[0].Time, points[len(points)-1].Time
	if !end.After(start) {
		end = start.AddDate(0, 1, 0)
	}
	maxVal := 0.0
	for _, p := range points {
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	chart := tslc.New(width, monthlyChartHeight)
	chart.SetStyle(lipgloss.NewStyle().Foreground(colorPeach))
	chart.AxisStyle = lipgloss.NewStyle().Foreground(colorSurface2)
	chart.LabelStyle = lipgloss.NewStyle().Foreground(colorOverlay1)
	chart.SetTimeRange(start, end)
	chart.SetViewTimeRange(start, end)
	chart.SetYRange(0, maxVal*1.1)
	chart.SetViewYRange(0, maxVal*1.1)
	chart.Model.XLabelFormatter = func(_ int, v float64) string {
		return time.Unix(int64(v), 0).In(loc).Format("Jan 06")
	}
	for _, p := range points {
		chart.Push(p)
	}
	chart.DrawBraille()
	return chart.View()
}

func renderBarChart(data []barchart.BarData, width int) string {
	if reports.MaxCount(data) == 0 {
		return mutedStyle.Render("No data.")
	}
	if width < 10 {
		width = 10
	}
	bc := barchart.New(width, barChartHeight)
	bc.PushAll(data)
	bc.Draw()
	return bc.View() + "\n" + barLegend(data)
}

// barLegend lists exact counts under a chart, since bar heights are coarse.
func barLegend(data []barchart.BarData) string {
	parts := make([]string, 0, len(data))
	for _, d := range data {
		for _, v := range d.Values {
			parts = append(parts, v.Style.Render("■")+" "+mutedStyle.Render(v.Name)+" "+textStyle.Render(formatCount(v.Value)))
		}
	}
	return strings.Join(parts, "\n")
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
