package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/journal"
	"github.com/jask/scholaradmin/internal/settings"
	"github.com/jask/scholaradmin/internal/status"
)

var errBackend = errors.New("backend unavailable")

type statusCall struct {
	id      int64
	status  status.Status
	remarks string
}

type settingCall struct {
	key   string
	value any
}

type fakeBackend struct {
	mu sync.Mutex

	apps      []api.Application
	appsErr   error
	updateErr error

	stats    api.ReportStats
	statsErr error

	values     settings.Values
	valuesErr  error
	settingErr error

	calls        map[string]int
	statusCalls  []statusCall
	settingCalls []settingCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		apps: []api.Application{
			{ID: 1, FirstName: "Amara", LastName: "Okafor", Email: "amara@example.org", ScholarshipName: "STEM Futures", Status: status.Pending, CreatedAt: time.Date(2026, 1, 8, 10, 0, 0, 0, time.UTC)},
			{ID: 2, FirstName: "Jonas", LastName: "Lindqvist", Email: "jonas@example.org", ScholarshipName: "Arts Bursary", Status: status.Approved, CreatedAt: time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC)},
			{ID: 3, FirstName: "Priya", LastName: "Raman", Email: "priya@example.org", ScholarshipName: "STEM Futures", Status: status.Rejected, Remarks: "transcript missing", CreatedAt: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)},
		},
		stats: api.ReportStats{
			TotalUsers:          3,
			TotalScholarships:   2,
			TotalApplications:   3,
			ApprovalRate:        33.3,
			MonthlyApplications: []api.MonthCount{{Month: "2026-01", Count: 2}, {Month: "2026-02", Count: 1}},
			ScholarshipDistribution: []api.NamedCount{
				{Name: "Arts Bursary", Count: 1},
				{Name: "STEM Futures", Count: 2},
			},
			StatusDistribution: []api.StatusCount{
				{Status: status.Pending, Count: 1},
				{Status: status.Approved, Count: 1},
				{Status: status.Rejected, Count: 1},
			},
		},
		values: settings.Values{
			"allowRegistrations":     true,
			"maintenanceMode":        false,
			"maxApplicationsPerUser": int64(3),
			"supportEmail":           "help@example.org",
		},
		calls: map[string]int{},
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ListApplications(ctx context.Context) ([]api.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.appsErr != nil {
		return nil, f.appsErr
	}
	out := make([]api.Application, len(f.apps))
	copy(out, f.apps)
	return out, nil
}

func (f *fakeBackend) UpdateApplicationStatus(ctx context.Context, id int64, s status.Status, remarks string) (api.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update_status"]++
	f.statusCalls = append(f.statusCalls, statusCall{id: id, status: s, remarks: remarks})
	if f.updateErr != nil {
		return api.Application{}, f.updateErr
	}
	return api.Application{ID: id, Status: s, Remarks: remarks}, nil
}

func (f *fakeBackend) Reports(ctx context.Context) (api.ReportStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["reports"]++
	if f.statsErr != nil {
		return api.ReportStats{}, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeBackend) Settings(ctx context.Context) (settings.Values, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["settings"]++
	if f.valuesErr != nil {
		return nil, f.valuesErr
	}
	out := make(settings.Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) UpdateSetting(ctx context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update_setting"]++
	f.settingCalls = append(f.settingCalls, settingCall{key: key, value: value})
	return f.settingErr
}

type fakeJournal struct {
	reviews  []journal.ReviewEntry
	settings []journal.SettingEntry
}

func (j *fakeJournal) RecordReview(ctx context.Context, e journal.ReviewEntry) error {
	j.reviews = append(j.reviews, e)
	return nil
}

func (j *fakeJournal) RecordSetting(ctx context.Context, e journal.SettingEntry) error {
	j.settings = append(j.settings, e)
	return nil
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// run executes cmd and feeds every resulting message back into the app until
// nothing is left. It reports whether a quit was requested.
func run(t *testing.T, a *App, cmd tea.Cmd) bool {
	t.Helper()
	quit := false
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch m := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, m...)
		case tea.QuitMsg:
			quit = true
		default:
			_, next := a.Update(m)
			queue = append(queue, next)
		}
	}
	return quit
}

func press(t *testing.T, a *App, keys ...string) bool {
	t.Helper()
	quit := false
	for _, k := range keys {
		_, cmd := a.Update(keyMsg(k))
		if run(t, a, cmd) {
			quit = true
		}
	}
	return quit
}

func newTestApp(t *testing.T, fb *fakeBackend, opts Options) *App {
	t.Helper()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	a := New(context.Background(), fb, opts)
	run(t, a, a.Init())
	return a
}

func (a *App) reviewScreen() *reviewScreen     { return a.screens[0].(*reviewScreen) }
func (a *App) reportsScreen() *reportsScreen   { return a.screens[1].(*reportsScreen) }
func (a *App) settingsScreen() *settingsScreen { return a.screens[2].(*settingsScreen) }
