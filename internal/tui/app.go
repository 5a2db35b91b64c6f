package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/journal"
	"github.com/jask/scholaradmin/internal/settings"
	"github.com/jask/scholaradmin/internal/status"
)

// Backend is the REST surface the screens consume.
type Backend interface {
	ListApplications(ctx context.Context) ([]api.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, s status.Status, remarks string) (api.Application, error)
	Reports(ctx context.Context) (api.ReportStats, error)
	Settings(ctx context.Context) (settings.Values, error)
	UpdateSetting(ctx context.Context, key string, value any) error
}

// Journal records changes made from the console. It is optional.
type Journal interface {
	RecordReview(ctx context.Context, e journal.ReviewEntry) error
	RecordSetting(ctx context.Context, e journal.SettingEntry) error
}

type Options struct {
	Logger     *zap.Logger
	Journal    Journal
	DateFormat string
	Location   *time.Location
}

// screen is one tab. Screens mount lazily the first time they are shown.
type screen interface {
	Title() string
	Scope() string
	// Capturing is true while a text input owns the keyboard.
	Capturing() bool
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	HandleKey(msg tea.KeyMsg) tea.Cmd
	View(width, height int) string
}

type alert struct {
	kind  alertKind
	title string
	body  string
}

// App ties together the three screens.
type App struct {
	keys    *keyRegistry
	log     *zap.Logger
	screens []screen
	mounted []bool
	active  int
	alert   *alert
	width   int
	height  int
}

func New(ctx context.Context, backend Backend, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "02 Jan 2006"
	}
	keys := newKeyRegistry()
	screens := []screen{
		newReviewScreen(ctx, backend, keys, opts),
		newReportsScreen(ctx, backend, keys, opts),
		newSettingsScreen(ctx, backend, keys, opts),
	}
	return &App{
		keys:    keys,
		log:     opts.Logger,
		screens: screens,
		mounted: make([]bool, len(screens)),
		width:   100,
		height:  30,
	}
}

func (a *App) Init() tea.Cmd {
	return a.activate(0)
}

func (a *App) activate(idx int) tea.Cmd {
	if idx < 0 || idx >= len(a.screens) {
		return nil
	}
	a.active = idx
	if a.mounted[idx] {
		return nil
	}
	a.mounted[idx] = true
	return a.screens[idx].Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		return a, a.handleKey(m)
	case alertMsg:
		a.alert = &alert{kind: m.kind, title: m.title, body: m.body}
		return a, nil
	}

	var cmds []tea.Cmd
	for _, s := range a.screens {
		if cmd := s.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	if m.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if a.alert != nil {
		if a.keys.lookup(m, scopeAlert) == actionDismiss {
			a.alert = nil
		}
		return nil
	}
	cur := a.screens[a.active]
	if cur.Capturing() {
		return cur.HandleKey(m)
	}
	switch a.keys.lookup(m, scopeGlobal) {
	case actionQuit:
		return tea.Quit
	case actionNextTab:
		return a.activate((a.active + 1) % len(a.screens))
	case actionPrevTab:
		return a.activate((a.active - 1 + len(a.screens)) % len(a.screens))
	case actionScreen1:
		return a.activate(0)
	case actionScreen2:
		return a.activate(1)
	case actionScreen3:
		return a.activate(2)
	}
	return cur.HandleKey(m)
}

func (a *App) View() string {
	cur := a.screens[a.active]
	header := a.renderTabs()
	scope := cur.Scope()
	footer := a.keys.helpLine(scope, !cur.Capturing())
	if a.alert != nil {
		footer = a.keys.helpLine(scopeAlert, false)
	}
	bodyHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	body := cur.View(a.width, bodyHeight)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	out := header + "\n\n" + body + "\n" + footer
	if a.alert != nil {
		out = overlayCenter(out, a.renderAlert(), a.width, a.height)
	}
	return out
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(a.screens)+1)
	tabs = append(tabs, titleStyle.Render("Scholarship Admin")+"  ")
	for i, s := range a.screens {
		label := s.Title()
		if i == a.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderAlert() string {
	if a.alert == nil {
		return ""
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(colorError).Render(a.alert.title)
	if a.alert.kind == alertSuccess {
		title = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess).Render(a.alert.title)
	}
	body := strings.TrimSpace(a.alert.body)
	return alertStyle(a.alert.kind).Render(title + "\n\n" + textStyle.Render(body) + "\n\n" + mutedStyle.Render("[enter] OK"))
}
