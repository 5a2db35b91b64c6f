package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/journal"
	"github.com/jask/scholaradmin/internal/review"
	"github.com/jask/scholaradmin/internal/status"
)

const (
	msgFetchApplicationsFailed = "Failed to fetch applications"
	msgUpdateStatusFailed      = "Failed to update application status"
	msgUpdateStatusOK          = "Application status updated successfully"
)

type reviewScreen struct {
	ctx        context.Context
	backend    Backend
	journal    Journal
	log        *zap.Logger
	keys       *keyRegistry
	dateFormat string
	loc        *time.Location

	loading   bool
	loaded    bool
	apps      []api.Application
	filter    status.Status
	query     string
	search    textinput.Model
	searching bool
	cursor    int
	offset    int
	modal     *reviewModal
}

// reviewModal is the open review form for one application.
type reviewModal struct {
	app     api.Application
	choice  int
	remarks textinput.Model
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "› "
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newReviewScreen(ctx context.Context, backend Backend, keys *keyRegistry, opts Options) *reviewScreen {
	return &reviewScreen{
		ctx:        ctx,
		backend:    backend,
		journal:    opts.Journal,
		log:        opts.Logger,
		keys:       keys,
		dateFormat: opts.DateFormat,
		loc:        opts.Location,
		filter:     status.All,
		search:     newTextInput("search applicant or scholarship", 64),
	}
}

func (s *reviewScreen) Title() string { return "Applications" }

func (s *reviewScreen) Scope() string {
	switch {
	case s.modal != nil:
		return scopeReviewModal
	case s.searching:
		return scopeReviewSearch
	default:
		return scopeReview
	}
}

func (s *reviewScreen) Capturing() bool { return s.modal != nil || s.searching }

func (s *reviewScreen) Init() tea.Cmd {
	return s.fetch()
}

func (s *reviewScreen) fetch() tea.Cmd {
	s.loading = true
	return func() tea.Msg {
		apps, err := s.backend.ListApplications(s.ctx)
		return applicationsMsg{apps: apps, err: err}
	}
}

// visible is the filtered then searched view of the cached list.
func (s *reviewScreen) visible() []api.Application {
	return review.Search(review.Filter(s.apps, s.filter), s.query)
}

func (s *reviewScreen) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case applicationsMsg:
		s.loading = false
		if m.err != nil {
			s.log.Warn("fetch applications failed", zap.Bool("unauthorized", api.IsUnauthorized(m.err)), zap.Error(m.err))
			return errorAlert(msgFetchApplicationsFailed)
		}
		s.loaded = true
		s.apps = m.apps
		if s.modal != nil {
			// keep the open form on the server's current copy
			if fresh, ok := review.Find(s.apps, s.modal.app.ID); ok {
				s.modal.app = fresh
			} else {
				s.modal = nil
			}
		}
		s.clampCursor()
	case statusUpdatedMsg:
		if m.err != nil {
			s.log.Warn("update application status failed", zap.Int64("id", m.id), zap.Error(m.err))
			return errorAlert(msgUpdateStatusFailed)
		}
		s.apps = review.ApplyUpdate(s.apps, m.id, m.status, m.remarks)
		if s.modal != nil && s.modal.app.ID == m.id {
			s.modal = nil
		}
		s.clampCursor()
		return successAlert(msgUpdateStatusOK)
	}
	return nil
}

func (s *reviewScreen) HandleKey(m tea.KeyMsg) tea.Cmd {
	if s.modal != nil {
		return s.handleModalKey(m)
	}
	if s.searching {
		return s.handleSearchKey(m)
	}
	switch s.keys.lookup(m, scopeReview) {
	case actionUp:
		if s.cursor > 0 {
			s.cursor--
		}
	case actionDown:
		if s.cursor < len(s.visible())-1 {
			s.cursor++
		}
	case actionOpen:
		return s.openModal()
	case actionFilter:
		s.filter = nextFilter(s.filter)
		s.cursor, s.offset = 0, 0
	case actionSearch:
		s.searching = true
		s.search.SetValue(s.query)
		s.search.CursorEnd()
		return s.search.Focus()
	case actionClearSearch:
		s.query = ""
		s.search.SetValue("")
		s.clampCursor()
	case actionRefresh:
		return s.fetch()
	}
	return nil
}

func (s *reviewScreen) handleSearchKey(m tea.KeyMsg) tea.Cmd {
	switch s.keys.lookup(m, scopeReviewSearch) {
	case actionConfirm:
		s.searching = false
		s.search.Blur()
		return nil
	case actionCancel:
		s.searching = false
		s.search.Blur()
		s.query = ""
		s.search.SetValue("")
		s.clampCursor()
		return nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(m)
	s.query = s.search.Value()
	s.cursor, s.offset = 0, 0
	return cmd
}

func (s *reviewScreen) openModal() tea.Cmd {
	list := s.visible()
	if len(list) == 0 || s.cursor >= len(list) {
		return nil
	}
	app := list[s.cursor]
	choice := 0
	for i, st := range status.Review() {
		if st == app.Status {
			choice = i
		}
	}
	remarks := newTextInput("remarks (optional)", 500)
	remarks.SetValue(app.Remarks)
	remarks.CursorEnd()
	s.modal = &reviewModal{app: app, choice: choice, remarks: remarks}
	return s.modal.remarks.Focus()
}

func (s *reviewScreen) handleModalKey(m tea.KeyMsg) tea.Cmd {
	choices := status.Review()
	switch s.keys.lookup(m, scopeReviewModal) {
	case actionCancel:
		s.modal = nil
		return nil
	case actionPrevChoice:
		s.modal.choice = (s.modal.choice - 1 + len(choices)) % len(choices)
		return nil
	case actionNextChoice:
		s.modal.choice = (s.modal.choice + 1) % len(choices)
		return nil
	case actionConfirm:
		return s.updateStatus(s.modal.app, choices[s.modal.choice], strings.TrimSpace(s.modal.remarks.Value()))
	}
	var cmd tea.Cmd
	s.modal.remarks, cmd = s.modal.remarks.Update(m)
	return cmd
}

func (s *reviewScreen) updateStatus(app api.Application, st status.Status, remarks string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.backend.UpdateApplicationStatus(s.ctx, app.ID, st, remarks)
		if err == nil && s.journal != nil {
			entry := journal.ReviewEntry{ApplicationID: app.ID, Applicant: app.ApplicantName(), Status: st, Remarks: remarks}
			if jerr := s.journal.RecordReview(s.ctx, entry); jerr != nil {
				s.log.Warn("journal review failed", zap.Int64("id", app.ID), zap.Error(jerr))
			}
		}
		return statusUpdatedMsg{id: app.ID, status: st, remarks: remarks, err: err}
	}
}

func (s *reviewScreen) clampCursor() {
	n := len(s.visible())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func nextFilter(cur status.Status) status.Status {
	filters := status.Filters()
	for i, f := range filters {
		if f == cur {
			return filters[(i+1)%len(filters)]
		}
	}
	return status.All
}

func (s *reviewScreen) View(width, height int) string {
	if s.loading && !s.loaded {
		return mutedStyle.Render("Loading applications…")
	}

	var b strings.Builder
	b.WriteString(s.renderFilterBar())
	b.WriteString("\n")
	switch {
	case s.searching:
		b.WriteString(s.search.View())
	case s.query != "":
		b.WriteString(mutedStyle.Render("search: ") + textStyle.Render(s.query))
	default:
		b.WriteString(mutedStyle.Render("press / to search"))
	}
	b.WriteString("\n\n")

	list := s.visible()
	if len(list) == 0 {
		b.WriteString(mutedStyle.Render("No applications found."))
	} else {
		rows := height - 4
		if rows < 1 {
			rows = 1
		}
		s.scrollTo(rows)
		end := s.offset + rows
		if end > len(list) {
			end = len(list)
		}
		for i := s.offset; i < end; i++ {
			b.WriteString(s.renderRow(list[i], i == s.cursor, width))
			if i < end-1 {
				b.WriteString("\n")
			}
		}
	}

	out := b.String()
	if s.modal != nil {
		out = overlayCenter(out, s.renderModal(width), width, height)
	}
	return out
}

func (s *reviewScreen) scrollTo(rows int) {
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
}

func (s *reviewScreen) renderFilterBar() string {
	counts := review.Counts(s.apps)
	parts := make([]string, 0, len(status.Filters()))
	for _, f := range status.Filters() {
		label := fmt.Sprintf("%s (%d)", status.Label(f), counts[f])
		if f == s.filter {
			parts = append(parts, selectedStyle.Render(" "+label+" "))
		} else {
			parts = append(parts, mutedStyle.Render(" "+label+" "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (s *reviewScreen) renderRow(a api.Application, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = cursorStyle.Render("▶ ")
	}
	name := ansi.Truncate(a.ApplicantName(), 22, "…")
	scholarship := ansi.Truncate(a.ScholarshipName, 24, "…")
	date := a.CreatedAt.In(s.loc).Format(s.dateFormat)
	line := fmt.Sprintf("%s#%-4d %-22s %-24s %-12s %s", marker, a.ID, name, scholarship, date, badge(a.Status))
	if a.Remarks != "" && width > 110 {
		line += "  " + mutedStyle.Render(ansi.Truncate(a.Remarks, width-110, "…"))
	}
	return line
}

func (s *reviewScreen) renderModal(width int) string {
	m := s.modal
	w := 56
	if width > 0 && width-4 < w {
		w = width - 4
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Review application"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(m.app.ApplicantName()) + "  " + mutedStyle.Render(m.app.Email) + "\n")
	b.WriteString(mutedStyle.Render("Scholarship: ") + textStyle.Render(m.app.ScholarshipName) + "\n")
	b.WriteString(mutedStyle.Render("Current: ") + badge(m.app.Status) + "\n\n")
	b.WriteString(mutedStyle.Render("New status") + "\n")
	for i, st := range status.Review() {
		marker := "  "
		if i == m.choice {
			marker = cursorStyle.Render("▶ ")
		}
		b.WriteString(marker + badge(st) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("Remarks") + "\n")
	b.WriteString(m.remarks.View())
	return modalStyle.Width(w).Render(b.String())
}
