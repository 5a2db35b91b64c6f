package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/journal"
	"github.com/jask/scholaradmin/internal/settings"
)

const (
	msgFetchSettingsFailed = "Failed to fetch settings"
	msgUpdateSettingFailed = "Failed to update setting"
)

type settingsScreen struct {
	ctx     context.Context
	backend Backend
	journal Journal
	log     *zap.Logger
	keys    *keyRegistry

	loading bool
	loaded  bool
	values  settings.Values
	cursor  int
	editing string // key being edited, "" when idle
	input   textinput.Model
}

func newSettingsScreen(ctx context.Context, backend Backend, keys *keyRegistry, opts Options) *settingsScreen {
	return &settingsScreen{
		ctx:     ctx,
		backend: backend,
		journal: opts.Journal,
		log:     opts.Logger,
		keys:    keys,
		input:   newTextInput("", 256),
	}
}

func (s *settingsScreen) Title() string { return "Settings" }

func (s *settingsScreen) Scope() string {
	if s.editing != "" {
		return scopeSettingsEdit
	}
	return scopeSettings
}

func (s *settingsScreen) Capturing() bool { return s.editing != "" }

func (s *settingsScreen) Init() tea.Cmd {
	return s.fetch()
}

func (s *settingsScreen) fetch() tea.Cmd {
	s.loading = true
	return func() tea.Msg {
		values, err := s.backend.Settings(s.ctx)
		return settingsMsg{values: values, err: err}
	}
}

func (s *settingsScreen) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case settingsMsg:
		s.loading = false
		if m.err != nil {
			s.log.Warn("fetch settings failed", zap.Bool("unauthorized", api.IsUnauthorized(m.err)), zap.Error(m.err))
			return errorAlert(msgFetchSettingsFailed)
		}
		s.loaded = true
		s.values = m.values
		if s.cursor >= len(s.values) {
			s.cursor = 0
		}
	case settingUpdatedMsg:
		if m.err != nil {
			s.log.Warn("update setting failed", zap.String("key", m.edit.Key), zap.Error(m.err))
			s.values = m.edit.Revert(s.values)
			return errorAlert(msgUpdateSettingFailed)
		}
		s.values = settings.Merge(s.values, m.edit.Key, m.edit.Value)
	}
	return nil
}

func (s *settingsScreen) selectedKey() string {
	keys := s.values.Keys()
	if s.cursor < 0 || s.cursor >= len(keys) {
		return ""
	}
	return keys[s.cursor]
}

func (s *settingsScreen) HandleKey(m tea.KeyMsg) tea.Cmd {
	if s.editing != "" {
		return s.handleEditKey(m)
	}
	switch s.keys.lookup(m, scopeSettings) {
	case actionUp:
		if s.cursor > 0 {
			s.cursor--
		}
	case actionDown:
		if s.cursor < len(s.values)-1 {
			s.cursor++
		}
	case actionOpen:
		key := s.selectedKey()
		if key == "" {
			return nil
		}
		cur := s.values[key]
		if b, ok := cur.(bool); ok {
			return s.updateSetting(key, !b)
		}
		s.editing = key
		s.input.SetValue(settings.Format(cur))
		s.input.CursorEnd()
		return s.input.Focus()
	case actionRefresh:
		return s.fetch()
	}
	return nil
}

func (s *settingsScreen) handleEditKey(m tea.KeyMsg) tea.Cmd {
	switch s.keys.lookup(m, scopeSettingsEdit) {
	case actionConfirm:
		key := s.editing
		value := settings.Coerce(s.values[key], s.input.Value())
		s.stopEditing()
		return s.updateSetting(key, value)
	case actionCancel:
		s.stopEditing()
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(m)
	return cmd
}

func (s *settingsScreen) stopEditing() {
	s.editing = ""
	s.input.Blur()
	s.input.SetValue("")
}

// updateSetting applies value locally right away and sends it. The reply
// either confirms it or restores the value captured here.
func (s *settingsScreen) updateSetting(key string, value any) tea.Cmd {
	var edit settings.Edit
	s.values, edit = settings.Begin(s.values, key, value)
	return func() tea.Msg {
		err := s.backend.UpdateSetting(s.ctx, key, value)
		if s.journal != nil {
			entry := journal.SettingEntry{Key: key, Previous: settings.Format(edit.Prior), Value: settings.Format(value), OK: err == nil}
			if jerr := s.journal.RecordSetting(s.ctx, entry); jerr != nil {
				s.log.Warn("journal setting failed", zap.String("key", key), zap.Error(jerr))
			}
		}
		return settingUpdatedMsg{edit: edit, err: err}
	}
}

func (s *settingsScreen) View(width, height int) string {
	if s.loading && !s.loaded {
		return mutedStyle.Render("Loading settings…")
	}
	if len(s.values) == 0 {
		return mutedStyle.Render("No settings.")
	}
	var b strings.Builder
	for i, key := range s.values.Keys() {
		marker := "  "
		if i == s.cursor {
			marker = cursorStyle.Render("▶ ")
		}
		label := fmt.Sprintf("%-28s", humanize(key))
		value := renderSettingValue(s.values[key])
		if key == s.editing {
			value = s.input.View()
		}
		kind := mutedStyle.Render(fmt.Sprintf("%-7s", settings.KindOf(s.values[key])))
		b.WriteString(marker + textStyle.Render(label) + " " + kind + " " + value)
		if i < len(s.values)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderSettingValue(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("on")
		}
		return lipgloss.NewStyle().Foreground(colorOverlay1).Render("off")
	case string:
		return lipgloss.NewStyle().Foreground(colorInfo).Render(fmt.Sprintf("%q", t))
	default:
		return lipgloss.NewStyle().Foreground(colorWarning).Render(settings.Format(v))
	}
}

// humanize turns camelCase or snake_case keys into "Sentence case".
func humanize(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	if len(words) == 0 {
		return key
	}
	out := strings.Join(words, " ")
	r, size := utf8.DecodeRuneInString(out)
	return string(unicode.ToUpper(r)) + out[size:]
}
