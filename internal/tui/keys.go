package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type action string

const (
	actionNone        action = ""
	actionQuit        action = "quit"
	actionNextTab     action = "next_tab"
	actionPrevTab     action = "prev_tab"
	actionScreen1     action = "screen_1"
	actionScreen2     action = "screen_2"
	actionScreen3     action = "screen_3"
	actionUp          action = "up"
	actionDown        action = "down"
	actionOpen        action = "open"
	actionFilter      action = "filter"
	actionSearch      action = "search"
	actionClearSearch action = "clear_search"
	actionRefresh     action = "refresh"
	actionConfirm     action = "confirm"
	actionCancel      action = "cancel"
	actionPrevChoice  action = "prev_choice"
	actionNextChoice  action = "next_choice"
	actionDismiss     action = "dismiss"
)

const (
	scopeGlobal       = "global"
	scopeReview       = "review"
	scopeReviewSearch = "review_search"
	scopeReviewModal  = "review_modal"
	scopeReports      = "reports"
	scopeSettings     = "settings"
	scopeSettingsEdit = "settings_edit"
	scopeAlert        = "alert"
)

type binding struct {
	action action
	key    key.Binding
}

// keyRegistry maps keys to actions per scope. The first key registered for a
// scope wins; later duplicates in the same scope are ignored.
type keyRegistry struct {
	byScope map[string][]binding
	seen    map[string]map[string]bool
}

func newKeyRegistry() *keyRegistry {
	r := &keyRegistry{
		byScope: make(map[string][]binding),
		seen:    make(map[string]map[string]bool),
	}
	reg := r.register

	reg(scopeGlobal, actionScreen1, []string{"1"}, "1-3", "screens")
	reg(scopeGlobal, actionScreen2, []string{"2"}, "", "")
	reg(scopeGlobal, actionScreen3, []string{"3"}, "", "")
	reg(scopeGlobal, actionNextTab, []string{"tab"}, "tab", "next")
	reg(scopeGlobal, actionPrevTab, []string{"shift+tab"}, "", "")
	reg(scopeGlobal, actionQuit, []string{"q", "ctrl+c"}, "q", "quit")

	reg(scopeReview, actionUp, []string{"up", "k"}, "j/k", "navigate")
	reg(scopeReview, actionDown, []string{"down", "j"}, "", "")
	reg(scopeReview, actionOpen, []string{"enter"}, "enter", "review")
	reg(scopeReview, actionFilter, []string{"f"}, "f", "filter")
	reg(scopeReview, actionSearch, []string{"/"}, "/", "search")
	reg(scopeReview, actionClearSearch, []string{"esc"}, "esc", "clear search")
	reg(scopeReview, actionRefresh, []string{"r"}, "r", "refresh")

	reg(scopeReviewSearch, actionConfirm, []string{"enter"}, "enter", "apply")
	reg(scopeReviewSearch, actionCancel, []string{"esc"}, "esc", "cancel")

	reg(scopeReviewModal, actionPrevChoice, []string{"up"}, "↑/↓", "status")
	reg(scopeReviewModal, actionNextChoice, []string{"down"}, "", "")
	reg(scopeReviewModal, actionConfirm, []string{"enter"}, "enter", "submit")
	reg(scopeReviewModal, actionCancel, []string{"esc"}, "esc", "close")

	reg(scopeReports, actionRefresh, []string{"r"}, "r", "refresh")

	reg(scopeSettings, actionUp, []string{"up", "k"}, "j/k", "navigate")
	reg(scopeSettings, actionDown, []string{"down", "j"}, "", "")
	reg(scopeSettings, actionOpen, []string{"enter", " "}, "enter", "toggle/edit")
	reg(scopeSettings, actionRefresh, []string{"r"}, "r", "refresh")

	reg(scopeSettingsEdit, actionConfirm, []string{"enter"}, "enter", "save")
	reg(scopeSettingsEdit, actionCancel, []string{"esc"}, "esc", "cancel")

	reg(scopeAlert, actionDismiss, []string{"enter", "esc"}, "enter", "ok")
	return r
}

// register adds a binding. An empty helpKey hides it from the footer.
func (r *keyRegistry) register(scope string, a action, keys []string, helpKey, helpDesc string) {
	if r.seen[scope] == nil {
		r.seen[scope] = make(map[string]bool)
	}
	var fresh []string
	for _, k := range keys {
		if r.seen[scope][k] {
			continue
		}
		r.seen[scope][k] = true
		fresh = append(fresh, k)
	}
	if len(fresh) == 0 {
		return
	}
	opts := []key.BindingOpt{key.WithKeys(fresh...)}
	if helpKey != "" {
		opts = append(opts, key.WithHelp(helpKey, helpDesc))
	}
	r.byScope[scope] = append(r.byScope[scope], binding{action: a, key: key.NewBinding(opts...)})
}

func (r *keyRegistry) lookup(msg tea.KeyMsg, scope string) action {
	for _, b := range r.byScope[scope] {
		if key.Matches(msg, b.key) {
			return b.action
		}
	}
	return actionNone
}

func (r *keyRegistry) help(scope string) []key.Binding {
	var out []key.Binding
	for _, b := range r.byScope[scope] {
		if b.key.Help().Key == "" {
			continue
		}
		out = append(out, b.key)
	}
	return out
}

// helpLine renders the footer for scope, followed by the global keys when
// includeGlobal is set.
func (r *keyRegistry) helpLine(scope string, includeGlobal bool) string {
	bindings := r.help(scope)
	if includeGlobal {
		bindings = append(bindings, r.help(scopeGlobal)...)
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
