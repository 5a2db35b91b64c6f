package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/settings"
	"github.com/jask/scholaradmin/internal/status"
)

type applicationsMsg struct {
	apps []api.Application
	err  error
}

type statusUpdatedMsg struct {
	id      int64
	status  status.Status
	remarks string
	err     error
}

type reportsMsg struct {
	stats api.ReportStats
	err   error
}

type settingsMsg struct {
	values settings.Values
	err    error
}

type settingUpdatedMsg struct {
	edit settings.Edit
	err  error
}

type alertKind int

const (
	alertError alertKind = iota
	alertSuccess
)

type alertMsg struct {
	kind  alertKind
	title string
	body  string
}

func showAlert(kind alertKind, title, body string) tea.Cmd {
	return func() tea.Msg {
		return alertMsg{kind: kind, title: title, body: body}
	}
}

func errorAlert(body string) tea.Cmd {
	return showAlert(alertError, "Error", body)
}

func successAlert(body string) tea.Cmd {
	return showAlert(alertSuccess, "Success", body)
}
