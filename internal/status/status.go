// Package status holds the review status vocabulary shared by the review and
// reports screens.
package status

import (
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Status is the review state of a scholarship application.
type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"

	// All is a filter sentinel, never a stored status.
	All Status = "all"
)

// Catppuccin Mocha, same values as the rest of the UI palette.
const (
	Green lipgloss.Color = "#a6e3a1"
	Red   lipgloss.Color = "#f38ba8"
	Amber lipgloss.Color = "#f9e2af"
)

// Review lists the statuses an operator can assign, in display order.
func Review() []Status {
	return []Status{Pending, Approved, Rejected}
}

// Filters lists the filter cycle used by the review screen.
func Filters() []Status {
	return []Status{All, Pending, Approved, Rejected}
}

// Color maps a status to its badge color. Anything that is not approved or
// rejected, including pending and unknown values, is amber.
func Color(s Status) lipgloss.Color {
	switch s {
	case Approved:
		return Green
	case Rejected:
		return Red
	default:
		return Amber
	}
}

// Valid reports whether s is one of the assignable review statuses.
func Valid(s Status) bool {
	switch s {
	case Pending, Approved, Rejected:
		return true
	}
	return false
}

// Label returns the capitalised display form.
func Label(s Status) string {
	if s == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(string(s))
	return string(unicode.ToUpper(r)) + string(s)[size:]
}
