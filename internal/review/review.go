// Package review holds the pure list operations behind the application
// review screen.
package review

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/status"
)

// maxTypoDistance is the Levenshtein tolerance for a single name token.
const maxTypoDistance = 2

// Filter returns the applications whose status equals s, keeping server
// order. status.All returns apps unmodified.
func Filter(apps []api.Application, s status.Status) []api.Application {
	if s == status.All {
		return apps
	}
	out := make([]api.Application, 0, len(apps))
	for _, a := range apps {
		if a.Status == s {
			out = append(out, a)
		}
	}
	return out
}

// ApplyUpdate mirrors a confirmed status change. Only the record with a
// matching id changes; the input slice is not modified.
func ApplyUpdate(apps []api.Application, id int64, s status.Status, remarks string) []api.Application {
	out := make([]api.Application, len(apps))
	copy(out, apps)
	for i := range out {
		if out[i].ID == id {
			out[i].Status = s
			out[i].Remarks = remarks
		}
	}
	return out
}

// Find returns the application with the given id.
func Find(apps []api.Application, id int64) (api.Application, bool) {
	for _, a := range apps {
		if a.ID == id {
			return a, true
		}
	}
	return api.Application{}, false
}

// Counts tallies applications per status. The status.All entry holds the
// total.
func Counts(apps []api.Application) map[status.Status]int {
	out := map[status.Status]int{status.All: len(apps)}
	for _, a := range apps {
		out[a.Status]++
	}
	return out
}

// Search keeps applications whose applicant, email or scholarship matches
// query, either as a substring or within a small edit distance of a word.
func Search(apps []api.Application, query string) []api.Application {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return apps
	}
	out := make([]api.Application, 0, len(apps))
	for _, a := range apps {
		if matches(a, q) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a api.Application, q string) bool {
	hay := strings.ToLower(strings.Join([]string{a.FirstName, a.LastName, a.Email, a.ScholarshipName}, " "))
	if strings.Contains(hay, q) {
		return true
	}
	// short queries produce too many fuzzy hits
	if len([]rune(q)) < 4 {
		return false
	}
	for _, word := range strings.Fields(hay) {
		if levenshtein.ComputeDistance(word, q) <= maxTypoDistance {
			return true
		}
	}
	return false
}
