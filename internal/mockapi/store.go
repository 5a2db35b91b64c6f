package mockapi

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/settings"
	"github.com/jask/scholaradmin/internal/status"
)

//go:embed fixtures.toml
var defaultFixtures []byte

type fixtureFile struct {
	Settings     map[string]any       `toml:"settings"`
	Applications []fixtureApplication `toml:"applications"`
}

type fixtureApplication struct {
	ID              int64     `toml:"id"`
	FirstName       string    `toml:"first_name"`
	LastName        string    `toml:"last_name"`
	Email           string    `toml:"email"`
	ScholarshipName string    `toml:"scholarship_name"`
	Status          string    `toml:"status"`
	Remarks         string    `toml:"remarks"`
	CreatedAt       time.Time `toml:"created_at"`
}

// Store is the in-memory backend state.
type Store struct {
	mu     sync.RWMutex
	apps   []api.Application
	values settings.Values
}

// LoadFixtures decodes a TOML fixture into a Store.
func LoadFixtures(data []byte) (*Store, error) {
	var f fixtureFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("mockapi: decode fixtures: %w", err)
	}
	s := &Store{values: settings.Normalize(f.Settings)}
	if s.values == nil {
		s.values = settings.Values{}
	}
	for _, a := range f.Applications {
		s.apps = append(s.apps, api.Application{
			ID:              a.ID,
			FirstName:       a.FirstName,
			LastName:        a.LastName,
			Email:           a.Email,
			ScholarshipName: a.ScholarshipName,
			Status:          status.Status(a.Status),
			Remarks:         a.Remarks,
			CreatedAt:       a.CreatedAt.UTC(),
		})
	}
	return s, nil
}

// DefaultStore returns a store seeded from the embedded fixtures.
func DefaultStore() (*Store, error) {
	return LoadFixtures(defaultFixtures)
}

func (s *Store) Applications() []api.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Application, len(s.apps))
	copy(out, s.apps)
	return out
}

func (s *Store) SetStatus(id int64, st status.Status, remarks string) (api.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.apps {
		if s.apps[i].ID == id {
			s.apps[i].Status = st
			s.apps[i].Remarks = remarks
			return s.apps[i], true
		}
	}
	return api.Application{}, false
}

func (s *Store) Settings() settings.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(settings.Values, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SetSetting replaces an existing key. The new value must have the same kind
// as the stored one.
func (s *Store) SetSetting(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.values[key]
	if !ok {
		return errUnknownSetting
	}
	value = settings.Normalize(settings.Values{key: value})[key]
	if settings.KindOf(cur) != settings.KindOf(value) {
		return fmt.Errorf("%w: %s expects %s", errSettingKind, key, settings.KindOf(cur))
	}
	s.values[key] = value
	return nil
}

// Reports aggregates the current applications the way the real backend does.
func (s *Store) Reports() api.ReportStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := map[string]struct{}{}
	months := map[string]int{}
	scholarships := map[string]int{}
	statuses := map[status.Status]int{}
	for _, a := range s.apps {
		users[a.Email] = struct{}{}
		months[a.CreatedAt.Format("2006-01")]++
		scholarships[a.ScholarshipName]++
		statuses[a.Status]++
	}

	out := api.ReportStats{
		TotalUsers:        len(users),
		TotalScholarships: len(scholarships),
		TotalApplications: len(s.apps),
	}
	if len(s.apps) > 0 {
		out.ApprovalRate = float64(statuses[status.Approved]) / float64(len(s.apps)) * 100
	}
	for _, m := range sortedKeys(months) {
		out.MonthlyApplications = append(out.MonthlyApplications, api.MonthCount{Month: m, Count: months[m]})
	}
	for _, n := range sortedKeys(scholarships) {
		out.ScholarshipDistribution = append(out.ScholarshipDistribution, api.NamedCount{Name: n, Count: scholarships[n]})
	}
	for _, st := range status.Review() {
		out.StatusDistribution = append(out.StatusDistribution, api.StatusCount{Status: st, Count: statuses[st]})
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
