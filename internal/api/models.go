package api

import (
	"strings"
	"time"

	"github.com/jask/scholaradmin/internal/status"
)

// Application is a scholarship application as served by the backend.
type Application struct {
	ID              int64         `json:"id"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	ScholarshipName string        `json:"scholarship_name"`
	Status          status.Status `json:"status"`
	Remarks         string        `json:"remarks"`
	CreatedAt       time.Time     `json:"created_at"`
}

// ApplicantName joins first and last name.
func (a Application) ApplicantName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// StatusUpdate is the PATCH body for an application's review decision.
type StatusUpdate struct {
	Status  status.Status `json:"status" validate:"required,oneof=pending approved rejected"`
	Remarks string        `json:"remarks" validate:"max=2000"`
}

// ReportStats is the server-computed aggregate for the reports screen.
type ReportStats struct {
	TotalUsers              int           `json:"total_users"`
	TotalScholarships       int           `json:"total_scholarships"`
	TotalApplications       int           `json:"total_applications"`
	ApprovalRate            float64       `json:"approval_rate"`
	MonthlyApplications     []MonthCount  `json:"monthly_applications"`
	ScholarshipDistribution []NamedCount  `json:"scholarship_distribution"`
	StatusDistribution      []StatusCount `json:"status_distribution"`
}

type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StatusCount struct {
	Status status.Status `json:"status"`
	Count  int           `json:"count"`
}

// SettingUpdate is the PATCH body for a single setting.
type SettingUpdate struct {
	Value any `json:"value"`
}
