package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/status"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := DefaultStore()
	require.NoError(t, err)
	return New(store, testSecret, nil).Router(), store
}

func authed(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	token, err := IssueToken(testSecret, "admin", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestFixturesLoad(t *testing.T) {
	store, err := DefaultStore()
	require.NoError(t, err)
	apps := store.Applications()
	require.Len(t, apps, 6)
	require.Equal(t, status.Pending, apps[0].Status)
	require.Equal(t, int64(3), store.Settings()["maxApplicationsPerUser"])
	require.Equal(t, false, store.Settings()["maintenanceMode"])
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/applications", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := IssueToken(testSecret, "admin", -time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := IssueToken("other-secret", "admin", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin/applications", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	r, store := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPatch, "/admin/applications/4/status", `{"status":"approved","remarks":"great fit"}`))
	require.Equal(t, http.StatusOK, w.Code)

	var got api.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, status.Approved, got.Status)
	require.Equal(t, "great fit", got.Remarks)
	require.Equal(t, status.Approved, store.Applications()[3].Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPatch, "/admin/applications/4/status", `{"status":"archived"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPatch, "/admin/applications/404/status", `{"status":"rejected"}`))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateSetting(t *testing.T) {
	r, store := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPatch, "/admin/settings/maintenanceMode", `{"value":true}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, store.Settings()["maintenanceMode"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPatch, "/admin/settings/maxApplicationsPerUser", `{"value":5}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(5), store.Settings()["maxApplicationsPerUser"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPatch, "/admin/settings/maxApplicationsPerUser", `{"value":"five"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPatch, "/admin/settings/nope", `{"value":1}`))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportsMatchApplications(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodGet, "/admin/reports", ""))
	require.Equal(t, http.StatusOK, w.Code)

	var stats api.ReportStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 5, stats.TotalUsers)
	require.Equal(t, 4, stats.TotalScholarships)
	require.Equal(t, 6, stats.TotalApplications)
	require.InDelta(t, 33.33, stats.ApprovalRate, 0.01)
	require.Equal(t, []api.MonthCount{{Month: "2026-01", Count: 2}, {Month: "2026-02", Count: 3}, {Month: "2026-03", Count: 1}}, stats.MonthlyApplications)
	require.Equal(t, []api.StatusCount{
		{Status: status.Pending, Count: 3},
		{Status: status.Approved, Count: 2},
		{Status: status.Rejected, Count: 1},
	}, stats.StatusDistribution)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/admin/settings/maintenanceMode", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}
