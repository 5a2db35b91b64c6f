package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jask/scholaradmin/internal/api"
	"github.com/jask/scholaradmin/internal/mockapi"
	"github.com/jask/scholaradmin/internal/secrets"
	"github.com/jask/scholaradmin/internal/status"
)

const secret = "client-test-secret"

type tokenMap map[string]string

func (m tokenMap) Fetch(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", secrets.ErrNotFound
	}
	return v, nil
}

func newServer(t *testing.T) (*httptest.Server, *mockapi.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := mockapi.DefaultStore()
	require.NoError(t, err)
	srv := httptest.NewServer(mockapi.New(store, secret, nil).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	token, err := mockapi.IssueToken(secret, "admin", time.Hour)
	require.NoError(t, err)
	c, err := api.New(baseURL, tokenMap{"userToken": token}, "userToken")
	require.NoError(t, err)
	return c
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := api.New("not a url", tokenMap{}, "k")
	require.Error(t, err)
	_, err = api.New("http://localhost:8080", nil, "k")
	require.Error(t, err)
}

func TestListApplications(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	srv, _ := newServer(t)

	apps, err := newClient(t, srv.URL).ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 6)
	require.Equal(t, "Amara Okafor", apps[0].ApplicantName())
	require.Equal(t, "Portfolio reviewed by panel", apps[1].Remarks)
	require.Equal(t, 2026, apps[0].CreatedAt.Year())
}

func TestUpdateApplicationStatus(t *testing.T) {
	ctx := context.Background()
	srv, store := newServer(t)
	c := newClient(t, srv.URL)

	got, err := c.UpdateApplicationStatus(ctx, 1, status.Approved, "meets criteria")
	require.NoError(t, err)
	require.Equal(t, status.Approved, got.Status)
	require.Equal(t, status.Approved, store.Applications()[0].Status)

	_, err = c.UpdateApplicationStatus(ctx, 999, status.Rejected, "")
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.Code)
}

func TestUpdateApplicationStatusValidatesBeforeSending(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL, tokenMap{"userToken": "x"}, "userToken")
	require.NoError(t, err)
	_, err = c.UpdateApplicationStatus(context.Background(), 1, "archived", "")
	require.ErrorIs(t, err, api.ErrInvalidPayload)
	require.Zero(t, hits)
}

func TestReports(t *testing.T) {
	srv, _ := newServer(t)
	stats, err := newClient(t, srv.URL).Reports(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, stats.TotalApplications)
	require.Len(t, stats.StatusDistribution, 3)
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv, _ := newServer(t)
	c := newClient(t, srv.URL)

	values, err := c.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), values["maxApplicationsPerUser"])
	require.Equal(t, false, values["maintenanceMode"])
	require.Equal(t, "scholarships@example.org", values["supportEmail"])

	require.NoError(t, c.UpdateSetting(ctx, "maintenanceMode", true))
	values, err = c.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, true, values["maintenanceMode"])

	err = c.UpdateSetting(ctx, "maxApplicationsPerUser", "lots")
	require.Error(t, err)
	require.ErrorIs(t, c.UpdateSetting(ctx, " ", 1), api.ErrInvalidPayload)
}

func TestMissingTokenFailsWithoutRequest(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL, tokenMap{}, "userToken")
	require.NoError(t, err)
	_, err = c.ListApplications(context.Background())
	require.ErrorIs(t, err, api.ErrNoToken)
	require.True(t, api.IsUnauthorized(err))
	require.Zero(t, hits)
}

func TestBadTokenIsUnauthorized(t *testing.T) {
	srv, _ := newServer(t)
	c, err := api.New(srv.URL, tokenMap{"userToken": "garbage"}, "userToken")
	require.NoError(t, err)

	_, err = c.Reports(context.Background())
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusUnauthorized, se.Code)
	require.True(t, api.IsUnauthorized(err))
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL+"/v1", tokenMap{"userToken": "tok-123"}, "userToken")
	require.NoError(t, err)
	_, err = c.Settings(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	require.Equal(t, "application/json", got.Get("Accept"))
	require.Len(t, got.Get("X-Request-ID"), 36)
}

func TestUpdateSettingKeyIsOneSegment(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL+"/v1", tokenMap{"userToken": "tok"}, "userToken")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.UpdateSetting(ctx, "feature/flag", true))
	require.NoError(t, c.UpdateSetting(ctx, "../applications/1/status", 1))
	require.Equal(t, []string{
		"PATCH /v1/admin/settings/feature%2Fflag",
		"PATCH /v1/admin/settings/..%2Fapplications%2F1%2Fstatus",
	}, paths)

	require.ErrorIs(t, c.UpdateSetting(ctx, "..", 1), api.ErrInvalidPayload)
	require.Len(t, paths, 2)
}

func TestUpdateSettingTraversalKeyDoesNotTouchApplications(t *testing.T) {
	ctx := context.Background()
	srv, store := newServer(t)
	c := newClient(t, srv.URL)
	before := store.Applications()

	err := c.UpdateSetting(ctx, "../applications/1/status", "approved")
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusNotFound, se.Code)
	require.Equal(t, before, store.Applications())
}
