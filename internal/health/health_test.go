package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ps2kbd/internal/metrics"
)

func healthy(ctx context.Context) CheckResult   { return CheckResult{Status: StatusHealthy} }
func unhealthy(ctx context.Context) CheckResult { return CheckResult{Status: StatusUnhealthy} }

func TestOverallStatus(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("queue", true, healthy)
	assert.Equal(t, StatusUnknown, c.OverallStatus(), "critical check never run")

	c.Check(context.Background())
	assert.Equal(t, StatusHealthy, c.OverallStatus())

	c.RegisterFunc("port", false, unhealthy)
	c.Check(context.Background())
	assert.Equal(t, StatusDegraded, c.OverallStatus())

	c.RegisterFunc("keymap", true, unhealthy)
	c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, c.OverallStatus())
}

func TestCheckTimeoutAndPanic(t *testing.T) {
	c := NewChecker()
	c.Register(&Component{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Check: func(ctx context.Context) CheckResult {
			<-ctx.Done()
			time.Sleep(5 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		},
	})
	c.RegisterFunc("boom", false, func(ctx context.Context) CheckResult { panic("bad") })

	results := c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, results["slow"].Status)
	assert.Equal(t, "check timed out", results["slow"].Message)
	assert.Equal(t, StatusUnhealthy, results["boom"].Status)
	assert.Equal(t, "bad", results["boom"].Error)
}

func TestQueueCheck(t *testing.T) {
	m := metrics.NewKeyboardMetrics(metrics.NewRegistry("test", "health"))
	check := QueueCheck(m, 8)
	ctx := context.Background()

	assert.Equal(t, StatusHealthy, check(ctx).Status)

	m.QueueDepth.Set(6)
	assert.Equal(t, StatusDegraded, check(ctx).Status)

	m.QueueDepth.Set(8)
	assert.Equal(t, StatusUnhealthy, check(ctx).Status)

	m.QueueDepth.Set(0)
	m.CodesDropped.Add(3)
	res := check(ctx)
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, uint64(3), res.Details["new_drops"])

	assert.Equal(t, StatusHealthy, check(ctx).Status, "drops are only reported once")
}

func TestFileCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvorak.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"dvorak\"\n"), 0600))

	ctx := context.Background()
	assert.Equal(t, StatusHealthy, FileCheck(path)(ctx).Status)
	assert.Equal(t, StatusUnhealthy, FileCheck(dir)(ctx).Status)
	assert.Equal(t, StatusUnhealthy, FileCheck(filepath.Join(dir, "missing"))(ctx).Status)
}

func TestHealthHandler(t *testing.T) {
	c := NewChecker()
	c.RegisterFunc("ok", true, CustomCheck(func() error { return nil }))

	rec := httptest.NewRecorder()
	c.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Contains(t, resp.Components, "ok")

	c.RegisterFunc("broken", true, CustomCheck(func() error { return errors.New("gone") }))
	rec = httptest.NewRecorder()
	c.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	c.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
