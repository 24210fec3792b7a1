package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExposure(t *testing.T) {
	ItemsProcessed.Inc()
	IncVerdict("reject", "user")
	IncDispatch("repost", "success")
	RefreshErrors.WithLabelValues("whitelist").Inc()
	ListSize.WithLabelValues("blacklist").Set(3)
	Rollovers.Inc()
	Fingerprints.Set(2)
	IncAPIRetry("/test")
	IncCommandRun("run")
	IncCommandError("run")
	ObserveJob("search", time.Now().Add(-1500*time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"tweetgate_items_total",
		"tweetgate_verdicts_total",
		"tweetgate_dispatch_total",
		"tweetgate_reputation_refresh_errors_total",
		"tweetgate_reputation_list_size",
		"tweetgate_quota_rollovers_total",
		"tweetgate_dedup_fingerprints",
		"tweetgate_job_duration_seconds",
		"tweetgate_api_retries_total",
		"tweetgate_command_runs_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
	if got := testutil.ToFloat64(Fingerprints); got != 2 {
		t.Fatalf("fingerprint gauge = %v", got)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: %d", rec.Code)
	}
}

func TestNewServerNeedsAddress(t *testing.T) {
	t.Setenv("METRICS_ADDR", "")
	if NewServer("") != nil {
		t.Fatalf("expected no server without address")
	}
	if s := NewServer(":9191"); s == nil || s.Addr != ":9191" {
		t.Fatalf("unexpected server %+v", s)
	}
}
