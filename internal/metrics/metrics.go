package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ItemsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetgate_items_total",
		Help: "Total candidate items evaluated",
	})
	Verdicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgate_verdicts_total",
		Help: "Evaluation verdicts by outcome and reason",
	}, []string{"outcome", "reason"})
	Dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgate_dispatch_total",
		Help: "Dispatched actions by kind and status",
	}, []string{"kind", "status"})
	RefreshErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgate_reputation_refresh_errors_total",
		Help: "Failed reputation list refreshes",
	}, []string{"list"})
	ListSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tweetgate_reputation_list_size",
		Help: "Accounts in the current reputation snapshot",
	}, []string{"list"})
	Rollovers = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetgate_quota_rollovers_total",
		Help: "Quota window rollovers",
	})
	Fingerprints = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tweetgate_dedup_fingerprints",
		Help: "Fingerprints held by the dedup cache",
	})
	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tweetgate_job_duration_seconds",
		Help:    "Periodic job duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgate_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgate_command_runs_total",
		Help: "CLI command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetgate_command_errors_total",
		Help: "CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(ItemsProcessed, Verdicts, Dispatches, RefreshErrors, ListSize,
		Rollovers, Fingerprints, JobDuration, APIRetries, CommandRuns, CommandErrors)
}

// Handler returns the HTTP handler serving /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return mux
}

// NewServer returns a metrics HTTP server on addr (e.g., ":9090"), falling
// back to METRICS_ADDR. It returns nil when no address is configured.
func NewServer(addr string) *http.Server {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return nil
	}
	return &http.Server{Addr: addr, Handler: Handler(), ReadHeaderTimeout: 5 * time.Second}
}

// ObserveJob records a job's run duration.
func ObserveJob(job string, start time.Time) {
	JobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

// IncVerdict counts an evaluation outcome.
func IncVerdict(outcome, reason string) { Verdicts.WithLabelValues(outcome, reason).Inc() }

// IncDispatch counts a dispatch outcome.
func IncDispatch(kind, status string) { Dispatches.WithLabelValues(kind, status).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
