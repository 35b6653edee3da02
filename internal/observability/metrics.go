package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics tracks operational metrics for the crawler.
type Metrics struct {
	// Fetch metrics
	PagesFetched atomic.Int64
	FetchErrors  atomic.Int64
	FetchRetries atomic.Int64

	// Link metrics
	ListingPages   atomic.Int64
	LinksCollected atomic.Int64
	LinksDeduped   atomic.Int64

	// Record metrics
	RecordsExtracted   atomic.Int64
	ExtractionFailures atomic.Int64
	RecordsDropped     atomic.Int64
	RecordsStored      atomic.Int64

	// Pool metrics
	ActiveTasks     atomic.Int64
	PeakActiveTasks atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// TaskStarted marks one extraction task as in flight and raises the peak
// when needed.
func (m *Metrics) TaskStarted() {
	n := m.ActiveTasks.Add(1)
	for {
		peak := m.PeakActiveTasks.Load()
		if n <= peak || m.PeakActiveTasks.CompareAndSwap(peak, n) {
			return
		}
	}
}

// TaskFinished marks one extraction task as done.
func (m *Metrics) TaskFinished() {
	m.ActiveTasks.Add(-1)
}

type metric struct {
	name  string
	help  string
	kind  string
	value int64
}

func (m *Metrics) collect() []metric {
	return []metric{
		{"breedstalk_pages_fetched_total", "Total pages opened", "counter", m.PagesFetched.Load()},
		{"breedstalk_fetch_errors_total", "Total failed page opens", "counter", m.FetchErrors.Load()},
		{"breedstalk_fetch_retries_total", "Total retried page opens", "counter", m.FetchRetries.Load()},
		{"breedstalk_listing_pages_total", "Total listing pages read", "counter", m.ListingPages.Load()},
		{"breedstalk_links_collected_total", "Total detail links collected", "counter", m.LinksCollected.Load()},
		{"breedstalk_links_deduped_total", "Total duplicate detail links skipped", "counter", m.LinksDeduped.Load()},
		{"breedstalk_records_extracted_total", "Total records extracted", "counter", m.RecordsExtracted.Load()},
		{"breedstalk_extraction_failures_total", "Total entities that failed", "counter", m.ExtractionFailures.Load()},
		{"breedstalk_records_dropped_total", "Total records dropped by the pipeline", "counter", m.RecordsDropped.Load()},
		{"breedstalk_records_stored_total", "Total records stored", "counter", m.RecordsStored.Load()},
		{"breedstalk_active_tasks", "Extraction tasks in flight", "gauge", m.ActiveTasks.Load()},
		{"breedstalk_peak_active_tasks", "Highest number of extraction tasks in flight", "gauge", m.PeakActiveTasks.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, metric := range m.collect() {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", metric.name, metric.kind)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server in the background. Stop it
// with StopServer.
func (m *Metrics) StartServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return srv
}

// StopServer gracefully shuts down a server started by StartServer.
func (m *Metrics) StopServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		m.logger.Warn("metrics server shutdown", "error", err)
	}
}

// Snapshot returns all metrics as a map keyed without the name prefix.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"pages_fetched":       m.PagesFetched.Load(),
		"fetch_errors":        m.FetchErrors.Load(),
		"fetch_retries":       m.FetchRetries.Load(),
		"listing_pages":       m.ListingPages.Load(),
		"links_collected":     m.LinksCollected.Load(),
		"links_deduped":       m.LinksDeduped.Load(),
		"records_extracted":   m.RecordsExtracted.Load(),
		"extraction_failures": m.ExtractionFailures.Load(),
		"records_dropped":     m.RecordsDropped.Load(),
		"records_stored":      m.RecordsStored.Load(),
		"active_tasks":        m.ActiveTasks.Load(),
		"peak_active_tasks":   m.PeakActiveTasks.Load(),
	}
}
