package workers

import (
	"context"
	"io"
	"log"
	"time"

	"serpavi_estimator/httputil"
	"serpavi_estimator/models"
	"serpavi_estimator/storage"
)

// ConnectivityWorker performs plain-HTTP probes of the target site and
// records reachability history. It never touches the automation engine.
type ConnectivityWorker struct {
	store     *storage.SQLiteStore
	clients   *httputil.Clients
	url       string
	triggerCh chan struct{}
}

func NewConnectivityWorker(store *storage.SQLiteStore, clients *httputil.Clients, url string) *ConnectivityWorker {
	return &ConnectivityWorker{
		store:     store,
		clients:   clients,
		url:       url,
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate probe (used by the cron schedule).
func (w *ConnectivityWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *ConnectivityWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.probeAndRecord(ctx)
		case <-w.triggerCh:
			w.probeAndRecord(ctx)
		}
	}
}

func (w *ConnectivityWorker) probeAndRecord(ctx context.Context) {
	result := w.Probe(ctx)
	if err := w.store.CreateProbeResult(result); err != nil {
		log.Printf("Connectivity: failed to record probe: %v", err)
	}
	if result.OK {
		log.Printf("Connectivity: %s status=%d bytes=%d in %dms", w.url, result.StatusCode, result.BodyBytes, result.DurationMS)
	} else {
		log.Printf("Connectivity: %s unreachable: %s", w.url, result.Error)
	}
}

// Probe fetches the target root once and reports status and body length.
func (w *ConnectivityWorker) Probe(ctx context.Context) *models.ProbeResult {
	result := &models.ProbeResult{CheckedAt: time.Now()}
	started := time.Now()

	req, err := httputil.NewProbeRequest(w.url)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req = req.WithContext(ctx)

	resp, err := w.clients.Probe.Do(req)
	if err != nil {
		result.Error = err.Error()
		result.DurationMS = time.Since(started).Milliseconds()
		return result
	}
	defer resp.Body.Close()

	n, _ := io.Copy(io.Discard, resp.Body)
	result.OK = resp.StatusCode < 500
	result.StatusCode = resp.StatusCode
	result.BodyBytes = n
	result.DurationMS = time.Since(started).Milliseconds()
	return result
}
