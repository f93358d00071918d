// Package metrics collects request timings and outcomes for a load run.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Engine aggregates latencies and outcomes using HDR histograms.
//
// Counters use atomic operations; histograms are guarded by mutexes
// because hdrhistogram's RecordValue is not safe for concurrent use.
type Engine struct {
	// Overall latency histogram.
	// Range: 1 microsecond to 1 hour, 3 significant figures.
	latencyHist   *hdrhistogram.Histogram
	latencyHistMu sync.Mutex

	// Per-request-name histograms, keyed by the metric name the profile
	// assigns to each task ("/order/create", "/order/create [empty]", ...).
	requestHists   map[string]*requestHist
	requestHistsMu sync.RWMutex

	totalRequests  atomic.Int64
	passedRequests atomic.Int64
	failedRequests atomic.Int64
	totalBytes     atomic.Int64

	activeUsers atomic.Int32

	startTime time.Time
}

type requestHist struct {
	hist   *hdrhistogram.Histogram
	passed int64
	failed int64
}

const (
	histMin     = 1
	histMax     = 3600000000 // 1 hour in microseconds
	histSigFigs = 3
)

// NewEngine creates an engine ready to record.
func NewEngine() *Engine {
	return &Engine{
		latencyHist:  hdrhistogram.New(histMin, histMax, histSigFigs),
		requestHists: make(map[string]*requestHist),
		startTime:    time.Now(),
	}
}

// Record records one completed request.
//
// name is the metric name the request was grouped under, passed is the
// test-assertion verdict (expected status observed), and bytes is the
// response body size.
func (e *Engine) Record(name string, duration time.Duration, passed bool, bytes int64) {
	micros := duration.Microseconds()
	if micros < histMin {
		micros = histMin
	}
	if micros > histMax {
		micros = histMax
	}

	e.latencyHistMu.Lock()
	e.latencyHist.RecordValue(micros)
	e.latencyHistMu.Unlock()

	if name != "" {
		e.requestHistsMu.Lock()
		rh, ok := e.requestHists[name]
		if !ok {
			rh = &requestHist{hist: hdrhistogram.New(histMin, histMax, histSigFigs)}
			e.requestHists[name] = rh
		}
		rh.hist.RecordValue(micros)
		if passed {
			rh.passed++
		} else {
			rh.failed++
		}
		e.requestHistsMu.Unlock()
	}

	e.totalRequests.Add(1)
	e.totalBytes.Add(bytes)
	if passed {
		e.passedRequests.Add(1)
	} else {
		e.failedRequests.Add(1)
	}
}

// SetActiveUsers updates the active simulated-user gauge.
func (e *Engine) SetActiveUsers(n int) {
	e.activeUsers.Store(int32(n))
}

// ActiveUsers returns the current active simulated-user count.
func (e *Engine) ActiveUsers() int {
	return int(e.activeUsers.Load())
}

// Snapshot is a point-in-time view of the run.
type Snapshot struct {
	TotalRequests  int64         `json:"totalRequests"`
	PassedRequests int64         `json:"passedRequests"`
	FailedRequests int64         `json:"failedRequests"`
	TotalBytes     int64         `json:"totalBytes"`
	Latency        LatencyStats  `json:"latency"`
	RPS            float64       `json:"rps"`
	FailRate       float64       `json:"failRate"`
	ActiveUsers    int           `json:"activeUsers"`
	Elapsed        time.Duration `json:"elapsed"`
	StartTime      time.Time     `json:"startTime"`
}

// LatencyStats contains latency percentiles for a histogram.
type LatencyStats struct {
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	P50    time.Duration `json:"p50"`
	P90    time.Duration `json:"p90"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Count  int64         `json:"count"`
	Passed int64         `json:"passed"`
	Failed int64         `json:"failed"`
}

// Snapshot returns the current aggregate metrics.
func (e *Engine) Snapshot() *Snapshot {
	e.latencyHistMu.Lock()
	latency := statsFromHist(e.latencyHist)
	e.latencyHistMu.Unlock()

	total := e.totalRequests.Load()
	failed := e.failedRequests.Load()
	latency.Passed = e.passedRequests.Load()
	latency.Failed = failed

	elapsed := time.Since(e.startTime)
	rps := 0.0
	if elapsed.Seconds() > 0 {
		rps = float64(total) / elapsed.Seconds()
	}
	failRate := 0.0
	if total > 0 {
		failRate = float64(failed) / float64(total)
	}

	return &Snapshot{
		TotalRequests:  total,
		PassedRequests: e.passedRequests.Load(),
		FailedRequests: failed,
		TotalBytes:     e.totalBytes.Load(),
		Latency:        latency,
		RPS:            rps,
		FailRate:       failRate,
		ActiveUsers:    e.ActiveUsers(),
		Elapsed:        elapsed,
		StartTime:      e.startTime,
	}
}

// RequestStats returns per-request-name statistics.
func (e *Engine) RequestStats() map[string]LatencyStats {
	e.requestHistsMu.RLock()
	defer e.requestHistsMu.RUnlock()

	result := make(map[string]LatencyStats, len(e.requestHists))
	for name, rh := range e.requestHists {
		stats := statsFromHist(rh.hist)
		stats.Passed = rh.passed
		stats.Failed = rh.failed
		result[name] = stats
	}
	return result
}

func statsFromHist(h *hdrhistogram.Histogram) LatencyStats {
	return LatencyStats{
		Min:   time.Duration(h.Min()) * time.Microsecond,
		Max:   time.Duration(h.Max()) * time.Microsecond,
		Mean:  time.Duration(h.Mean()) * time.Microsecond,
		P50:   time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P90:   time.Duration(h.ValueAtQuantile(90)) * time.Microsecond,
		P95:   time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
		Count: h.TotalCount(),
	}
}
