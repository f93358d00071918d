package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ordersim/swarm/internal/client"
	"github.com/ordersim/swarm/internal/metrics"
)

func newTestConsole(buf *bytes.Buffer) *Console {
	return NewConsole(ConsoleConfig{Writer: buf, NoColor: true})
}

func sampleSnapshot() *metrics.Snapshot {
	return &metrics.Snapshot{
		TotalRequests:  120,
		PassedRequests: 118,
		FailedRequests: 2,
		FailRate:       2.0 / 120.0,
		RPS:            12.5,
		ActiveUsers:    10,
		Elapsed:        9600 * time.Millisecond,
		Latency: metrics.LatencyStats{
			Count: 120,
			P50:   12 * time.Millisecond,
			P90:   40 * time.Millisecond,
			P95:   55 * time.Millisecond,
			P99:   90 * time.Millisecond,
		},
	}
}

func TestPrintHeader(t *testing.T) {
	var buf bytes.Buffer
	c := newTestConsole(&buf)

	c.PrintHeader(RunInfo{
		Profile:  "normal",
		Shape:    "fixed",
		Host:     "http://localhost:8080",
		RunID:    "abc123",
		Chaos:    "inventory failures",
		Duration: time.Minute,
	})

	out := buf.String()
	for _, want := range []string{"normal", "fixed", "http://localhost:8080", "abc123", "inventory failures", "1m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
}

func TestPrintHeaderQuiet(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(ConsoleConfig{Writer: &buf, Quiet: true})

	c.PrintHeader(RunInfo{Profile: "normal"})
	c.Update(sampleSnapshot(), 0.5)
	c.PrintSummary(sampleSnapshot(), nil)

	if buf.Len() != 0 {
		t.Errorf("quiet console wrote output: %q", buf.String())
	}
}

func TestUpdatePlainLine(t *testing.T) {
	var buf bytes.Buffer
	c := newTestConsole(&buf) // bytes.Buffer is never a TTY

	c.Update(sampleSnapshot(), 0.5)

	out := buf.String()
	if strings.Contains(out, "\r") {
		t.Error("non-TTY update must not emit carriage returns")
	}
	for _, want := range []string{"50%", "users=10", "reqs=120", "fails=2", "rps=12.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("update line missing %q: %q", want, out)
		}
	}
}

func TestUpdateTTYRewritesLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(ConsoleConfig{Writer: &buf, NoColor: true, ForceTTY: true})

	c.Update(sampleSnapshot(), 0.25)
	if !strings.HasPrefix(buf.String(), "\r") {
		t.Error("TTY update should rewrite the current line")
	}

	buf.Reset()
	c.PrintSummary(sampleSnapshot(), nil)
	if !strings.HasPrefix(buf.String(), "\n") {
		t.Error("summary must terminate the live line first")
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	c := newTestConsole(&buf)

	requests := map[string]metrics.LatencyStats{
		"/order/create": {Count: 100, Passed: 98, Failed: 2,
			P50: 10 * time.Millisecond, P95: 50 * time.Millisecond},
		"/order/circuit-status": {Count: 20, Passed: 20,
			P50: 2 * time.Millisecond, P95: 4 * time.Millisecond},
	}

	c.PrintSummary(sampleSnapshot(), requests)

	out := buf.String()
	for _, want := range []string{"/order/create", "/order/circuit-status", "TOTAL", "120", "2 requests failed expectations"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	// Rows come out sorted by request name.
	if strings.Index(out, "/order/circuit-status") > strings.Index(out, "/order/create") {
		t.Error("summary rows are not sorted")
	}
}

func TestPrintSummaryAllPassed(t *testing.T) {
	var buf bytes.Buffer
	c := newTestConsole(&buf)

	snap := sampleSnapshot()
	snap.FailedRequests = 0
	snap.PassedRequests = snap.TotalRequests
	snap.FailRate = 0

	c.PrintSummary(snap, nil)
	if !strings.Contains(buf.String(), "all expectations met") {
		t.Errorf("missing pass verdict:\n%s", buf.String())
	}
}

func TestPrintCircuitStatus(t *testing.T) {
	var buf bytes.Buffer
	c := newTestConsole(&buf)

	c.PrintCircuitStatus(client.CircuitState{
		Inventory: client.BreakerState{Name: "Inventory", State: "CLOSED"},
		Payment:   client.BreakerState{State: "OPEN"},
	})

	out := buf.String()
	for _, want := range []string{"Inventory", "CLOSED", "unknown", "OPEN"} {
		if !strings.Contains(out, want) {
			t.Errorf("circuit status missing %q:\n%s", want, out)
		}
	}
}

func TestRoundDuration(t *testing.T) {
	cases := map[time.Duration]string{
		1234 * time.Millisecond: "1.23s",
		12345 * time.Microsecond: "12.3ms",
		123 * time.Microsecond:  "123µs",
	}
	for d, want := range cases {
		if got := roundDuration(d); got != want {
			t.Errorf("roundDuration(%s) = %q, want %q", d, got, want)
		}
	}
}
