package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/ordersim/swarm/internal/client"
	"github.com/ordersim/swarm/internal/metrics"
)

// RunInfo is the header block printed before a run starts.
type RunInfo struct {
	Profile  string
	Shape    string
	Host     string
	RunID    string
	Chaos    string
	Duration time.Duration
}

// Console renders live progress and the final summary.
type Console struct {
	w      io.Writer
	colors *ColorScheme
	isTTY  bool
	quiet  bool

	liveLine bool // a live progress line is on screen
}

// ConsoleConfig configures a Console.
type ConsoleConfig struct {
	Writer  io.Writer
	Quiet   bool
	NoColor bool

	// ForceTTY enables live updates regardless of terminal detection.
	ForceTTY bool
}

// NewConsole creates a console writer.
func NewConsole(cfg ConsoleConfig) *Console {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	tty := cfg.ForceTTY
	if f, ok := cfg.Writer.(*os.File); ok && !tty {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	colors := DefaultColorScheme()
	if cfg.NoColor || !tty {
		colors = NoColorScheme()
	}

	return &Console{
		w:      cfg.Writer,
		colors: colors,
		isTTY:  tty,
		quiet:  cfg.Quiet,
	}
}

// PrintHeader prints the run header.
func (c *Console) PrintHeader(info RunInfo) {
	if c.quiet {
		return
	}
	c.colors.Title.Fprintf(c.w, "swarm load test\n")
	fmt.Fprintf(c.w, "  %s %s\n", c.colors.Label.Sprint("profile:"), info.Profile)
	fmt.Fprintf(c.w, "  %s %s (%s)\n", c.colors.Label.Sprint("shape:"), info.Shape, info.Duration)
	fmt.Fprintf(c.w, "  %s %s\n", c.colors.Label.Sprint("host:"), info.Host)
	fmt.Fprintf(c.w, "  %s %s\n", c.colors.Label.Sprint("run id:"), info.RunID)
	if info.Chaos != "" {
		fmt.Fprintf(c.w, "  %s %s\n", c.colors.Label.Sprint("chaos:"), info.Chaos)
	}
	fmt.Fprintln(c.w)
}

// Update rewrites the live progress line. Outside a TTY it prints a plain
// periodic line instead.
func (c *Console) Update(snap *metrics.Snapshot, progress float64) {
	if c.quiet {
		return
	}

	line := fmt.Sprintf("[%3.0f%%] users=%d reqs=%d fails=%d (%.1f%%) rps=%.1f p95=%s",
		progress*100,
		snap.ActiveUsers,
		snap.TotalRequests,
		snap.FailedRequests,
		snap.FailRate*100,
		snap.RPS,
		roundDuration(snap.Latency.P95),
	)

	if c.isTTY {
		fmt.Fprintf(c.w, "\r\033[2K%s", line)
		c.liveLine = true
	} else {
		fmt.Fprintln(c.w, line)
	}
}

// PrintSummary prints the final per-request table and totals.
func (c *Console) PrintSummary(snap *metrics.Snapshot, requests map[string]metrics.LatencyStats) {
	if c.liveLine {
		fmt.Fprintln(c.w)
		c.liveLine = false
	}
	if c.quiet {
		return
	}

	fmt.Fprintln(c.w)
	c.colors.Title.Fprintln(c.w, "summary")

	names := make([]string, 0, len(requests))
	width := len("TOTAL")
	for name := range requests {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)

	header := fmt.Sprintf("  %-*s %8s %8s %8s %8s %8s %8s", width,
		"request", "count", "fails", "p50", "p90", "p95", "p99")
	fmt.Fprintln(c.w, c.colors.Label.Sprint(header))

	for _, name := range names {
		st := requests[name]
		failCol := c.colors.Value
		if st.Failed > 0 {
			failCol = c.colors.Fail
		}
		fmt.Fprintf(c.w, "  %-*s %8d %s %8s %8s %8s %8s\n", width,
			name,
			st.Count,
			failCol.Sprintf("%8d", st.Failed),
			roundDuration(st.P50),
			roundDuration(st.P90),
			roundDuration(st.P95),
			roundDuration(st.P99),
		)
	}

	fmt.Fprintf(c.w, "  %-*s %8d %8d %8s %8s %8s %8s\n", width,
		"TOTAL",
		snap.TotalRequests,
		snap.FailedRequests,
		roundDuration(snap.Latency.P50),
		roundDuration(snap.Latency.P90),
		roundDuration(snap.Latency.P95),
		roundDuration(snap.Latency.P99),
	)

	fmt.Fprintln(c.w)
	verdict := c.colors.Pass.Sprint("all expectations met")
	if snap.FailedRequests > 0 {
		verdict = c.colors.Fail.Sprintf("%d requests failed expectations (%.2f%%)",
			snap.FailedRequests, snap.FailRate*100)
	}
	fmt.Fprintf(c.w, "  %s in %s (%.1f req/s)\n",
		verdict, roundDuration(snap.Elapsed), snap.RPS)
}

// PrintCircuitStatus pretty-prints the circuit-breaker states.
func (c *Console) PrintCircuitStatus(state client.CircuitState) {
	c.colors.Title.Fprintln(c.w, "circuit breakers")
	for _, b := range []client.BreakerState{state.Inventory, state.Payment} {
		name := b.Name
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(c.w, "  %-10s %s\n",
			name, c.colors.breakerColor(b.State).Sprint(b.State))
	}
}

// roundDuration trims durations to a readable precision.
func roundDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(100 * time.Microsecond).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}
