package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ordersim/swarm/internal/chaos"
	"github.com/ordersim/swarm/internal/client"
	"github.com/ordersim/swarm/internal/config"
	"github.com/ordersim/swarm/internal/loadgen"
	"github.com/ordersim/swarm/internal/metrics"
	"github.com/ordersim/swarm/internal/output"
	"github.com/ordersim/swarm/internal/profile"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a load test against the order service",
	Long: `Run a scenario profile against the order service.

Fixed load:
  swarm run --profile normal --users 50 --spawn-rate 5 --duration 2m

Ramp shapes:
  swarm run --profile mixed --shape step
  swarm run --profile bulkhead --shape spike --chaos --chaos-reset

With --chaos the profile's suggested fault injection is enabled in the
inventory/payment services before traffic starts; --chaos-reset disables
every chaos mode when the run ends.`,
	RunE: runLoadTest,
}

var (
	runConfigFile string
	runHost       string
	runInventory  string
	runPayment    string
	runProfile    string
	runShape      string
	runUsers      int
	runSpawnRate  float64
	runDuration   time.Duration
	runChaos      bool
	runChaosReset bool
	runJSON       bool
	runQuiet      bool
	runSeed       int64
)

func init() {
	runCmd.Flags().StringVarP(&runConfigFile, "config", "c", "", "path to config file")
	runCmd.Flags().StringVar(&runHost, "host", "", "order service base URL (overrides config)")
	runCmd.Flags().StringVar(&runInventory, "inventory", "", "inventory service base URL (overrides config)")
	runCmd.Flags().StringVar(&runPayment, "payment", "", "payment service base URL (overrides config)")
	runCmd.Flags().StringVarP(&runProfile, "profile", "p", "normal", "traffic profile to run")
	runCmd.Flags().StringVar(&runShape, "shape", "", "ramp shape: step, spike, or a shape from the config file")
	runCmd.Flags().IntVarP(&runUsers, "users", "u", 10, "user count for fixed load (ignored with --shape)")
	runCmd.Flags().Float64Var(&runSpawnRate, "spawn-rate", 2, "users spawned per second for fixed load")
	runCmd.Flags().DurationVarP(&runDuration, "duration", "d", 60*time.Second, "duration for fixed load")
	runCmd.Flags().BoolVar(&runChaos, "chaos", false, "apply the profile's suggested chaos setup before the run")
	runCmd.Flags().BoolVar(&runChaosReset, "chaos-reset", false, "disable all chaos modes after the run")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the summary as JSON")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress progress output")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "RNG seed for reproducible traffic (0 = time-based)")
}

func runLoadTest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigFile)
	if err != nil {
		return err
	}
	applyTargetFlags(cfg)

	prof, err := profile.Lookup(runProfile)
	if err != nil {
		return err
	}
	if w, ok := cfg.Waits[prof.Name]; ok {
		prof.Wait = profile.Between(time.Duration(w.Min), time.Duration(w.Max))
		if err := prof.Validate(); err != nil {
			return fmt.Errorf("wait override for %s: %w", prof.Name, err)
		}
	}

	shape, err := resolveShape(cfg)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := slog.Default().With("run", runID[:8])

	orderClient := client.New(cfg.Targets.Order, client.Options{
		Timeout:             time.Duration(cfg.HTTP.Timeout),
		MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnsPerHost,
		DisableKeepAlives:   cfg.HTTP.DisableKeepAlives,
		RunID:               runID,
	})

	console := output.NewConsole(output.ConsoleConfig{
		Quiet:   runQuiet || runJSON,
		NoColor: flagNoColor,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := chaos.NewController(cfg.Targets.Inventory, cfg.Targets.Payment, log)
	chaosNote := ""
	if runChaos && !prof.Chaos.Empty() {
		chaosNote = prof.Chaos.String()
		if err := controller.Apply(ctx, prof.Chaos); err != nil {
			return fmt.Errorf("apply chaos setup: %w", err)
		}
	}
	if runChaosReset {
		defer func() {
			// The run context may already be cancelled.
			resetCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := controller.DisableAll(resetCtx); err != nil {
				log.Error("failed to disable chaos", "error", err)
			}
		}()
	}

	console.PrintHeader(output.RunInfo{
		Profile:  prof.Name,
		Shape:    shape.Name,
		Host:     orderClient.BaseURL(),
		RunID:    runID,
		Chaos:    chaosNote,
		Duration: shape.Total(),
	})

	eng := metrics.NewEngine()
	runner := loadgen.NewRunner(prof, shape, orderClient, eng, log)
	runner.Seed = runSeed

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var runErr error
wait:
	for {
		select {
		case runErr = <-done:
			break wait
		case <-ticker.C:
			console.Update(eng.Snapshot(), runner.Progress())
		}
	}

	if errors.Is(runErr, context.Canceled) {
		log.Warn("run interrupted, reporting partial results")
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}

	snap := eng.Snapshot()
	requests := eng.RequestStats()
	console.PrintSummary(snap, requests)

	if runJSON {
		return printJSONSummary(runID, prof.Name, shape.Name, orderClient.BaseURL(), snap, requests)
	}
	return nil
}

// applyTargetFlags lets --host style flags win over file and env config.
func applyTargetFlags(cfg *config.Config) {
	if runHost != "" {
		cfg.Targets.Order = runHost
	}
	if runInventory != "" {
		cfg.Targets.Inventory = runInventory
	}
	if runPayment != "" {
		cfg.Targets.Payment = runPayment
	}
}

// resolveShape picks the ramp schedule: a built-in shape, a shape defined
// in the config file, or a single fixed stage from the CLI flags.
func resolveShape(cfg *config.Config) (*loadgen.Shape, error) {
	if runShape == "" {
		if runUsers <= 0 {
			return nil, fmt.Errorf("--users must be > 0")
		}
		if runSpawnRate <= 0 {
			return nil, fmt.Errorf("--spawn-rate must be > 0")
		}
		if runDuration <= 0 {
			return nil, fmt.Errorf("--duration must be > 0")
		}
		return loadgen.Fixed(runUsers, runSpawnRate, runDuration), nil
	}

	if shape, err := loadgen.LookupShape(runShape); err == nil {
		return shape, nil
	}
	return cfg.Shape(runShape)
}

// runSummary is the --json output document.
type runSummary struct {
	RunID    string                          `json:"runId"`
	Profile  string                          `json:"profile"`
	Shape    string                          `json:"shape"`
	Host     string                          `json:"host"`
	Totals   *metrics.Snapshot               `json:"totals"`
	Requests map[string]metrics.LatencyStats `json:"requests"`
}

func printJSONSummary(runID, prof, shape, host string, snap *metrics.Snapshot, requests map[string]metrics.LatencyStats) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(runSummary{
		RunID:    runID,
		Profile:  prof,
		Shape:    shape,
		Host:     host,
		Totals:   snap,
		Requests: requests,
	})
}
