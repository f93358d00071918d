package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordersim/swarm/internal/client"
	"github.com/ordersim/swarm/internal/config"
	"github.com/ordersim/swarm/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the order service's circuit-breaker status",
	RunE:  runStatus,
}

var (
	statusConfigFile string
	statusHost       string
)

func init() {
	statusCmd.Flags().StringVarP(&statusConfigFile, "config", "c", "", "path to config file")
	statusCmd.Flags().StringVar(&statusHost, "host", "", "order service base URL (overrides config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(statusConfigFile)
	if err != nil {
		return err
	}
	if statusHost != "" {
		cfg.Targets.Order = statusHost
	}

	c := client.New(cfg.Targets.Order, client.Options{Timeout: 10 * time.Second})

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	resp, err := c.CircuitStatus(ctx)
	if err != nil {
		return fmt.Errorf("fetch circuit status: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("circuit status returned %d", resp.StatusCode)
	}

	state, err := client.ParseCircuitStatus(resp.Body)
	if err != nil {
		return err
	}

	console := output.NewConsole(output.ConsoleConfig{NoColor: flagNoColor})
	console.PrintCircuitStatus(state)
	return nil
}
