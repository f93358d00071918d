package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordersim/swarm/internal/chaos"
	"github.com/ordersim/swarm/internal/config"
)

var chaosCmd = &cobra.Command{
	Use:   "chaos <inventory|payment|all> <action>",
	Short: "Toggle fault injection in the collaborating services",
	Long: `Flip chaos-injection flags in the inventory and payment services.

Per-service actions: enable, disable, slow, slow-off
  swarm chaos inventory enable
  swarm chaos payment slow

All services at once:
  swarm chaos all on     # every failure and slow mode (combined chaos)
  swarm chaos all off    # disable everything`,
	Args: cobra.ExactArgs(2),
	RunE: runChaosToggle,
}

var chaosConfigFile string

func init() {
	chaosCmd.Flags().StringVarP(&chaosConfigFile, "config", "c", "", "path to config file")
}

func runChaosToggle(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(chaosConfigFile)
	if err != nil {
		return err
	}

	controller := chaos.NewController(cfg.Targets.Inventory, cfg.Targets.Payment, slog.Default())

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	service, action := args[0], args[1]

	if service == "all" {
		switch action {
		case "on":
			return controller.Apply(ctx, chaos.Combined)
		case "off":
			return controller.DisableAll(ctx)
		default:
			return fmt.Errorf("unknown action for all: %s (want on or off)", action)
		}
	}

	type toggles struct {
		enable, disable, slow, slowOff func(context.Context) error
	}
	var t toggles
	switch service {
	case "inventory":
		t = toggles{
			enable:  controller.EnableInventoryFail,
			disable: controller.DisableInventoryFail,
			slow:    controller.EnableInventorySlow,
			slowOff: controller.DisableInventorySlow,
		}
	case "payment":
		t = toggles{
			enable:  controller.EnablePaymentFail,
			disable: controller.DisablePaymentFail,
			slow:    controller.EnablePaymentSlow,
			slowOff: controller.DisablePaymentSlow,
		}
	default:
		return fmt.Errorf("unknown service: %s (want inventory, payment, or all)", service)
	}

	switch action {
	case "enable":
		return t.enable(ctx)
	case "disable":
		return t.disable(ctx)
	case "slow":
		return t.slow(ctx)
	case "slow-off":
		return t.slowOff(ctx)
	default:
		return fmt.Errorf("unknown action: %s (want enable, disable, slow, or slow-off)", action)
	}
}
