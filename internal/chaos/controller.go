// Package chaos toggles fault injection in the collaborating services.
//
// The inventory and payment services expose administrative endpoints that
// enable random failures or artificial slowness. This package is a thin
// client for those endpoints; the fault injection itself lives in the
// remote services.
package chaos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Plan describes the fault-injection setup a scenario wants in place
// before traffic starts.
type Plan struct {
	InventoryFail bool // inventory: ~30% of requests fail
	InventorySlow bool // inventory: 2-5 second delays
	PaymentFail   bool // payment: ~40% of requests fail
	PaymentSlow   bool // payment: 5-10 second delays
}

// Empty reports whether the plan toggles nothing.
func (p Plan) Empty() bool {
	return !p.InventoryFail && !p.InventorySlow && !p.PaymentFail && !p.PaymentSlow
}

func (p Plan) String() string {
	var parts []string
	if p.InventoryFail {
		parts = append(parts, "inventory failures")
	}
	if p.InventorySlow {
		parts = append(parts, "inventory slow mode")
	}
	if p.PaymentFail {
		parts = append(parts, "payment failures")
	}
	if p.PaymentSlow {
		parts = append(parts, "payment slow mode")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Combined is the everything-on plan used by the combined-chaos scenario.
var Combined = Plan{
	InventoryFail: true,
	InventorySlow: true,
	PaymentFail:   true,
	PaymentSlow:   true,
}

// Controller flips chaos toggles on the inventory and payment services.
type Controller struct {
	inventoryURL string
	paymentURL   string
	httpc        *http.Client
	log          *slog.Logger
}

// NewController creates a controller for the two service base URLs.
func NewController(inventoryURL, paymentURL string, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		inventoryURL: strings.TrimRight(inventoryURL, "/"),
		paymentURL:   strings.TrimRight(paymentURL, "/"),
		httpc:        &http.Client{Timeout: 5 * time.Second},
		log:          log,
	}
}

// toggle posts to a chaos endpoint and requires a JSON-decodable body.
func (c *Controller) toggle(ctx context.Context, baseURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build chaos request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("POST %s: read body: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("POST %s: response is not JSON", path)
	}

	msg := gjson.GetBytes(body, "message").String()
	c.log.Info("chaos toggle applied", "path", path, "message", msg)
	return nil
}

// EnableInventoryFail turns on random inventory failures.
func (c *Controller) EnableInventoryFail(ctx context.Context) error {
	return c.toggle(ctx, c.inventoryURL, "/chaos/inventory/enable")
}

// DisableInventoryFail turns off random inventory failures.
func (c *Controller) DisableInventoryFail(ctx context.Context) error {
	return c.toggle(ctx, c.inventoryURL, "/chaos/inventory/disable")
}

// EnableInventorySlow turns on inventory slow mode.
func (c *Controller) EnableInventorySlow(ctx context.Context) error {
	return c.toggle(ctx, c.inventoryURL, "/chaos/inventory/slow")
}

// DisableInventorySlow turns off inventory slow mode.
func (c *Controller) DisableInventorySlow(ctx context.Context) error {
	return c.toggle(ctx, c.inventoryURL, "/chaos/inventory/slow/disable")
}

// EnablePaymentFail turns on random payment failures.
func (c *Controller) EnablePaymentFail(ctx context.Context) error {
	return c.toggle(ctx, c.paymentURL, "/chaos/payment/enable")
}

// DisablePaymentFail turns off random payment failures.
func (c *Controller) DisablePaymentFail(ctx context.Context) error {
	return c.toggle(ctx, c.paymentURL, "/chaos/payment/disable")
}

// EnablePaymentSlow turns on payment slow mode.
func (c *Controller) EnablePaymentSlow(ctx context.Context) error {
	return c.toggle(ctx, c.paymentURL, "/chaos/payment/slow")
}

// DisablePaymentSlow turns off payment slow mode.
func (c *Controller) DisablePaymentSlow(ctx context.Context) error {
	return c.toggle(ctx, c.paymentURL, "/chaos/payment/slow/disable")
}

// Apply enables every toggle the plan asks for.
func (c *Controller) Apply(ctx context.Context, plan Plan) error {
	steps := []struct {
		want bool
		fn   func(context.Context) error
	}{
		{plan.InventoryFail, c.EnableInventoryFail},
		{plan.InventorySlow, c.EnableInventorySlow},
		{plan.PaymentFail, c.EnablePaymentFail},
		{plan.PaymentSlow, c.EnablePaymentSlow},
	}

	for _, s := range steps {
		if !s.want {
			continue
		}
		if err := s.fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DisableAll turns every chaos mode off on both services.
// All endpoints are attempted; the first error is returned.
func (c *Controller) DisableAll(ctx context.Context) error {
	var firstErr error
	for _, fn := range []func(context.Context) error{
		c.DisableInventoryFail,
		c.DisableInventorySlow,
		c.DisablePaymentFail,
		c.DisablePaymentSlow,
	} {
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
