package profile

import (
	"fmt"
	"time"

	"github.com/ordersim/swarm/internal/chaos"
)

// Builtin returns the built-in scenario profiles, mirroring the scenarios
// the order service's resilience patterns are demonstrated with.
func Builtin() []*Profile {
	return []*Profile{
		{
			Name:        "normal",
			Description: "Normal operation without any chaos",
			Wait:        Between(500*time.Millisecond, 2*time.Second),
			Tasks: []Task{
				{Name: "/order/create", Weight: 10, Run: createOrder("/order/create")},
				{Name: "/order/:orderId", Weight: 2, Run: getOrder()},
				{Name: "/order/circuit-status", Weight: 1, Run: checkCircuits()},
			},
		},
		{
			Name:        "fail-fast",
			Description: "Input validation: malformed orders rejected before any downstream call",
			Wait:        Between(500*time.Millisecond, 1500*time.Millisecond),
			Tasks: []Task{
				{Name: "/order/create [empty]", Weight: 3, Run: invalidOrder(InvalidOrders[0])},
				{Name: "/order/create [invalid quantity]", Weight: 3, Run: invalidOrder(InvalidOrders[1])},
				{Name: "/order/create [invalid price]", Weight: 3, Run: invalidOrder(InvalidOrders[2])},
				{Name: "/order/create [missing item_id]", Weight: 1, Run: invalidOrder(InvalidOrders[3])},
			},
		},
		{
			Name:        "circuit-inventory",
			Description: "Circuit breaker under inventory service failures",
			Wait:        Between(1*time.Second, 3*time.Second),
			Tasks: []Task{
				{Name: "/order/create", Weight: 8, Run: createOrder("/order/create")},
				{Name: "/order/circuit-status", Weight: 2, Run: checkCircuits()},
			},
			Chaos: chaos.Plan{InventoryFail: true},
		},
		{
			Name:        "circuit-payment",
			Description: "Circuit breaker under payment failures and slow responses",
			Wait:        Between(1*time.Second, 3*time.Second),
			Tasks: []Task{
				{Name: "/order/create", Weight: 8, Run: createOrder("/order/create")},
				{Name: "/order/circuit-status", Weight: 2, Run: checkCircuits()},
			},
			Chaos: chaos.Plan{PaymentFail: true, PaymentSlow: true},
		},
		{
			Name:        "bulkhead",
			Description: "Bulkhead limits under maximum request concurrency",
			Wait:        Constant(0),
			Tasks: []Task{
				{Name: "/order/create", Weight: 10, Run: createOrder("/order/create")},
			},
			Chaos: chaos.Plan{PaymentSlow: true},
		},
		{
			Name:        "combined-chaos",
			Description: "All resilience patterns with every failure mode enabled",
			Wait:        Between(500*time.Millisecond, 2*time.Second),
			Tasks: []Task{
				{Name: "/order/create", Weight: 10, Run: createOrder("/order/create")},
				{Name: "/order/:orderId", Weight: 2, Run: getOrder()},
				{Name: "/order/circuit-status", Weight: 1, Run: checkCircuits()},
			},
			Chaos: chaos.Combined,
		},
		{
			Name:        "mixed",
			Description: "Realistic mix of valid and invalid traffic",
			Wait:        Between(500*time.Millisecond, 2*time.Second),
			Tasks: []Task{
				{Name: "/order/create", Weight: 10, Run: createOrder("/order/create")},
				{Name: "/order/create [invalid]", Weight: 2, Run: randomInvalidOrder()},
				{Name: "/order/:orderId", Weight: 3, Run: getOrder()},
				{Name: "/order/circuit-status", Weight: 1, Run: checkCircuits()},
			},
		},
	}
}

// Lookup finds a built-in profile by name.
func Lookup(name string) (*Profile, error) {
	for _, p := range Builtin() {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown profile: %s", name)
}
