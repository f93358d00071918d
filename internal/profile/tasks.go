package profile

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/ordersim/swarm/internal/client"
)

// dummyOrderID is requested when a user has no cached orders yet,
// exercising the service's 404 path.
const dummyOrderID = "dummy-order-id"

// createOrder posts a valid order. 200 passes and caches the returned
// order id; 5xx also passes because chaos scenarios expect downstream
// failures to surface; anything else fails.
func createOrder(name string) TaskFunc {
	return func(ctx context.Context, c *client.Client, sess *Session) Result {
		resp, err := c.CreateOrder(ctx, ValidOrder(sess.Rand()))
		r := Result{Request: name, Duration: resp.Duration}
		if err != nil {
			r.Detail = err.Error()
			return r
		}
		r.Bytes = int64(len(resp.Body))

		switch {
		case resp.StatusCode == http.StatusOK:
			if !gjson.ValidBytes(resp.Body) {
				r.Detail = "failed to parse response"
				return r
			}
			sess.RememberOrder(client.OrderID(resp.Body))
			r.Passed = true
		case resp.StatusCode >= 500:
			// Expected during chaos scenarios.
			r.Passed = true
		default:
			r.Detail = fmt.Sprintf("got status %d", resp.StatusCode)
		}
		return r
	}
}

// getOrder retrieves a cached order, or the dummy id when nothing has been
// created yet. A cached id expects 200 (5xx tolerated under chaos); the
// dummy id expects 404.
func getOrder() TaskFunc {
	return func(ctx context.Context, c *client.Client, sess *Session) Result {
		id, cached := sess.PickOrder()
		if !cached {
			id = dummyOrderID
		}

		resp, err := c.GetOrder(ctx, id)
		r := Result{Request: "/order/:orderId", Duration: resp.Duration}
		if err != nil {
			r.Detail = err.Error()
			return r
		}
		r.Bytes = int64(len(resp.Body))

		want := http.StatusOK
		if !cached {
			want = http.StatusNotFound
		}
		switch {
		case resp.StatusCode == want:
			r.Passed = true
		case cached && resp.StatusCode >= 500:
			r.Passed = true
		default:
			r.Detail = fmt.Sprintf("expected %d, got %d", want, resp.StatusCode)
		}
		return r
	}
}

// checkCircuits polls the circuit-breaker status and logs the observed
// states so transitions show up in the run log.
func checkCircuits() TaskFunc {
	return func(ctx context.Context, c *client.Client, sess *Session) Result {
		resp, err := c.CircuitStatus(ctx)
		r := Result{Request: "/order/circuit-status", Duration: resp.Duration}
		if err != nil {
			r.Detail = err.Error()
			return r
		}
		r.Bytes = int64(len(resp.Body))

		if resp.StatusCode != http.StatusOK {
			r.Detail = fmt.Sprintf("got status %d", resp.StatusCode)
			return r
		}

		state, err := client.ParseCircuitStatus(resp.Body)
		if err != nil {
			r.Detail = fmt.Sprintf("failed to parse circuit status: %v", err)
			return r
		}

		sess.Log().Info("circuit status",
			"inventory", state.Inventory.State,
			"payment", state.Payment.State)
		r.Passed = true
		return r
	}
}

// invalidOrder posts a specific malformed payload and expects the
// fail-fast validator to reject it with 400.
func invalidOrder(inv InvalidOrder) TaskFunc {
	name := fmt.Sprintf("/order/create [%s]", inv.Label)
	return func(ctx context.Context, c *client.Client, sess *Session) Result {
		resp, err := c.CreateOrder(ctx, inv.Payload)
		r := Result{Request: name, Duration: resp.Duration}
		if err != nil {
			r.Detail = err.Error()
			return r
		}
		r.Bytes = int64(len(resp.Body))

		if resp.StatusCode == http.StatusBadRequest {
			r.Passed = true
		} else {
			r.Detail = fmt.Sprintf("expected 400, got %d", resp.StatusCode)
		}
		return r
	}
}

// randomInvalidOrder posts a randomly chosen malformed payload under a
// single metric name, for the mixed workload.
func randomInvalidOrder() TaskFunc {
	return func(ctx context.Context, c *client.Client, sess *Session) Result {
		inv := InvalidOrders[sess.Rand().Intn(len(InvalidOrders))]

		resp, err := c.CreateOrder(ctx, inv.Payload)
		r := Result{Request: "/order/create [invalid]", Duration: resp.Duration}
		if err != nil {
			r.Detail = err.Error()
			return r
		}
		r.Bytes = int64(len(resp.Body))

		if resp.StatusCode == http.StatusBadRequest {
			r.Passed = true
		} else {
			r.Detail = fmt.Sprintf("expected 400, got %d", resp.StatusCode)
		}
		return r
	}
}
