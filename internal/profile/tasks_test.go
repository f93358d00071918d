package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ordersim/swarm/internal/client"
)

// orderService is a minimal stand-in for the order service: it validates
// payloads the same way the real fail-fast validator does and serves
// previously created orders.
func orderService(t *testing.T) *httptest.Server {
	t.Helper()
	var created []string

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/order/create":
			var body struct {
				Items []Item `json:"items"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Items) == 0 {
				http.Error(w, `{"error":"items required"}`, http.StatusBadRequest)
				return
			}
			for _, it := range body.Items {
				if it.ItemID == "" || it.Quantity <= 0 || it.Price <= 0 {
					http.Error(w, `{"error":"invalid item"}`, http.StatusBadRequest)
					return
				}
			}
			id := "ord-xyz"
			created = append(created, id)
			w.Write([]byte(`{"order_id":"` + id + `","status":"completed"}`))

		case r.Method == http.MethodGet && r.URL.Path == "/order/circuit-status":
			w.Write([]byte(`{"inventory_circuit":{"name":"Inventory","state":"CLOSED","value":0},"payment_circuit":{"name":"Payment","state":"CLOSED","value":0}}`))

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/order/"):
			id := strings.TrimPrefix(r.URL.Path, "/order/")
			for _, c := range created {
				if c == id {
					w.Write([]byte(`{"order_id":"` + id + `"}`))
					return
				}
			}
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)

		default:
			http.Error(w, "bad route", http.StatusTeapot)
		}
	}))
}

func TestCreateOrderTask(t *testing.T) {
	server := orderService(t)
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	sess := NewSession(1, testLogger())

	r := createOrder("/order/create")(context.Background(), c, sess)
	if !r.Passed {
		t.Fatalf("createOrder failed: %s", r.Detail)
	}
	if r.Request != "/order/create" {
		t.Errorf("Request = %q", r.Request)
	}
	if sess.CachedOrders() != 1 {
		t.Errorf("CachedOrders = %d, want 1", sess.CachedOrders())
	}
}

func TestCreateOrderTask_ServerErrorTolerated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"inventory unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	sess := NewSession(1, testLogger())

	r := createOrder("/order/create")(context.Background(), c, sess)
	if !r.Passed {
		t.Errorf("5xx during chaos should pass, got detail %q", r.Detail)
	}
	if sess.CachedOrders() != 0 {
		t.Error("failed creation must not cache an order id")
	}
}

func TestCreateOrderTask_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	r := createOrder("/order/create")(context.Background(), c, NewSession(1, testLogger()))
	if r.Passed {
		t.Error("418 must fail the expectation")
	}
	if r.Detail == "" {
		t.Error("failed result must carry a detail")
	}
}

func TestCreateOrderTask_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	r := createOrder("/order/create")(context.Background(), c, NewSession(1, testLogger()))
	if r.Passed {
		t.Error("non-JSON 200 body must fail")
	}
	if r.Detail != "failed to parse response" {
		t.Errorf("Detail = %q", r.Detail)
	}
}

func TestGetOrderTask_DummyExpects404(t *testing.T) {
	server := orderService(t)
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	sess := NewSession(1, testLogger())

	r := getOrder()(context.Background(), c, sess)
	if !r.Passed {
		t.Errorf("dummy order 404 should pass, got detail %q", r.Detail)
	}
	if r.Request != "/order/:orderId" {
		t.Errorf("Request = %q", r.Request)
	}
}

func TestGetOrderTask_CachedExpects200(t *testing.T) {
	server := orderService(t)
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	sess := NewSession(1, testLogger())

	if r := createOrder("/order/create")(context.Background(), c, sess); !r.Passed {
		t.Fatalf("setup create failed: %s", r.Detail)
	}
	if r := getOrder()(context.Background(), c, sess); !r.Passed {
		t.Errorf("cached order fetch should pass, got detail %q", r.Detail)
	}
}

func TestCheckCircuitsTask(t *testing.T) {
	server := orderService(t)
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	r := checkCircuits()(context.Background(), c, NewSession(1, testLogger()))
	if !r.Passed {
		t.Errorf("circuit status check should pass, got detail %q", r.Detail)
	}
}

func TestInvalidOrderTasks(t *testing.T) {
	server := orderService(t)
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	sess := NewSession(1, testLogger())

	for _, inv := range InvalidOrders {
		r := invalidOrder(inv)(context.Background(), c, sess)
		if !r.Passed {
			t.Errorf("%s: expected 400 pass, got detail %q", inv.Label, r.Detail)
		}
		want := "/order/create [" + inv.Label + "]"
		if r.Request != want {
			t.Errorf("%s: Request = %q, want %q", inv.Label, r.Request, want)
		}
	}
}

func TestInvalidOrderTask_AcceptedIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"order_id":"ord-1"}`)) // validator missing in action
	}))
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	r := invalidOrder(InvalidOrders[0])(context.Background(), c, NewSession(1, testLogger()))
	if r.Passed {
		t.Error("a 200 for a malformed payload must fail the expectation")
	}
}

func TestRandomInvalidOrderTask(t *testing.T) {
	server := orderService(t)
	defer server.Close()

	c := client.New(server.URL, client.Options{})
	sess := NewSession(1, testLogger())

	for i := 0; i < 10; i++ {
		r := randomInvalidOrder()(context.Background(), c, sess)
		if !r.Passed {
			t.Fatalf("randomInvalidOrder failed: %s", r.Detail)
		}
		if r.Request != "/order/create [invalid]" {
			t.Errorf("Request = %q", r.Request)
		}
	}
}
