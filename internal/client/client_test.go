package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/order/create" {
			t.Errorf("expected /order/create, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		if run := r.Header.Get("X-Load-Run"); run != "run-123" {
			t.Errorf("expected X-Load-Run run-123, got %q", run)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order_id":"ord-42","status":"completed"}`))
	}))
	defer server.Close()

	c := New(server.URL, Options{RunID: "run-123"})

	resp, err := c.CreateOrder(context.Background(), []byte(`{"items":[{"item_id":"item-1","quantity":1,"price":9.99}]}`))
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Duration <= 0 {
		t.Error("Duration should be positive")
	}
	if got := OrderID(resp.Body); got != "ord-42" {
		t.Errorf("OrderID = %q, want ord-42", got)
	}
}

func TestGetOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/order/ord-1" {
			w.Write([]byte(`{"order_id":"ord-1"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL, Options{})

	resp, err := c.GetOrder(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}

	resp, err = c.GetOrder(context.Background(), "dummy-order-id")
	if err != nil {
		t.Fatalf("GetOrder error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
}

func TestCreateOrderTransportError(t *testing.T) {
	c := New("http://127.0.0.1:1", Options{Timeout: 200 * time.Millisecond})

	resp, err := c.CreateOrder(context.Background(), []byte(`{}`))
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !strings.Contains(err.Error(), "POST /order/create") {
		t.Errorf("error %q should name the method and path", err)
	}
	if resp == nil {
		t.Fatal("Response must be non-nil on error")
	}
	if resp.Duration <= 0 {
		t.Error("Duration should be set on error")
	}
}

func TestOrderID_Missing(t *testing.T) {
	if got := OrderID([]byte(`{"status":"ok"}`)); got != "" {
		t.Errorf("OrderID = %q, want empty", got)
	}
	if got := OrderID([]byte(`not json`)); got != "" {
		t.Errorf("OrderID = %q, want empty", got)
	}
}

func TestParseCircuitStatus(t *testing.T) {
	body := []byte(`{
		"inventory_circuit": {"name": "Inventory", "state": "CLOSED", "value": 0},
		"payment_circuit": {"name": "Payment", "state": "OPEN", "value": 1}
	}`)

	state, err := ParseCircuitStatus(body)
	if err != nil {
		t.Fatalf("ParseCircuitStatus error: %v", err)
	}
	if state.Inventory.State != "CLOSED" || state.Inventory.Name != "Inventory" {
		t.Errorf("inventory = %+v", state.Inventory)
	}
	if state.Payment.State != "OPEN" || state.Payment.Value != 1 {
		t.Errorf("payment = %+v", state.Payment)
	}
}

func TestParseCircuitStatus_Invalid(t *testing.T) {
	cases := map[string][]byte{
		"not json":      []byte(`<html>`),
		"missing field": []byte(`{"inventory_circuit":{"state":"CLOSED"}}`),
		"no state":      []byte(`{"inventory_circuit":{},"payment_circuit":{}}`),
	}
	for name, body := range cases {
		if _, err := ParseCircuitStatus(body); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCircuitStatusEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order/circuit-status" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"inventory_circuit":{"state":"CLOSED"},"payment_circuit":{"state":"HALF_OPEN"}}`))
	}))
	defer server.Close()

	c := New(server.URL+"/", Options{}) // trailing slash must not double up

	resp, err := c.CircuitStatus(context.Background())
	if err != nil {
		t.Fatalf("CircuitStatus error: %v", err)
	}
	state, err := ParseCircuitStatus(resp.Body)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if state.Payment.State != "HALF_OPEN" {
		t.Errorf("payment state = %s", state.Payment.State)
	}
}
