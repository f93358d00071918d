package profile

import (
	"encoding/json"
	"math/rand"
)

// Item is one order line item as the order service expects it.
type Item struct {
	ItemID   string  `json:"item_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// orderPayload is the create-order request body.
type orderPayload struct {
	Items []Item `json:"items"`
}

// Catalog is the fixed set of sample items orders are built from.
var Catalog = []Item{
	{ItemID: "item-1", Quantity: 1, Price: 999.99},
	{ItemID: "item-2", Quantity: 2, Price: 29.99},
	{ItemID: "item-3", Quantity: 1, Price: 79.99},
	{ItemID: "item-4", Quantity: 1, Price: 299.99},
	{ItemID: "item-5", Quantity: 3, Price: 149.99},
}

// ValidOrder builds a valid order payload with 1-3 distinct catalog items.
func ValidOrder(rng *rand.Rand) []byte {
	n := 1 + rng.Intn(3)
	perm := rng.Perm(len(Catalog))

	items := make([]Item, 0, n)
	for _, idx := range perm[:n] {
		items = append(items, Catalog[idx])
	}

	body, _ := json.Marshal(orderPayload{Items: items})
	return body
}

// InvalidOrder is a deliberately malformed payload the fail-fast validator
// must reject with 400.
type InvalidOrder struct {
	// Label distinguishes the variant in metric names, e.g. "empty".
	Label   string
	Payload []byte
}

// InvalidOrders are the malformed payload variants, one per validation rule
// of the order service: non-empty items, positive quantity, positive price,
// non-empty item_id.
var InvalidOrders = []InvalidOrder{
	{
		Label:   "empty",
		Payload: mustMarshal(orderPayload{Items: []Item{}}),
	},
	{
		Label: "invalid quantity",
		Payload: mustMarshal(orderPayload{Items: []Item{
			{ItemID: "item-1", Quantity: 0, Price: 999.99},
		}}),
	},
	{
		Label: "invalid price",
		Payload: mustMarshal(orderPayload{Items: []Item{
			{ItemID: "item-1", Quantity: 1, Price: -10},
		}}),
	},
	{
		Label: "missing item_id",
		Payload: mustMarshal(orderPayload{Items: []Item{
			{ItemID: "", Quantity: 1, Price: 99.99},
		}}),
	},
}

func mustMarshal(p orderPayload) []byte {
	body, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	return body
}
