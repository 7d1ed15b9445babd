package domain

import (
	"encoding/json"
	"maps"
)

var lineItemKeys = []string{"id", "name", "price", "quantity"}

// LineItem is a product in the cart together with its quantity.
// It is stored as the product object plus a "quantity" field.
type LineItem struct {
	ID         ProductID  `json:"id"`
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	Quantity   int        `json:"quantity"`
	Attributes Attributes `json:"-"`
}

func NewLineItem(p Product, quantity int) LineItem {
	return LineItem{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Quantity:   quantity,
		Attributes: maps.Clone(p.Attributes),
	}
}

func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return encodeFlat(plain(li), li.Attributes)
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	type plain LineItem
	var v plain
	attrs, err := decodeFlat(data, &v, lineItemKeys)
	if err != nil {
		return err
	}
	*li = LineItem(v)
	li.Attributes = attrs
	return nil
}

// Cart is an ordered list of line items; insertion order is display order
// and no two items share an id. It is persisted as a JSON array.
type Cart struct {
	Items []LineItem
}

// Total is the raw sum of price*quantity over all items.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Index returns the position of the item with the given id, or -1.
func (c Cart) Index(id ProductID) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy safe to hand out to callers.
func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]LineItem, len(c.Items))
	for i, item := range c.Items {
		item.Attributes = maps.Clone(item.Attributes)
		items[i] = item
	}
	return Cart{Items: items}
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.Items = items
	return nil
}
