package domain

import "maps"

var productKeys = []string{"id", "name", "price"}

type Product struct {
	ID         ProductID  `json:"id"`
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	Attributes Attributes `json:"-"`
}

// Catalog is the products.json document.
type Catalog struct {
	Products []Product `json:"products"`
}

// Find returns the first product with the given id.
func (c *Catalog) Find(id ProductID) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			p := c.Products[i]
			p.Attributes = maps.Clone(p.Attributes)
			return &p, true
		}
	}
	return nil, false
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return encodeFlat(plain(p), p.Attributes)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var v plain
	attrs, err := decodeFlat(data, &v, productKeys)
	if err != nil {
		return err
	}
	*p = Product(v)
	p.Attributes = attrs
	return nil
}
