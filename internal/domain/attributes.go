package domain

import (
	"encoding/json"
	"fmt"
)

// Attributes holds record fields that have no dedicated struct field.
// They are written back into the same JSON object they were read from.
type Attributes map[string]json.RawMessage

// ProductID identifies a product. products.json may carry ids as strings or
// numbers; both decode to the textual form and always encode as a string.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or a number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// encodeFlat marshals known and merges extra into the resulting object.
// Keys already produced by known win over extra.
func encodeFlat(known any, extra Attributes) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := fields[k]; ok {
			continue
		}
		fields[k] = v
	}
	return json.Marshal(fields)
}

// decodeFlat unmarshals data into known and returns every key not listed in
// keys as Attributes.
func decodeFlat(data []byte, known any, keys []string) (Attributes, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, k := range keys {
		delete(fields, k)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return Attributes(fields), nil
}
