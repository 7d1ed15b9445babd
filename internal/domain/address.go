package domain

var addressKeys = []string{"name", "email", "phone", "street", "city", "state", "postalCode", "country"}

// Address is the single shipping record kept for the session. Only Country
// takes part in pricing; any other submitted fields ride along in Attributes.
type Address struct {
	Name       string     `json:"name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Street     string     `json:"street,omitempty"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	PostalCode string     `json:"postalCode,omitempty"`
	Country    string     `json:"country,omitempty"`
	Attributes Attributes `json:"-"`
}

func (a Address) MarshalJSON() ([]byte, error) {
	type plain Address
	return encodeFlat(plain(a), a.Attributes)
}

func (a *Address) UnmarshalJSON(data []byte) error {
	type plain Address
	var v plain
	attrs, err := decodeFlat(data, &v, addressKeys)
	if err != nil {
		return err
	}
	*a = Address(v)
	a.Attributes = attrs
	return nil
}
