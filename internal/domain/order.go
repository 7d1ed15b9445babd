package domain

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
)

const RegionInternational = "International"

type Payment struct {
	Method        string        `json:"method"`
	TransactionID string        `json:"transactionId"`
	Status        PaymentStatus `json:"status"`
}

type OrderItem struct {
	ProductID   ProductID `json:"productId"`
	ProductName string    `json:"productName"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Subtotal    float64   `json:"subtotal"`
}

func NewOrderItem(li LineItem) OrderItem {
	return OrderItem{
		ProductID:   li.ID,
		ProductName: li.Name,
		Price:       li.Price,
		Quantity:    li.Quantity,
		Subtotal:    li.Subtotal(),
	}
}

// Order is built once per checkout attempt and only ever transmitted.
type Order struct {
	OrderID        string      `json:"orderId"`
	Timestamp      string      `json:"timestamp"`
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	ShippingCost   float64     `json:"shippingCost"`
	DeliveryRegion string      `json:"deliveryRegion"`
	Total          float64     `json:"total"`
	Shipping       Address     `json:"shipping"`
	Payment        Payment     `json:"payment"`
}
