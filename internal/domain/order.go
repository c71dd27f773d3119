package domain

import "github.com/shopspring/decimal"

// Amount is a monetary value as received from the marketplace API.
// Raw keeps the original text so non-numeric values can still be displayed.
type Amount struct {
	Value decimal.Decimal `json:"value"`
	Raw   string          `json:"raw"`
	State AmountState     `json:"state"`
}

// AmountState tells whether an Amount was present and parseable.
type AmountState int

const (
	AmountMissing AmountState = iota
	AmountValid
	AmountInvalid
)

// Valid reports whether the amount holds a usable number.
func (a Amount) Valid() bool {
	return a.State == AmountValid
}

// Order is a read-only order record from the order history.
type Order struct {
	ID             string        `json:"id"`
	CreatedAt      string        `json:"createdAt"`
	Total          Amount        `json:"total"`
	Status         string        `json:"status"`
	GlobalDiscount Amount        `json:"globalDiscount"`
	Details        []OrderDetail `json:"details"`
}

// OrderDetail is one product line of an order.
type OrderDetail struct {
	ID           string `json:"id"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage"`
	ProductPrice Amount `json:"productPrice"`
	Quantity     int    `json:"quantity"`
	Subtotal     Amount `json:"subtotal"`
	UnitDiscount Amount `json:"unitDiscount"`
}

// PaymentInstructions describe how to pay for a created order. They are
// generated by the marketplace and displayed untouched.
type PaymentInstructions struct {
	Asset   string `json:"asset"`
	Amount  string `json:"usdt_amount"`
	Network string `json:"network"`
	Address string `json:"usdt_address"`
	Note    string `json:"note,omitempty"`
}

// OrderConfirmation is the result of creating an order.
type OrderConfirmation struct {
	OrderID      string               `json:"order_id,omitempty"`
	Total        string               `json:"total,omitempty"`
	Instructions *PaymentInstructions `json:"payment_instructions,omitempty"`
}
