package domain

// Order представляет заказ, пришедший из пайплайна оформления заказов.
// Модуль только читает его.
type Order struct {
	ID          string          `json:"_id"`
	ReferenceID string          `json:"referenceId"`
	AccountID   string          `json:"accountId"`
	ShopID      string          `json:"shopId"`
	Email       string          `json:"email"`
	Shipping    []ShipmentGroup `json:"shipping"`
	Payments    []Payment       `json:"payments"`
}

// ShipmentGroup группа доставки заказа.
type ShipmentGroup struct {
	Address Address `json:"address"`
	Items   []Item  `json:"items"`
}

// Address адрес доставки.
type Address struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

// Item позиция заказа.
type Item struct {
	Quantity int    `json:"quantity"`
	Title    string `json:"title"`
}

// Payment платеж по заказу.
type Payment struct {
	Amount float64 `json:"amount"`
}

// Shop магазин, которому принадлежит заказ.
type Shop struct {
	ID   string
	Slug string
}
