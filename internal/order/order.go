package order

import "time"

// Order is a placed order. TotalAmount and StatusLabel are derived when the
// order is read.
type Order struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"userId"`
	ChatID      int64            `json:"chatId"`
	Number      string           `json:"number"`
	Status      Status           `json:"status"`
	StatusLabel string           `json:"statusLabel"`
	Products    []OrderedProduct `json:"products"`
	TotalAmount int64            `json:"totalAmount"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// OrderedProduct is one product in an order, joined with the live catalog.
type OrderedProduct struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Item is what an order stores per product.
type Item struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type createdEvent struct {
	OrderID int64  `json:"orderId"`
	Number  string `json:"number"`
	ChatID  int64  `json:"chatId"`
	Status  Status `json:"status"`
	Items   []Item `json:"items"`
}

type statusChangedEvent struct {
	OrderID int64  `json:"orderId"`
	Number  string `json:"number"`
	ChatID  int64  `json:"chatId"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
