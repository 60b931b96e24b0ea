package cart

import "github.com/wichananm65/chat-shop-backend/internal/product"

// Line is one product in a user's cart. TotalPrice is Quantity times the
// unit price at the moment the line was last written.
type Line struct {
	ID         int64            `json:"itemId"`
	ChatID     int64            `json:"chatId"`
	ProductID  int64            `json:"productId"`
	Quantity   int              `json:"quantity"`
	TotalPrice int64            `json:"totalPrice"`
	Product    *product.Product `json:"product,omitempty"`
}

// View is the cart as shown to the user.
type View struct {
	Lines      []Line `json:"cartItems"`
	GrandTotal int64  `json:"grandTotal"`
}
