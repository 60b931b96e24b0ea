package product

// Product is a catalog entry. Price is in minor currency units.
// Each product belongs to at most one category.
type Product struct {
	ID          int64   `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	PhotoURL    *string `json:"photoUrl,omitempty"`
	CategoryID  int64   `json:"categoryId,omitempty"`
}
