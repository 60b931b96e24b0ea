package order

// TotalPolicy computes an order total from its products at their current
// prices. Totals are never stored.
type TotalPolicy func(products []OrderedProduct) int64

// DistinctProductTotal sums one unit of each distinct product, ignoring the
// ordered quantity.
func DistinctProductTotal(products []OrderedProduct) int64 {
	var total int64
	for _, p := range products {
		total += p.Price
	}
	return total
}

// QuantityWeightedTotal sums price times quantity, matching the cart total.
func QuantityWeightedTotal(products []OrderedProduct) int64 {
	var total int64
	for _, p := range products {
		total += p.Price * int64(p.Quantity)
	}
	return total
}
