package cart

import (
	"context"
	"fmt"
	"math"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

var (
	ErrItemNotFound     = fmt.Errorf("%w: cart item not found", apperr.ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("%w: product not found", apperr.ErrNotFound)
	ErrInvalidQuantity  = fmt.Errorf("%w: quantity must be positive", apperr.ErrValidation)
	ErrQuantityTooLarge = fmt.Errorf("%w: quantity or line total too large", apperr.ErrValidation)
)

// MaxQuantity bounds the quantity of a single cart line.
const MaxQuantity = math.MaxInt32

// LineTotal returns qty*unitPrice for a line. qty is the line's resulting
// quantity, so callers merging an add pass the sum.
func LineTotal(qty int64, unitPrice int64) (int64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if qty > MaxQuantity {
		return 0, ErrQuantityTooLarge
	}
	if unitPrice > 0 && qty > math.MaxInt64/unitPrice {
		return 0, ErrQuantityTooLarge
	}
	return qty * unitPrice, nil
}

// Repository stores cart lines keyed by chat id. Lines are unique per
// (chat id, product id); every method scopes lineID to chatID so a user can
// never touch another user's line.
type Repository interface {
	GetLine(ctx context.Context, chatID, lineID int64) (Line, error)
	// AddItem merges qty into the existing line for productID or creates one.
	// The stored total is recomputed from unitPrice either way. A merged
	// quantity above MaxQuantity fails with ErrQuantityTooLarge.
	AddItem(ctx context.Context, chatID, productID int64, qty int, unitPrice int64) (Line, error)
	SetQuantity(ctx context.Context, chatID, lineID int64, qty int, unitPrice int64) (Line, error)
	RemoveItem(ctx context.Context, chatID, lineID int64) error
	// ListLines returns the lines ordered by line id.
	ListLines(ctx context.Context, chatID int64) ([]Line, error)
	Clear(ctx context.Context, chatID int64) error
}
