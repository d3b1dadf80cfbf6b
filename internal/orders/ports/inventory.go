package ports

import "context"

// ProductSnapshot carries the product fields order placement needs.
type ProductSnapshot struct {
	ID       int64
	Name     string
	Price    int64
	Stock    int64
	ImageURL string
}

// Inventory is the product collaborator as seen by the order lifecycle:
// price lookup plus stock movement. DecreaseStock fails when the decrement
// would push stock negative; IncreaseStock is unconditional.
type Inventory interface {
	Product(ctx context.Context, productID int64) (*ProductSnapshot, error)
	DecreaseStock(ctx context.Context, productID, quantity int64) error
	IncreaseStock(ctx context.Context, productID, quantity int64) error
}
