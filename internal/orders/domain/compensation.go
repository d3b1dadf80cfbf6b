package domain

import "fmt"

// RestoredItem records one completed stock restoration during an expiry run.
// The ledger of these stands in for a durable saga log: steps are replayed in
// reverse when a later restoration fails.
type RestoredItem struct {
	ProductID int64
	Quantity  int64
}

// CompensationError reports an expiry run that failed after partial progress.
// It is retryable: the order was left PENDING (or reverted to it) and can be
// picked up by the next sweep. Unreversed lists restorations that could not
// be rolled back, leaving stock for those products known-inconsistent until
// an operator or retry job reprocesses the order.
type CompensationError struct {
	OrderID    int64
	Unreversed []RestoredItem
	Err        error
}

func (e *CompensationError) Error() string {
	if len(e.Unreversed) > 0 {
		return fmt.Sprintf("order %d expiry failed with %d unreversed stock restorations: %v",
			e.OrderID, len(e.Unreversed), e.Err)
	}
	return fmt.Sprintf("order %d expiry failed, compensation complete, retry required: %v", e.OrderID, e.Err)
}

func (e *CompensationError) Unwrap() error { return e.Err }

// Retryable marks the failure as safe to reprocess once the cause clears.
func (e *CompensationError) Retryable() bool { return true }
