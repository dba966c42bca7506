package costbasis

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidTransaction reports a malformed or out-of-domain transaction.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrDivideByZero reports a buy of zero quantity, its unit cost is undefined.
	ErrDivideByZero = errors.New("divide by zero")
	// ErrInsufficientInventory reports a sale larger than the open lots.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrInvalidPrice reports a non-positive valuation price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidConfig reports an unusable engine configuration.
	ErrInvalidConfig = errors.New("invalid config")
)

// InvalidTransactionError is returned when a transaction is rejected.
// It matches ErrInvalidTransaction with errors.Is.
type InvalidTransactionError struct {
	ID     string
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidTransaction, e.Reason)
	}
	return fmt.Sprintf("%v %q: %s", ErrInvalidTransaction, e.ID, e.Reason)
}

func (e *InvalidTransactionError) Is(target error) bool { return target == ErrInvalidTransaction }

func invalid(id, format string, args ...any) error {
	return &InvalidTransactionError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

// InsufficientInventoryError is returned when a sale cannot be fully matched
// against open lots. Shortfall is the unmatched quantity.
// It matches ErrInsufficientInventory with errors.Is.
type InsufficientInventoryError struct {
	Asset     string
	TxID      string
	Shortfall Quantity
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("%v: sell %q of %s is short of %s", ErrInsufficientInventory, e.TxID, e.Asset, e.Shortfall)
}

func (e *InsufficientInventoryError) Is(target error) bool { return target == ErrInsufficientInventory }
