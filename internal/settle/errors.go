package settle

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks rejected user input. The transaction is not recorded.
	ErrValidation = errors.New("invalid transaction")
	// ErrPrecondition marks caller errors such as out-of-range indices.
	ErrPrecondition = errors.New("precondition violated")

	// ErrOverflow is the precondition error for balances that do not fit in an int64.
	ErrOverflow = fmt.Errorf("%w: balance overflows int64", ErrPrecondition)

	ErrUnknownStrategy = errors.New("unknown settlement strategy")
)
