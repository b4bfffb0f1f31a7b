package settle

import (
	"fmt"
	"math"
)

// Validate checks a candidate transaction without looking at any ledger state.
// Upper index bounds are checked by Balances and by the ledger, since they depend on
// the participant count.
func Validate(lender, borrower int, amount int64) (Transaction, error) {
	if lender < 0 || borrower < 0 {
		return Transaction{}, fmt.Errorf("%w: lender and borrower IDs should be non-negative", ErrValidation)
	}
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: amount should be positive", ErrValidation)
	}
	if lender == borrower {
		return Transaction{}, fmt.Errorf("%w: lender and borrower must differ", ErrValidation)
	}
	return Transaction{Lender: lender, Borrower: borrower, Amount: amount}, nil
}

// Balances folds txs into one net balance per participant: positive means the
// participant is owed money, negative means they owe. A ledger whose balances, or
// whose total owed, would not fit in an int64 is rejected with ErrOverflow.
func Balances(n int, txs []Transaction) ([]int64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative participant count %d", ErrPrecondition, n)
	}
	balance := make([]int64, n)
	for idx, tx := range txs {
		if err := checkIndex(n, tx.Lender); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", idx, err)
		}
		if err := checkIndex(n, tx.Borrower); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", idx, err)
		}
		lent, ok := addInt64(balance[tx.Lender], tx.Amount)
		if !ok {
			return nil, fmt.Errorf("transaction %d, participant %d: %w", idx, tx.Lender, ErrOverflow)
		}
		owed, ok := subInt64(balance[tx.Borrower], tx.Amount)
		if !ok {
			return nil, fmt.Errorf("transaction %d, participant %d: %w", idx, tx.Borrower, ErrOverflow)
		}
		balance[tx.Lender], balance[tx.Borrower] = lent, owed
	}

	// Every plan moves the total owed, so it has to fit as well.
	var total int64
	for _, b := range balance {
		if b <= 0 {
			continue
		}
		var ok bool
		if total, ok = addInt64(total, b); !ok {
			return nil, fmt.Errorf("total owed: %w", ErrOverflow)
		}
	}
	return balance, nil
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func subInt64(a, b int64) (int64, bool) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, false
	}
	return a - b, true
}

// Verify folds the plan entries as debts (the payee is owed what the payer pays) and
// reports whether they reproduce want.
func Verify(want []int64, p *Plan) error {
	got := make([]int64, len(want))
	for _, e := range p.Entries {
		if err := checkIndex(len(want), e.Payer); err != nil {
			return err
		}
		if err := checkIndex(len(want), e.Payee); err != nil {
			return err
		}
		if e.Amount <= 0 {
			return fmt.Errorf("non-positive entry amount %d", e.Amount)
		}
		got[e.Payee] += e.Amount
		got[e.Payer] -= e.Amount
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("participant %d: plan settles %d, balance is %d", i, got[i], want[i])
		}
	}
	return nil
}

func checkIndex(n, idx int) error {
	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrPrecondition, idx, n)
	}
	return nil
}
