package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/susu3304/cashflow/internal/settle"
)

var (
	ErrNoParticipants = errors.New("at least one participant is required")
	ErrNothingToUndo  = errors.New("no transactions to undo")
)

// Book is one settlement session: a fixed participant list, the recorded transactions
// and the snapshots needed to undo them. A Book is not safe for concurrent use.
type Book struct {
	participants []settle.Participant
	transactions []settle.Transaction
	history      [][]settle.Transaction
}

type NamedEntry struct {
	Payer  string `json:"payer"`
	Payee  string `json:"payee"`
	Amount int64  `json:"amount"`
}

type Settlement struct {
	Plan    *settle.Plan
	Entries []NamedEntry
}

func NewBook(names []string) (*Book, error) {
	if len(names) == 0 {
		return nil, ErrNoParticipants
	}
	b := &Book{participants: make([]settle.Participant, len(names))}
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("User %d", i)
		}
		b.participants[i] = settle.Participant{Index: i, Name: name}
	}
	return b, nil
}

func (b *Book) Participants() []settle.Participant {
	return append([]settle.Participant(nil), b.participants...)
}

// Name returns the display name for a participant index.
func (b *Book) Name(idx int) string {
	if idx < 0 || idx >= len(b.participants) {
		return fmt.Sprintf("#%d", idx)
	}
	return b.participants[idx].Name
}

// AddDebt records that lender lent amount to borrower. Rejected input leaves both the
// transaction list and the undo history untouched.
func (b *Book) AddDebt(lender, borrower int, amount int64) error {
	tx, err := settle.Validate(lender, borrower, amount)
	if err != nil {
		return err
	}
	n := len(b.participants)
	if lender >= n || borrower >= n {
		return fmt.Errorf("%w: participant IDs must be below %d", settle.ErrPrecondition, n)
	}
	// A debt that would overflow a balance is never recorded.
	if _, err := settle.Balances(n, append(b.Transactions(), tx)); err != nil {
		return err
	}

	// The live list is copied before appending so snapshots never share its backing array.
	b.history = append(b.history, b.transactions)
	next := make([]settle.Transaction, len(b.transactions), len(b.transactions)+1)
	copy(next, b.transactions)
	b.transactions = append(next, tx)
	return nil
}

func (b *Book) Undo() error {
	if len(b.history) == 0 {
		return ErrNothingToUndo
	}
	last := len(b.history) - 1
	b.transactions = b.history[last]
	b.history = b.history[:last]
	return nil
}

func (b *Book) Transactions() []settle.Transaction {
	return append([]settle.Transaction(nil), b.transactions...)
}

// History returns the undo snapshots, oldest first.
func (b *Book) History() [][]settle.Transaction {
	out := make([][]settle.Transaction, len(b.history))
	for i, snap := range b.history {
		out[i] = append([]settle.Transaction(nil), snap...)
	}
	return out
}

func (b *Book) Balances() ([]int64, error) {
	return settle.Balances(len(b.participants), b.transactions)
}

// Settle recomputes balances from the full transaction list and runs s over them.
func (b *Book) Settle(s settle.Strategy) (*Settlement, error) {
	balances, err := b.Balances()
	if err != nil {
		return nil, err
	}
	plan, err := s.Settle(balances)
	if err != nil {
		return nil, err
	}
	res := &Settlement{Plan: plan, Entries: make([]NamedEntry, 0, len(plan.Entries))}
	for _, e := range plan.Entries {
		res.Entries = append(res.Entries, NamedEntry{Payer: b.Name(e.Payer), Payee: b.Name(e.Payee), Amount: e.Amount})
	}
	return res, nil
}
