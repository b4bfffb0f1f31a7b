package settle

type Participant struct {
	Index int
	Name  string
}

// Transaction records that Lender lent Amount to Borrower.
type Transaction struct {
	Lender   int
	Borrower int
	Amount   int64
}

// Entry is one payment of a settlement plan: Payer pays Amount to Payee.
type Entry struct {
	Payer  int
	Payee  int
	Amount int64
}

type Plan struct {
	Strategy  string
	Entries   []Entry
	TotalFlow int64
	TotalCost int64
}
