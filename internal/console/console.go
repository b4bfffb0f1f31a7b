package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/susu3304/cashflow/internal/ledger"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
)

const (
	choiceAdd = iota + 1
	choiceDisplay
	choiceMinimize
	choiceUndo
	choiceHistory
	choiceBalances
	choiceStrategy
	choiceExit
)

// Console is the interactive terminal menu. Input is read as whitespace separated
// tokens, so several values may be typed on one line.
type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	logger   *zap.Logger
	strategy settle.Strategy
	book     *ledger.Book
}

func New(in io.Reader, out io.Writer, strategy settle.Strategy, logger *zap.Logger) *Console {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	return &Console{in: sc, out: out, logger: logger, strategy: strategy}
}

// Run drives the whole session. It returns nil when the user exits or input ends.
func (c *Console) Run() error {
	c.welcome()

	if err := c.createUsers(); err != nil {
		return c.finish(err)
	}

	count, err := c.readInt("Enter the number of transactions: ")
	if err != nil {
		return c.finish(err)
	}
	for i := 0; i < count; i++ {
		fmt.Fprintf(c.out, "Transaction %d:\n", i+1)
		if err := c.addDebt(); err != nil {
			return c.finish(err)
		}
	}

	for {
		c.menu()
		tok, err := c.next()
		if err != nil {
			return c.finish(err)
		}
		choice, convErr := strconv.Atoi(tok)
		if convErr != nil {
			choice = 0
		}

		switch choice {
		case choiceAdd:
			err = c.addDebt()
		case choiceDisplay:
			c.displayTransactions("\nTransactions:\n", c.book.Transactions())
		case choiceMinimize:
			c.minimize()
		case choiceUndo:
			c.undo()
		case choiceHistory:
			c.displayHistory()
		case choiceBalances:
			c.displayBalances()
		case choiceStrategy:
			err = c.chooseStrategy()
		case choiceExit:
			fmt.Fprintln(c.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid choice. Try again.")
		}
		if err != nil {
			return c.finish(err)
		}
	}
}

func (c *Console) finish(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(c.out, "\nExiting...")
		return nil
	}
	return err
}

func (c *Console) welcome() {
	fmt.Fprintln(c.out, "------------------ Cash Flow Minimizer ------------------")
	fmt.Fprintln(c.out, "Welcome to the Cash Flow Minimizer Program!")
	fmt.Fprintln(c.out, "This program helps manage transactions and minimize cash flow.")
}

func (c *Console) menu() {
	fmt.Fprintln(c.out, "\n------------------ Cash Flow Minimizer ------------------")
	fmt.Fprintln(c.out, "1. Add Debt")
	fmt.Fprintln(c.out, "2. Display Transactions")
	fmt.Fprintln(c.out, "3. Display Minimized Transactions")
	fmt.Fprintln(c.out, "4. Undo Last Transaction")
	fmt.Fprintln(c.out, "5. Display Transaction History")
	fmt.Fprintln(c.out, "6. Display Balances")
	fmt.Fprintf(c.out, "7. Change Strategy (current: %s)\n", c.strategy.Name())
	fmt.Fprintln(c.out, "8. Exit")
	fmt.Fprint(c.out, "Enter your choice: ")
}

func (c *Console) createUsers() error {
	var n int
	for {
		var err error
		n, err = c.readInt("Enter the number of users: ")
		if err != nil {
			return err
		}
		if n > 0 {
			break
		}
		fmt.Fprintln(c.out, "Please enter a valid number of users.")
	}

	names := make([]string, n)
	for i := range names {
		fmt.Fprintf(c.out, "Enter name for User %d: ", i)
		name, err := c.next()
		if err != nil {
			return err
		}
		names[i] = name
	}

	book, err := ledger.NewBook(names)
	if err != nil {
		return err
	}
	c.book = book
	c.logger.Debug("users created", zap.Int("count", n))
	return nil
}

func (c *Console) addDebt() error {
	fmt.Fprint(c.out, "Enter lender ID, borrower ID, and amount: ")
	// All three tokens are consumed before any is checked, so a bad value never
	// shifts the rest of the line into the menu.
	var toks [3]string
	for k := range toks {
		tok, err := c.next()
		if err != nil {
			return err
		}
		toks[k] = tok
	}
	var vals [3]int64
	for k, tok := range toks {
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			fmt.Fprintf(c.out, "Invalid input: %q is not a number.\n", tok)
			return nil
		}
		vals[k] = v
	}

	if err := c.book.AddDebt(int(vals[0]), int(vals[1]), vals[2]); err != nil {
		switch {
		case errors.Is(err, settle.ErrValidation):
			fmt.Fprintln(c.out, "Invalid input: Lender and borrower IDs should be non-negative and different, and amount should be positive.")
		case errors.Is(err, settle.ErrOverflow):
			fmt.Fprintln(c.out, "Invalid input: amount is too large for the current balances.")
		case errors.Is(err, settle.ErrPrecondition):
			fmt.Fprintf(c.out, "Invalid input: IDs must be between 0 and %d.\n", len(c.book.Participants())-1)
		default:
			return err
		}
		c.logger.Debug("transaction rejected", zap.Error(err))
		return nil
	}
	c.logger.Debug("transaction recorded",
		zap.Int64("lender", vals[0]), zap.Int64("borrower", vals[1]), zap.Int64("amount", vals[2]))
	return nil
}

func (c *Console) displayTransactions(header string, txs []settle.Transaction) {
	fmt.Fprint(c.out, header)
	if len(txs) == 0 {
		fmt.Fprintln(c.out, "(none)")
		return
	}
	for _, tx := range txs {
		fmt.Fprintf(c.out, "Lender %d lends %d to Borrower %d\n", tx.Lender, tx.Amount, tx.Borrower)
	}
}

func (c *Console) displayHistory() {
	history := c.book.History()
	fmt.Fprintf(c.out, "\nTransaction History (%d undo steps):\n", len(history))
	for i, snap := range history {
		c.displayTransactions(fmt.Sprintf("Snapshot %d:\n", i+1), snap)
	}
	c.displayTransactions("Current:\n", c.book.Transactions())
}

func (c *Console) minimize() {
	res, err := c.book.Settle(c.strategy)
	if err != nil {
		fmt.Fprintf(c.out, "Cannot minimize transactions: %v\n", err)
		c.logger.Warn("settlement failed", zap.String("strategy", c.strategy.Name()), zap.Error(err))
		return
	}

	fmt.Fprintf(c.out, "\nMinimized Transactions (%s):\n", res.Plan.Strategy)
	for _, e := range res.Entries {
		fmt.Fprintf(c.out, "User %s owes %d to User %s\n", e.Payer, e.Amount, e.Payee)
	}
	switch c.strategy.(type) {
	case settle.Flow, settle.FixedFlow:
		fmt.Fprintf(c.out, "Total flow: %d, total cost: %d\n", res.Plan.TotalFlow, res.Plan.TotalCost)
	default:
		if len(res.Entries) == 0 {
			fmt.Fprintln(c.out, "Everyone is settled.")
		}
	}
}

func (c *Console) undo() {
	if err := c.book.Undo(); err != nil {
		fmt.Fprintln(c.out, "No transactions to undo.")
		return
	}
	fmt.Fprintln(c.out, "Last transaction undone.")
}

func (c *Console) displayBalances() {
	balances, err := c.book.Balances()
	if err != nil {
		fmt.Fprintf(c.out, "Cannot compute balances: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "\nBalances:")
	for i, b := range balances {
		fmt.Fprintf(c.out, "User %s: %+d\n", c.book.Name(i), b)
	}
}

func (c *Console) chooseStrategy() error {
	fmt.Fprintf(c.out, "Available strategies: %s\n", strings.Join(settle.Names(), ", "))
	fmt.Fprint(c.out, "Enter strategy: ")
	name, err := c.next()
	if err != nil {
		return err
	}
	s, err := settle.Lookup(name)
	if err != nil {
		fmt.Fprintf(c.out, "Unknown strategy %q.\n", name)
		return nil
	}
	c.strategy = s
	fmt.Fprintf(c.out, "Strategy set to %s.\n", s.Name())
	return nil
}

func (c *Console) readInt(prompt string) (int, error) {
	for {
		fmt.Fprint(c.out, prompt)
		tok, err := c.next()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(tok)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(c.out, "%q is not a number.\n", tok)
	}
}

func (c *Console) next() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.in.Text(), nil
}
