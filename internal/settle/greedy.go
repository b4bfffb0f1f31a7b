package settle

// Greedy pairs creditors and debtors in participant index order with a two-pointer
// scan. It drains each side exactly once, so it emits at most
// creditors+debtors-1 entries, but it does not search for the fewest payments.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (g Greedy) Settle(balances []int64) (*Plan, error) {
	creditors, debtors := split(balances)
	plan := &Plan{Strategy: g.Name()}

	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := min64(creditors[i].amount, debtors[j].amount)
		plan.add(Entry{Payer: debtors[j].idx, Payee: creditors[i].idx, Amount: amount})

		creditors[i].amount -= amount
		debtors[j].amount -= amount

		if creditors[i].amount == 0 {
			i++
		}
		if debtors[j].amount == 0 {
			j++
		}
	}
	return plan, nil
}

// MaxMagnitude is the classic minimum cash flow matcher: every step settles between
// the largest remaining creditor and the largest remaining debtor. Ties go to the
// lower participant index.
type MaxMagnitude struct{}

func (MaxMagnitude) Name() string { return "maxmagnitude" }

func (m MaxMagnitude) Settle(balances []int64) (*Plan, error) {
	creditors, debtors := split(balances)
	plan := &Plan{Strategy: m.Name()}

	for {
		ci, di := largest(creditors), largest(debtors)
		if ci < 0 || di < 0 {
			break
		}
		amount := min64(creditors[ci].amount, debtors[di].amount)
		plan.add(Entry{Payer: debtors[di].idx, Payee: creditors[ci].idx, Amount: amount})
		creditors[ci].amount -= amount
		debtors[di].amount -= amount
	}
	return plan, nil
}

// largest returns the position of the party with the largest positive remainder, or -1.
func largest(parties []party) int {
	best := -1
	for k, p := range parties {
		if p.amount <= 0 {
			continue
		}
		if best < 0 || p.amount > parties[best].amount {
			best = k
		}
	}
	return best
}

// add appends e and keeps the greedy totals: flow is the money moved and cost is
// the number of payments.
func (p *Plan) add(e Entry) {
	p.Entries = append(p.Entries, e)
	p.TotalFlow += e.Amount
	p.TotalCost++
}
