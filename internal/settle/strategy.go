package settle

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy turns a balance vector into a payment plan. Implementations never modify
// the balances they are given.
type Strategy interface {
	Name() string
	Settle(balances []int64) (*Plan, error)
}

const DefaultStrategy = "greedy"

var strategies = map[string]Strategy{
	Greedy{}.Name():       Greedy{},
	MaxMagnitude{}.Name(): MaxMagnitude{},
	Flow{}.Name():         Flow{},
	FixedFlow{}.Name():    FixedFlow{},
}

// Lookup returns the strategy registered under name (case-insensitive). An empty name
// selects DefaultStrategy.
func Lookup(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultStrategy
	}
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
	return s, nil
}

func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type party struct {
	idx    int
	amount int64
}

// split partitions balances into creditors and debtors (as positive magnitudes),
// both in participant index order.
func split(balances []int64) (creditors, debtors []party) {
	for i, b := range balances {
		if b > 0 {
			creditors = append(creditors, party{idx: i, amount: b})
		} else if b < 0 {
			debtors = append(debtors, party{idx: i, amount: -b})
		}
	}
	return creditors, debtors
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
