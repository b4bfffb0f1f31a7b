package settle

import (
	"fmt"
	"math"
)

const unreachable = math.MaxInt64

// Network is a dense flow network over nodes 0..n-1 kept in residual form.
type Network struct {
	n        int
	capacity [][]int64
	residual [][]int64
	cost     [][]int64
}

func NewNetwork(n int) *Network {
	nw := &Network{
		n:        n,
		capacity: make([][]int64, n),
		residual: make([][]int64, n),
		cost:     make([][]int64, n),
	}
	for i := 0; i < n; i++ {
		nw.capacity[i] = make([]int64, n)
		nw.residual[i] = make([]int64, n)
		nw.cost[i] = make([]int64, n)
	}
	return nw
}

// AddEdge sets the forward edge from->to. Its reverse residual edge starts with zero
// capacity and cost -cost. Antiparallel edges cannot share the matrix cells and are rejected.
func (nw *Network) AddEdge(from, to int, capacity, cost int64) error {
	if err := checkIndex(nw.n, from); err != nil {
		return err
	}
	if err := checkIndex(nw.n, to); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: self loop on node %d", ErrPrecondition, from)
	}
	if capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrPrecondition, capacity)
	}
	if nw.capacity[to][from] > 0 {
		return fmt.Errorf("%w: antiparallel edge %d->%d", ErrPrecondition, from, to)
	}
	nw.capacity[from][to] = capacity
	nw.residual[from][to] = capacity
	nw.cost[from][to] = cost
	nw.cost[to][from] = -cost
	return nil
}

// Flow returns the amount currently routed over the forward edge from->to.
func (nw *Network) Flow(from, to int) int64 {
	if from < 0 || to < 0 || from >= nw.n || to >= nw.n {
		return 0
	}
	return nw.capacity[from][to] - nw.residual[from][to]
}

// MinCostMaxFlow augments along cheapest residual paths until sink is unreachable and
// returns the flow and cost added by this call.
func (nw *Network) MinCostMaxFlow(source, sink int) (flow, cost int64, err error) {
	if err := checkIndex(nw.n, source); err != nil {
		return 0, 0, err
	}
	if err := checkIndex(nw.n, sink); err != nil {
		return 0, 0, err
	}
	if source == sink {
		return 0, 0, fmt.Errorf("%w: source and sink are both node %d", ErrPrecondition, source)
	}

	for {
		dist, prev := nw.shortestPath(source)
		if dist[sink] == unreachable {
			return flow, cost, nil
		}

		bottleneck := int64(unreachable)
		for v := sink; v != source; v = prev[v] {
			bottleneck = min64(bottleneck, nw.residual[prev[v]][v])
		}
		for v := sink; v != source; v = prev[v] {
			u := prev[v]
			nw.residual[u][v] -= bottleneck
			nw.residual[v][u] += bottleneck
		}

		flow += bottleneck
		cost += bottleneck * dist[sink]
	}
}

// shortestPath runs queue-based Bellman-Ford (label correcting) from source over edges
// with residual capacity. Reverse edges may carry negative cost; the residual graph of
// a min-cost flow has no negative cycles, so the search terminates.
func (nw *Network) shortestPath(source int) (dist []int64, prev []int) {
	dist = make([]int64, nw.n)
	prev = make([]int, nw.n)
	queued := make([]bool, nw.n)
	for i := range dist {
		dist[i] = unreachable
		prev[i] = -1
	}
	dist[source] = 0

	queue := []int{source}
	queued[source] = true
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		queued[u] = false

		for v := 0; v < nw.n; v++ {
			if nw.residual[u][v] <= 0 {
				continue
			}
			if d := dist[u] + nw.cost[u][v]; d < dist[v] {
				dist[v] = d
				prev[v] = u
				if !queued[v] {
					queue = append(queue, v)
					queued[v] = true
				}
			}
		}
	}
	return dist, prev
}

// Flow settles through a min-cost max-flow network: a super-source feeds every
// creditor, every creditor links to every debtor at unit cost, and every debtor drains
// into a super-sink. The flow on creditor->debtor edges becomes the plan.
type Flow struct{}

func (Flow) Name() string { return "flow" }

func (f Flow) Settle(balances []int64) (*Plan, error) {
	n := len(balances)
	source, sink := n, n+1
	nw := NewNetwork(n + 2)
	creditors, debtors := split(balances)

	for _, c := range creditors {
		if err := nw.AddEdge(source, c.idx, c.amount, 0); err != nil {
			return nil, err
		}
		for _, d := range debtors {
			if err := nw.AddEdge(c.idx, d.idx, d.amount, 1); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range debtors {
		if err := nw.AddEdge(d.idx, sink, d.amount, 0); err != nil {
			return nil, err
		}
	}

	flow, cost, err := nw.MinCostMaxFlow(source, sink)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Strategy: f.Name(), TotalFlow: flow, TotalCost: cost}
	for _, c := range creditors {
		for _, d := range debtors {
			if amount := nw.Flow(c.idx, d.idx); amount > 0 {
				plan.Entries = append(plan.Entries, Entry{Payer: d.idx, Payee: c.idx, Amount: amount})
			}
		}
	}
	return plan, nil
}

// FixedFlow routes flow from participant 0 to participant N-1 over unit-cost
// creditor->debtor edges and reports only the totals. It only sees the debt between
// whoever sits at those two indices, so it is kept for comparison with Flow.
type FixedFlow struct{}

func (FixedFlow) Name() string { return "fixedflow" }

func (f FixedFlow) Settle(balances []int64) (*Plan, error) {
	n := len(balances)
	if n < 2 {
		return nil, fmt.Errorf("%w: fixed source and sink need at least 2 participants, got %d", ErrPrecondition, n)
	}
	nw := NewNetwork(n)
	creditors, debtors := split(balances)
	for _, c := range creditors {
		for _, d := range debtors {
			if err := nw.AddEdge(c.idx, d.idx, d.amount, 1); err != nil {
				return nil, err
			}
		}
	}

	flow, cost, err := nw.MinCostMaxFlow(0, n-1)
	if err != nil {
		return nil, err
	}
	return &Plan{Strategy: f.Name(), TotalFlow: flow, TotalCost: cost}, nil
}
