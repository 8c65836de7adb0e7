// SPDX-License-Identifier: MIT
// Package: market
//
// accessors.go — read-only, copy-out views of the committed snapshot.
// Every slice returned here is freshly allocated; mutating it never affects
// the Market.

package market

// Snapshot is an independent copy of one round of market state, the unit a
// recorder appends to its history.
type Snapshot struct {
	Time     int         `json:"time"`
	Price    []float64   `json:"price"`
	Quantity [][]float64 `json:"quantity"`
	Bid      [][]float64 `json:"bid"`
	Utility  []float64   `json:"utility"`
}

// Snapshot returns a deep copy of the current round.
func (mk *Market) Snapshot() Snapshot {
	return Snapshot{
		Time:     mk.time,
		Price:    mk.Price(),
		Quantity: mk.Quantity(),
		Bid:      mk.Bid(),
		Utility:  mk.IndividualUtility(),
	}
}

// Price returns a copy of the price vector (len m).
func (mk *Market) Price() []float64 { return cloneVec(mk.price) }

// Quantity returns a copy of the allocation matrix (n×m).
func (mk *Market) Quantity() [][]float64 {
	if mk.qty == nil {
		return nil
	}
	return mk.qty.ToRows()
}

// Bid returns a copy of the bid matrix (n×m).
func (mk *Market) Bid() [][]float64 {
	if mk.bid == nil {
		return nil
	}
	return mk.bid.ToRows()
}

// IndividualUtility returns a copy of each buyer's realized utility (len n).
// All zeros before the first Step.
func (mk *Market) IndividualUtility() []float64 { return cloneVec(mk.indiv) }

// Budget returns a copy of the budgets (len n).
func (mk *Market) Budget() []float64 { return cloneVec(mk.budget) }

// Utility returns a copy of the utility parameters (n×m).
func (mk *Market) Utility() [][]float64 {
	if mk.utility == nil {
		return nil
	}
	return mk.utility.ToRows()
}

// Time returns the number of successful Steps.
func (mk *Market) Time() int { return mk.time }

// Buyers returns n.
func (mk *Market) Buyers() int { return mk.n }

// Goods returns m.
func (mk *Market) Goods() int { return mk.m }

// Rule returns the update rule the Market was built with.
func (mk *Market) Rule() UpdateRule { return mk.rule }

// State returns the lifecycle state.
func (mk *Market) State() State { return mk.state }

// Err returns the error that moved the Market into Failed, or nil.
func (mk *Market) Err() error { return mk.err }

func cloneVec(x []float64) []float64 {
	if x == nil {
		return nil
	}
	out := make([]float64, len(x))
	copy(out, x)

	return out
}
