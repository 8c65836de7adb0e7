// Package market simulates proportional response dynamics in Fisher markets.
//
// 🚀 What is a Fisher market?
//
//	n buyers with fixed budgets spend on m divisible goods, each in unit
//	supply. A good's price is the total money bid on it; each buyer receives
//	the share of the good equal to its share of that money.
//
// ✨ Proportional response:
//
//	Every round each buyer redistributes its budget across goods in
//	proportion to each good's contribution to its realized utility. The
//	closed-form update depends on the preference family:
//	  • Linear, Cobb-Douglas
//	  • Quasi-linear (utility form and gradient form)
//	  • CES (Zhang), CES with one linear buyer
//	  • Grouped quasi-linear (first k goods linear)
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/prdyn/market"
//
//	mk, err := market.New(budget, bids, utility, market.CES(0.5))
//	if err != nil {
//	  // ErrDimension, ErrInvalidValue, ErrInvalidRule,
//	  // *BudgetViolationError, *DegeneratePriceError
//	}
//	for t := 0; t < 100; t++ {
//	  if err := mk.Step(); err != nil {
//	    // *DegeneratePriceError or *DegenerateUtilityError; mk is now Failed
//	  }
//	}
//	prices := mk.Price()
//
// Each Step, in order: price = column sums of bids; quantity = bid/price;
// per-buyer utility; per-buyer new bids; time+1. The step is atomic: on error
// no part of the new round is committed.
//
// Performance:
//
//   - Time:   O(n·m) per Step
//   - Memory: O(n·m), two snapshots (committed + scratch)
//
// The package performs no I/O and no logging; callers surface errors.
package market
