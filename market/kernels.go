// SPDX-License-Identifier: MIT
// Package: market
//
// kernels.go — per-buyer utility functionals and bid-update formulas.
//
// Every kernel reads one buyer's utility row w and quantity row q (length m)
// and never touches another buyer's data, which is what makes the per-buyer
// fan-out in Step safe. Kernels are pure: no allocation, no I/O, no errors.
//
// Zero-quantity convention (uniform across rules): a (buyer, good) pair with
// q == 0 contributes exactly 0 to utility, to gradients and to the new bid.
//
// Notation: U = realized utility, t_j = per-good utility term, g_j = gradient.
//   Linear               U = Σ w·q                 bid_j = B·w·q/U
//   CobbDouglas          U = Π q^w, g_j = U/q·w    bid_j = B·q·g/Σ q·g
//   QuasiLinearUtility   t_0 = w·q, t_j = (w·q)^α  bid_j = B·t_j/U
//   QuasiLinearGradient  g_0 = w, g_j = α·w^α·q^(α-1)
//                                                  bid_j = B·q·g/Σ q·g
//   CES                  t_j = (w·q)^α             bid_j = B·t_j/U
//   CESOneLinearBuyer    as CES, exponent 1 for buyer 0
//   GroupedQuasiLinear   t_j = w·q (j<k), (w·q)^α (j≥k)

package market

import "math"

// ces returns (w·q)^exp with the zero-quantity convention.
func ces(w, q, exp float64) float64 {
	if q == 0 {
		return 0
	}
	if exp == 1 {
		return w * q
	}

	return math.Pow(w*q, exp)
}

// exponent returns the CES-style exponent for (buyer, good) under r.
// Linear terms use 1, which makes Linear, CES with α=1 and the linear block
// of the grouped rule coincide bit-for-bit.
func (r UpdateRule) exponent(buyer, good int) float64 {
	switch r.Kind {
	case KindLinear:
		return 1
	case KindCES:
		return r.Alpha
	case KindCESOneLinearBuyer:
		if buyer == 0 {
			return 1
		}
		return r.Alpha
	case KindQuasiLinearUtility, KindQuasiLinearGradient:
		if good == 0 {
			return 1
		}
		return r.Alpha
	case KindGroupedQuasiLinear:
		if good < r.LinearGoods {
			return 1
		}
		return r.Alpha
	default:
		return 1
	}
}

// utility evaluates buyer's realized utility from its rows.
// Complexity: O(m).
func (r UpdateRule) utility(buyer int, w, q []float64) float64 {
	if r.Kind == KindCobbDouglas {
		return cobbDouglasUtility(w, q)
	}
	var u float64
	for j := range q {
		u += ces(w[j], q[j], r.exponent(buyer, j))
	}

	return u
}

// cobbDouglasUtility computes Π_j q_j^{w_j}. math.Pow(0, 0) == 1, so goods
// with zero exponent never zero the product.
func cobbDouglasUtility(w, q []float64) float64 {
	u := 1.0
	for j := range q {
		u *= math.Pow(q[j], w[j])
	}

	return u
}

// bids writes buyer's next bid row into out and reports false when the
// gradient normalizer Σ q·g is zero (degenerate for gradient-form rules).
// u must be the value returned by utility for the same rows and is non-zero.
// Complexity: O(m).
func (r UpdateRule) bids(buyer int, budget float64, w, q []float64, u float64, out []float64) bool {
	switch r.Kind {
	case KindCobbDouglas:
		return gradientSplit(budget, q, out, func(j int) float64 {
			// g_j = U / q_j · w_j; caller guarantees q_j > 0
			return u / q[j] * w[j]
		})
	case KindQuasiLinearGradient:
		alpha := r.Alpha
		return gradientSplit(budget, q, out, func(j int) float64 {
			if j == 0 {
				return w[0]
			}
			return alpha * math.Pow(w[j], alpha) * math.Pow(q[j], alpha-1)
		})
	default:
		// Utility-split family: bid_j = B · t_j / U.
		for j := range q {
			out[j] = budget * ces(w[j], q[j], r.exponent(buyer, j)) / u
		}
		return true
	}
}

// gradientSplit implements bid_j = B·q_j·g_j / Σ_k q_k·g_k, where grad is
// evaluated only for goods with q_j > 0. Two passes over the row: the first
// stores q·g into out and accumulates the normalizer, the second scales.
func gradientSplit(budget float64, q, out []float64, grad func(j int) float64) bool {
	var s float64
	for j := range q {
		if q[j] == 0 {
			out[j] = 0
			continue
		}
		out[j] = q[j] * grad(j)
		s += out[j]
	}
	if s == 0 {
		return false
	}
	for j := range out {
		out[j] = budget * out[j] / s
	}

	return true
}
