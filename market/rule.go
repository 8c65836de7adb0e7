// SPDX-License-Identifier: MIT
// Package: market
//
// rule.go — the closed set of proportional-response update rules.
//
// An UpdateRule is a tagged variant: Kind selects the preference family and
// the two scalars carry the only parameters any family needs. Dispatch is a
// single switch inside Step (see kernels.go); there is no interface hierarchy.
//
// Parameter domains:
//   • Linear, CobbDouglas          — no parameters (Alpha/LinearGoods ignored).
//   • QuasiLinear*, CES*           — 0 < Alpha ≤ 1.
//   • GroupedQuasiLinear           — 0 < Alpha ≤ 1 and 0 ≤ LinearGoods ≤ m
//                                    (m is known only at New, checked there).

package market

import (
	"fmt"
	"math"
	"strings"
)

// Kind enumerates the supported preference families.
type Kind uint8

const (
	// KindLinear: U = Σ w·q.
	KindLinear Kind = iota
	// KindCobbDouglas: U = Π q^w, gradient-normalized split.
	KindCobbDouglas
	// KindQuasiLinearUtility: good 0 linear, others (w·q)^α, utility split.
	KindQuasiLinearUtility
	// KindQuasiLinearGradient: same utility, gradient-normalized split.
	KindQuasiLinearGradient
	// KindCES: U = Σ (w·q)^α (Zhang).
	KindCES
	// KindCESOneLinearBuyer: buyer 0 uses exponent 1, the others α.
	KindCESOneLinearBuyer
	// KindGroupedQuasiLinear: goods j<k linear, goods j≥k (w·q)^α.
	KindGroupedQuasiLinear

	kindCount // sentinel for range checks
)

var kindNames = [kindCount]string{
	KindLinear:              "linear",
	KindCobbDouglas:         "cobb-douglas",
	KindQuasiLinearUtility:  "quasi-linear-utility",
	KindQuasiLinearGradient: "quasi-linear-gradient",
	KindCES:                 "ces",
	KindCESOneLinearBuyer:   "ces-one-linear-buyer",
	KindGroupedQuasiLinear:  "grouped-quasi-linear",
}

// String returns the canonical kebab-case name used by config and CLI.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a canonical name (case-insensitive, '_' accepted for '-')
// back to a Kind.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for k := Kind(0); k < kindCount; k++ {
		if kindNames[k] == norm {
			return k, nil
		}
	}

	return 0, fmt.Errorf("ParseKind(%q): %w", s, ErrInvalidRule)
}

// Kinds returns every supported Kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}

	return out
}

// UpdateRule selects a preference family and its construction-time scalars.
// The zero value is the Linear rule.
type UpdateRule struct {
	Kind        Kind
	Alpha       float64 // CES/quasi-linear exponent, 0 < α ≤ 1
	LinearGoods int     // grouped variant only: goods [0, LinearGoods) are linear
}

// Linear returns the linear proportional-response rule.
func Linear() UpdateRule { return UpdateRule{Kind: KindLinear} }

// CobbDouglas returns the Cobb-Douglas rule; utility rows are exponents.
func CobbDouglas() UpdateRule { return UpdateRule{Kind: KindCobbDouglas} }

// QuasiLinearUtility returns the utility-form quasi-linear rule.
func QuasiLinearUtility(alpha float64) UpdateRule {
	return UpdateRule{Kind: KindQuasiLinearUtility, Alpha: alpha}
}

// QuasiLinearGradient returns the gradient-form quasi-linear rule.
func QuasiLinearGradient(alpha float64) UpdateRule {
	return UpdateRule{Kind: KindQuasiLinearGradient, Alpha: alpha}
}

// CES returns Zhang's CES rule with exponent alpha.
func CES(alpha float64) UpdateRule { return UpdateRule{Kind: KindCES, Alpha: alpha} }

// CESOneLinearBuyer returns the CES rule where buyer 0 is linear.
func CESOneLinearBuyer(alpha float64) UpdateRule {
	return UpdateRule{Kind: KindCESOneLinearBuyer, Alpha: alpha}
}

// GroupedQuasiLinear returns the rule where the first linearGoods goods are
// linear and the rest follow the CES term with exponent alpha.
func GroupedQuasiLinear(alpha float64, linearGoods int) UpdateRule {
	return UpdateRule{Kind: KindGroupedQuasiLinear, Alpha: alpha, LinearGoods: linearGoods}
}

// usesAlpha reports whether the rule reads Alpha.
func (r UpdateRule) usesAlpha() bool {
	switch r.Kind {
	case KindLinear, KindCobbDouglas:
		return false
	default:
		return true
	}
}

// Validate checks the rule against a market with goods goods.
// Errors wrap ErrInvalidRule.
func (r UpdateRule) Validate(goods int) error {
	if r.Kind >= kindCount {
		return fmt.Errorf("rule %s: unknown kind: %w", r.Kind, ErrInvalidRule)
	}
	if r.usesAlpha() {
		if math.IsNaN(r.Alpha) || r.Alpha <= 0 || r.Alpha > 1 {
			return fmt.Errorf("rule %s: alpha=%g not in (0,1]: %w", r.Kind, r.Alpha, ErrInvalidRule)
		}
	}
	if r.Kind == KindGroupedQuasiLinear && (r.LinearGoods < 0 || r.LinearGoods > goods) {
		return fmt.Errorf("rule %s: linear goods=%d not in [0,%d]: %w", r.Kind, r.LinearGoods, goods, ErrInvalidRule)
	}

	return nil
}

// String renders the rule with only the parameters it uses.
func (r UpdateRule) String() string {
	switch {
	case r.Kind == KindGroupedQuasiLinear:
		return fmt.Sprintf("%s(alpha=%g, linear=%d)", r.Kind, r.Alpha, r.LinearGoods)
	case r.usesAlpha():
		return fmt.Sprintf("%s(alpha=%g)", r.Kind, r.Alpha)
	default:
		return r.Kind.String()
	}
}
