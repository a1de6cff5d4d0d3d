package retail

import "github.com/shopspring/decimal"

// ClosureDiff is the reconciliation result attached to a day closure:
// shortfall (faltante) or overage (sobrante) per tender, never both for
// the same tender.
type ClosureDiff struct {
	CashFaltante     decimal.Decimal
	CashSobrante     decimal.Decimal
	TransferFaltante decimal.Decimal
	TransferSobrante decimal.Decimal
}

// ComputeDiff reconciles declared amounts against the expected sale total.
// Pure; it does not decide approval routing — the figures are
// informational, policy gates on actor role alone.
//
// The signed difference is declaredCash + declaredTransfer - expected,
// computed once and then split into faltante/sobrante. Transfers are
// verifiable against bank records, so the discrepancy is attributed to
// the cash drawer unless no cash was declared at all.
func ComputeDiff(expected, declaredCash, declaredTransfer decimal.Decimal) ClosureDiff {
	diff := declaredCash.Add(declaredTransfer).Sub(expected)

	var d ClosureDiff
	if diff.IsZero() {
		return d
	}

	faltante := decimal.Zero
	sobrante := decimal.Zero
	if diff.IsNegative() {
		faltante = diff.Neg()
	} else {
		sobrante = diff
	}

	if declaredCash.IsZero() && !declaredTransfer.IsZero() {
		d.TransferFaltante = faltante
		d.TransferSobrante = sobrante
		return d
	}
	d.CashFaltante = faltante
	d.CashSobrante = sobrante
	return d
}
