package factory

import "encoding/json"

// =============================================================================
// PRESET CHARGE DEFINITIONS
// =============================================================================

// InterestChargeJSON returns JSON for a yearly interest charge accrued daily
// and collected with each payment.
func InterestChargeJSON(id, name, annualRate string) string {
	dj := map[string]interface{}{
		"identifier":                 id,
		"name":                       name,
		"description":                "Interest quoted per year, accrued daily, collected on payment",
		"amount":                     annualRate,
		"for_cycle_size_unit":        "YEARS",
		"charge_action":              "ACCEPT_PAYMENT",
		"accrue_action":              "APPLY_INTEREST",
		"accrual_account_designator": "interest-accrual",
	}
	b, _ := json.MarshalIndent(dj, "", "  ")
	return string(b)
}

// ProcessingFeeJSON returns JSON for a flat fee levied at disbursement.
func ProcessingFeeJSON(id, name, amount string) string {
	dj := map[string]interface{}{
		"identifier":    id,
		"name":          name,
		"description":   "Flat fee collected at disbursement",
		"amount":        amount,
		"charge_action": "DISBURSE",
	}
	b, _ := json.MarshalIndent(dj, "", "  ")
	return string(b)
}

// LateFeeJSON returns JSON for a flat fee levied when a payment is late.
func LateFeeJSON(id, name, amount string) string {
	dj := map[string]interface{}{
		"identifier":    id,
		"name":          name,
		"description":   "Flat fee collected when a payment is marked late",
		"amount":        amount,
		"charge_action": "MARK_LATE",
	}
	b, _ := json.MarshalIndent(dj, "", "  ")
	return string(b)
}

// DefaultPresets returns the charge definitions a fresh catalog is seeded with.
func DefaultPresets() []string {
	return []string{
		InterestChargeJSON("interest", "Interest", "0.12"),
		ProcessingFeeJSON("processing-fee", "Processing Fee", "10.00"),
		LateFeeJSON("late-fee", "Late Fee", "25.00"),
	}
}
