package charge

import "github.com/warp/charge-engine/workflow"

// IsAccrualInterestCharge reports whether sc is an interest charge accrued
// into an account and levied when a payment over a concrete period is
// accepted. Only such charges take part in period accrual interest rates.
func IsAccrualInterestCharge(sc ScheduledCharge) bool {
	def := sc.Definition
	return def.AccrualAccountDesignator != "" &&
		def.AccrueAction != "" &&
		def.AccrueAction == workflow.ActionApplyInterest.String() &&
		sc.Scheduled.Action == workflow.ActionAcceptPayment &&
		sc.Scheduled.ActionPeriod != nil
}

// FilterAccrualInterestCharges keeps the accrual-interest charges, preserving
// input order.
func FilterAccrualInterestCharges(charges []ScheduledCharge) []ScheduledCharge {
	var result []ScheduledCharge
	for _, sc := range charges {
		if IsAccrualInterestCharge(sc) {
			result = append(result, sc)
		}
	}
	return result
}
