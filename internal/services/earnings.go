package services

import (
	"math"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

// EarningsBreakdown is the scheme-based earnings result for one duty
type EarningsBreakdown struct {
	BaseAmount    float64 `json:"base_amount"`
	RevenueShare  float64 `json:"revenue_share"`
	TripBonus     float64 `json:"trip_bonus"`
	BMGGuarantee  float64 `json:"bmg_guarantee"`
	FinalEarnings float64 `json:"final_earnings"`
}

// TripsheetInputs are the raw financial figures collected when a duty ends
type TripsheetInputs struct {
	CashCollected      float64
	QRPayment          float64
	DigitalPayment     float64
	OperatorPayout     float64
	Toll               float64
	FuelExpense        float64
	OtherExpense       float64
	MaintenanceExpense float64
	CompanyPay         float64
	AdvanceDeduction   float64
	FuelDeduction      float64
	PenaltyDeduction   float64
}

// TripsheetResult is the reconciliation of one duty's money flow. This is
// the canonical path for the figures written onto a completed duty;
// DriverSalary may be negative when deductions exceed pay plus incentive
// (a debt carried forward, not an error).
type TripsheetResult struct {
	GrossRevenue    float64 `json:"gross_revenue"`
	Incentive       float64 `json:"incentive"`
	DriverSalary    float64 `json:"driver_salary"`
	CompanyExpenses float64 `json:"company_expenses"`
	CompanyProfit   float64 `json:"company_profit"`
}

// roundMoney rounds to 2 decimal places, half away from zero
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateSchemeEarnings computes the driver's scheme-based earnings for
// one duty. revenue is the duty's gross revenue, tripCount the number of
// trips. The BMG floor, when the scheme carries one, is applied after the
// scheme arithmetic.
func CalculateSchemeEarnings(scheme *models.DutyScheme, revenue float64, tripCount int) EarningsBreakdown {
	var b EarningsBreakdown

	switch scheme.Type {
	case models.SchemeTypeFixed:
		b.BaseAmount = scheme.FixedAmount
	case models.SchemeTypePerTrip:
		b.TripBonus = float64(tripCount) * scheme.PerTripRate
	case models.SchemeTypeSlab:
		b.RevenueShare = revenue * scheme.RevenuePercent / 100
	case models.SchemeTypeMixed:
		b.BaseAmount = scheme.FixedAmount
		b.RevenueShare = revenue * scheme.RevenuePercent / 100
	}

	earnings := b.BaseAmount + b.RevenueShare + b.TripBonus
	if scheme.BMGAmount != nil && earnings < *scheme.BMGAmount {
		b.BMGGuarantee = roundMoney(*scheme.BMGAmount - earnings)
		earnings = *scheme.BMGAmount
	}

	b.BaseAmount = roundMoney(b.BaseAmount)
	b.RevenueShare = roundMoney(b.RevenueShare)
	b.TripBonus = roundMoney(b.TripBonus)
	b.FinalEarnings = roundMoney(earnings)
	return b
}

// CalculateTripsheet reconciles one duty's money flow. Only a positive
// spread of cash over operator payout counts as incentive; shortfalls are
// not penalized here.
func CalculateTripsheet(in TripsheetInputs) TripsheetResult {
	incentive := in.CashCollected - in.OperatorPayout
	if incentive < 0 {
		incentive = 0
	}

	salary := in.CompanyPay + incentive - (in.AdvanceDeduction + in.FuelDeduction + in.PenaltyDeduction)
	gross := in.CashCollected + in.QRPayment + in.DigitalPayment
	expenses := in.OperatorPayout + in.Toll + in.FuelExpense + in.OtherExpense + in.MaintenanceExpense

	return TripsheetResult{
		GrossRevenue:    roundMoney(gross),
		Incentive:       roundMoney(incentive),
		DriverSalary:    roundMoney(salary),
		CompanyExpenses: roundMoney(expenses),
		CompanyProfit:   roundMoney(gross - (salary + expenses)),
	}
}

// FuelAdjustment converts a fuel gauge delta into currency at costPerPoint
// per gauge step. Negative (fuel consumed) feeds the driver's fuel
// deduction; positive (tank refilled on the driver's own money) is
// credited back.
func FuelAdjustment(startLevel, endLevel, costPerPoint float64) float64 {
	return roundMoney((endLevel - startLevel) * costPerPoint)
}
