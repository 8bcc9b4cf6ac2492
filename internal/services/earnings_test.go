package services

import (
	"testing"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestCalculateSchemeEarnings(t *testing.T) {
	tests := []struct {
		name      string
		scheme    models.DutyScheme
		revenue   float64
		tripCount int
		want      EarningsBreakdown
	}{
		{
			name:   "fixed scheme below BMG gets topped up",
			scheme: models.DutyScheme{Type: models.SchemeTypeFixed, FixedAmount: 500, BMGAmount: floatPtr(600)},
			want: EarningsBreakdown{
				BaseAmount:    500,
				BMGGuarantee:  100,
				FinalEarnings: 600,
			},
		},
		{
			name:      "per trip scheme without BMG",
			scheme:    models.DutyScheme{Type: models.SchemeTypePerTrip, PerTripRate: 50},
			tripCount: 8,
			want: EarningsBreakdown{
				TripBonus:     400,
				FinalEarnings: 400,
			},
		},
		{
			name:    "slab scheme takes percentage of revenue",
			scheme:  models.DutyScheme{Type: models.SchemeTypeSlab, RevenuePercent: 30},
			revenue: 2000,
			want: EarningsBreakdown{
				RevenueShare:  600,
				FinalEarnings: 600,
			},
		},
		{
			name:    "mixed scheme combines base and revenue share",
			scheme:  models.DutyScheme{Type: models.SchemeTypeMixed, FixedAmount: 300, RevenuePercent: 10},
			revenue: 1500,
			want: EarningsBreakdown{
				BaseAmount:    300,
				RevenueShare:  150,
				FinalEarnings: 450,
			},
		},
		{
			name:    "BMG not applied when earnings exceed the floor",
			scheme:  models.DutyScheme{Type: models.SchemeTypeSlab, RevenuePercent: 50, BMGAmount: floatPtr(400)},
			revenue: 1000,
			want: EarningsBreakdown{
				RevenueShare:  500,
				FinalEarnings: 500,
			},
		},
		{
			name:    "fractional revenue share rounds to paise",
			scheme:  models.DutyScheme{Type: models.SchemeTypeSlab, RevenuePercent: 33},
			revenue: 1000.10,
			want: EarningsBreakdown{
				RevenueShare:  330.03,
				FinalEarnings: 330.03,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSchemeEarnings(&tt.scheme, tt.revenue, tt.tripCount)
			if got != tt.want {
				t.Errorf("CalculateSchemeEarnings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBMGFloorProperty(t *testing.T) {
	// For any scheme with BMG G where raw earnings E < G: final = G and
	// guarantee = G - E; otherwise final = E and guarantee = 0.
	guarantee := 750.0
	for _, fixed := range []float64{0, 100, 500, 749.99, 750, 800, 1200} {
		scheme := &models.DutyScheme{Type: models.SchemeTypeFixed, FixedAmount: fixed, BMGAmount: &guarantee}
		got := CalculateSchemeEarnings(scheme, 0, 0)

		if fixed < guarantee {
			if got.FinalEarnings != guarantee {
				t.Errorf("fixed=%v: FinalEarnings = %v, want %v", fixed, got.FinalEarnings, guarantee)
			}
			if want := roundMoney(guarantee - fixed); got.BMGGuarantee != want {
				t.Errorf("fixed=%v: BMGGuarantee = %v, want %v", fixed, got.BMGGuarantee, want)
			}
		} else {
			if got.FinalEarnings != fixed {
				t.Errorf("fixed=%v: FinalEarnings = %v, want %v", fixed, got.FinalEarnings, fixed)
			}
			if got.BMGGuarantee != 0 {
				t.Errorf("fixed=%v: BMGGuarantee = %v, want 0", fixed, got.BMGGuarantee)
			}
		}
	}
}

func TestCalculateTripsheet(t *testing.T) {
	t.Run("standard reconciliation", func(t *testing.T) {
		got := CalculateTripsheet(TripsheetInputs{
			CashCollected:    1200,
			QRPayment:        300,
			OperatorPayout:   800,
			CompanyPay:       500,
			AdvanceDeduction: 100,
			FuelDeduction:    50,
			PenaltyDeduction: 25,
		})

		if got.Incentive != 400 {
			t.Errorf("Incentive = %v, want 400", got.Incentive)
		}
		if got.DriverSalary != 725 {
			t.Errorf("DriverSalary = %v, want 725", got.DriverSalary)
		}
		if got.GrossRevenue != 1500 {
			t.Errorf("GrossRevenue = %v, want 1500", got.GrossRevenue)
		}
		if got.CompanyExpenses != 800 {
			t.Errorf("CompanyExpenses = %v, want 800", got.CompanyExpenses)
		}
		if got.CompanyProfit != -25 {
			t.Errorf("CompanyProfit = %v, want -25", got.CompanyProfit)
		}
	})

	t.Run("shortfall is not a negative incentive", func(t *testing.T) {
		got := CalculateTripsheet(TripsheetInputs{
			CashCollected:  500,
			OperatorPayout: 800,
			CompanyPay:     600,
		})
		if got.Incentive != 0 {
			t.Errorf("Incentive = %v, want 0", got.Incentive)
		}
		if got.DriverSalary != 600 {
			t.Errorf("DriverSalary = %v, want 600", got.DriverSalary)
		}
	})

	t.Run("salary can go negative when deductions dominate", func(t *testing.T) {
		got := CalculateTripsheet(TripsheetInputs{
			CompanyPay:       200,
			AdvanceDeduction: 350,
		})
		if got.DriverSalary != -150 {
			t.Errorf("DriverSalary = %v, want -150 (debt carried forward)", got.DriverSalary)
		}
	})
}

func TestFuelAdjustment(t *testing.T) {
	// Two gauge points consumed at 90 per point
	if got := FuelAdjustment(8, 6, 90); got != -180 {
		t.Errorf("FuelAdjustment(8, 6, 90) = %v, want -180", got)
	}
	// Refill credits the driver
	if got := FuelAdjustment(3, 7.5, 90); got != 405 {
		t.Errorf("FuelAdjustment(3, 7.5, 90) = %v, want 405", got)
	}
	if got := FuelAdjustment(5, 5, 90); got != 0 {
		t.Errorf("FuelAdjustment(5, 5, 90) = %v, want 0", got)
	}
}
