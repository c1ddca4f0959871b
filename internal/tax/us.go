package tax

import (
	"context"
	"hash/fnv"
	"strings"
)

// usStateRates maps two-letter state codes to state-level sales tax rates.
// Rates are statutory state rates; county and city additions are estimated
// separately when no ZIP override exists.
var usStateRates = map[string]float64{
	"AL": 0.04, "AK": 0.00, "AZ": 0.056, "AR": 0.065, "CA": 0.0725,
	"CO": 0.029, "CT": 0.0635, "DE": 0.00, "FL": 0.06, "GA": 0.04,
	"HI": 0.04, "ID": 0.06, "IL": 0.0625, "IN": 0.07, "IA": 0.06,
	"KS": 0.065, "KY": 0.06, "LA": 0.0445, "ME": 0.055, "MD": 0.06,
	"MA": 0.0625, "MI": 0.06, "MN": 0.06875, "MS": 0.07, "MO": 0.04225,
	"MT": 0.00, "NE": 0.055, "NV": 0.0685, "NH": 0.00, "NJ": 0.06625,
	"NM": 0.05125, "NY": 0.04, "NC": 0.0475, "ND": 0.05, "OH": 0.0575,
	"OK": 0.045, "OR": 0.00, "PA": 0.06, "RI": 0.07, "SC": 0.06,
	"SD": 0.045, "TN": 0.07, "TX": 0.0625, "UT": 0.061, "VT": 0.06,
	"VA": 0.053, "WA": 0.065, "WV": 0.06, "WI": 0.05, "WY": 0.04,
	"DC": 0.06,
}

// usZipOverrides maps specific ZIP codes to a combined rate that replaces the
// state rate entirely (not additive). Sourced from jurisdictions with known
// combined rates materially different from the state base.
var usZipOverrides = map[string]float64{
	"10001": 0.08875, // Manhattan, NY
	"90210": 0.0950,  // Beverly Hills, CA
	"60601": 0.1025,  // Chicago Loop, IL
	"98101": 0.1025,  // Seattle, WA
	"33101": 0.07,    // Miami, FL
	"75201": 0.0825,  // Dallas, TX
	"30301": 0.089,   // Atlanta, GA
	"80201": 0.081,   // Denver, CO
}

// Local-tax estimate bounds for states without a ZIP override. The offset
// within the band is derived deterministically from the destination so that
// repeated quotes for the same address always agree.
const (
	localEstimateMin = 0.01
	localEstimateMax = 0.03
)

// TableCalculator computes US sales tax from fixed state and ZIP rate tables.
type TableCalculator struct{}

// NewTableCalculator creates a US table-driven tax calculator.
func NewTableCalculator() Calculator {
	return &TableCalculator{}
}

// CalculateTax looks up the destination state rate, preferring an exact ZIP
// override when one exists. Without an override, a deterministic local-tax
// estimate in [1%, 3%] is added on top of the state rate and the result is
// flagged as an estimate.
func (c *TableCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	if params.SubtotalCents < 0 {
		return nil, ErrNegativeSubtotal
	}

	state := strings.ToUpper(strings.TrimSpace(params.ShippingAddress.State))
	zip := strings.TrimSpace(params.ShippingAddress.PostalCode)

	if override, ok := usZipOverrides[zip]; ok {
		amount := round(params.SubtotalCents, override)
		return &TaxResult{
			Rate:         override,
			AmountCents:  amount,
			TaxableCents: params.SubtotalCents,
			Breakdown: []Breakdown{
				{Jurisdiction: "combined", Name: "ZIP " + zip, Rate: override, AmountCents: amount},
			},
		}, nil
	}

	stateRate, ok := usStateRates[state]
	if !ok {
		return nil, ErrUnknownState
	}

	localRate := localEstimate(state, zip)
	rate := stateRate + localRate

	stateAmount := round(params.SubtotalCents, stateRate)
	localAmount := round(params.SubtotalCents, localRate)

	return &TaxResult{
		Rate:         rate,
		AmountCents:  stateAmount + localAmount,
		TaxableCents: params.SubtotalCents,
		Breakdown: []Breakdown{
			{Jurisdiction: "state", Name: state, Rate: stateRate, AmountCents: stateAmount},
			{Jurisdiction: "local", Name: "Local estimate", Rate: localRate, AmountCents: localAmount},
		},
		IsEstimate: true,
	}, nil
}

// localEstimate derives a stable local-tax rate in [localEstimateMin,
// localEstimateMax] from the destination. The original implementation drew
// this from a random number on every call, so identical carts produced
// different taxes between page loads; hashing the location keeps the
// "approximate local tax" behavior while making quotes reproducible.
func localEstimate(state, zip string) float64 {
	h := fnv.New32a()
	h.Write([]byte(state))
	h.Write([]byte(zip))
	span := localEstimateMax - localEstimateMin
	return localEstimateMin + span*float64(h.Sum32()%1000)/999.0
}
