package tax

import (
	"context"
	"strings"
)

// India GST component rates. Intrastate orders split the 18% standard rate
// evenly between CGST and SGST; interstate orders pay IGST in full.
const (
	gstCGSTRate = 0.09
	gstSGSTRate = 0.09
	gstIGSTRate = 0.18
)

// gstSlabRates maps product tax categories to flat GST slab rates. When a
// category is supplied the slab applies to the whole subtotal.
var gstSlabRates = map[string]float64{
	"essential": 0.05,
	"standard":  0.12,
	"general":   0.18,
	"luxury":    0.28,
}

// GSTCalculator computes India GST.
type GSTCalculator struct{}

// NewGSTCalculator creates an India GST calculator.
func NewGSTCalculator() Calculator {
	return &GSTCalculator{}
}

// CalculateTax applies a flat slab rate when the first line item carries a
// known tax category. Otherwise it computes CGST+SGST for intrastate orders
// or IGST for interstate ones.
//
// Intrastate vs interstate is decided solely by whether the state field is
// populated. A real jurisdictional comparison would need the origin state;
// this simplification is inherited from the storefront and covered by tests.
func (c *GSTCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	if params.SubtotalCents < 0 {
		return nil, ErrNegativeSubtotal
	}

	if category := firstCategory(params.LineItems); category != "" {
		if slab, ok := gstSlabRates[category]; ok {
			amount := round(params.SubtotalCents, slab)
			return &TaxResult{
				Rate:         slab,
				AmountCents:  amount,
				TaxableCents: params.SubtotalCents,
				Breakdown: []Breakdown{
					{Jurisdiction: "category", Name: "GST " + category, Rate: slab, AmountCents: amount},
				},
			}, nil
		}
	}

	if strings.TrimSpace(params.ShippingAddress.State) != "" {
		cgst := round(params.SubtotalCents, gstCGSTRate)
		sgst := round(params.SubtotalCents, gstSGSTRate)
		return &TaxResult{
			Rate:         gstCGSTRate + gstSGSTRate,
			AmountCents:  cgst + sgst,
			TaxableCents: params.SubtotalCents,
			Breakdown: []Breakdown{
				{Jurisdiction: "cgst", Name: "CGST", Rate: gstCGSTRate, AmountCents: cgst},
				{Jurisdiction: "sgst", Name: "SGST", Rate: gstSGSTRate, AmountCents: sgst},
			},
		}, nil
	}

	igst := round(params.SubtotalCents, gstIGSTRate)
	return &TaxResult{
		Rate:         gstIGSTRate,
		AmountCents:  igst,
		TaxableCents: params.SubtotalCents,
		Breakdown: []Breakdown{
			{Jurisdiction: "igst", Name: "IGST", Rate: gstIGSTRate, AmountCents: igst},
		},
	}, nil
}

func firstCategory(items []LineItem) string {
	for _, item := range items {
		if item.TaxCategory != "" {
			return item.TaxCategory
		}
	}
	return ""
}
