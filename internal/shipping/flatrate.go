package shipping

import (
	"context"
	"time"
)

// FlatRateProvider returns predefined flat-rate shipping options.
// Used when real carrier integration is not needed.
type FlatRateProvider struct {
	rates []FlatRate
}

// FlatRate defines a single flat-rate shipping option.
type FlatRate struct {
	ServiceName string
	ServiceCode string
	CostCents   int64
	DaysMin     int
	DaysMax     int

	// FreeAboveCents waives the cost for subtotals at or above the
	// threshold. Zero disables the waiver.
	FreeAboveCents int64
}

// NewFlatRateProvider creates a new flat-rate shipping provider.
func NewFlatRateProvider(rates []FlatRate) Provider {
	return &FlatRateProvider{rates: rates}
}

// DefaultRates builds the standard/express pair from configured costs.
func DefaultRates(standardCents, expressCents int64) []FlatRate {
	return []FlatRate{
		{ServiceName: "Standard Shipping", ServiceCode: "STD", CostCents: standardCents, DaysMin: 3, DaysMax: 7, FreeAboveCents: 5000},
		{ServiceName: "Express Shipping", ServiceCode: "EXP", CostCents: expressCents, DaysMin: 1, DaysMax: 2},
	}
}

// GetRates converts flat rates to Rate objects.
func (p *FlatRateProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if params.DestinationAddress.Country == "" {
		return nil, ErrDestinationRequired
	}

	result := make([]Rate, len(p.rates))
	for i, fr := range p.rates {
		cost := fr.CostCents
		if fr.FreeAboveCents > 0 && params.SubtotalCents >= fr.FreeAboveCents {
			cost = 0
		}
		result[i] = Rate{
			RateID:                fr.ServiceCode,
			Carrier:               "Flat Rate",
			ServiceName:           fr.ServiceName,
			ServiceCode:           fr.ServiceCode,
			CostCents:             cost,
			EstimatedDaysMin:      fr.DaysMin,
			EstimatedDaysMax:      fr.DaysMax,
			EstimatedDeliveryDate: time.Now().AddDate(0, 0, fr.DaysMax),
		}
	}
	return result, nil
}
