// Package calc holds the regional cost and financing formulas.
package calc

import "github.com/Dan9191/autosmc/internal/models"

// ComputeRegionalCosts derives IPVA, insurance and licensing from a FIPE value.
// value must be non-negative and finite; callers validate it upstream.
func ComputeRegionalCosts(value float64, rates models.RegionalRates) models.RegionalCosts {
	return models.RegionalCosts{
		VehicleTax:        value * rates.TaxRate,
		InsuranceEstimate: value * rates.InsuranceRate,
		LicensingFee:      rates.LicensingFee,
	}
}

// LocalMarketAverage estimates the São Miguel dos Campos asking price
func LocalMarketAverage(value float64, rates models.RegionalRates) float64 {
	return value * rates.LocalMarketMarkup
}

// AnnualMaintenance estimates the yearly upkeep cost shown in comparisons
func AnnualMaintenance(value float64, rates models.RegionalRates) float64 {
	return value * rates.MaintenanceFactor
}
