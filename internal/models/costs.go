package models

// RegionalRates holds the fixed regional constants used by the calculators
type RegionalRates struct {
	TaxRate            float64 `yaml:"tax_rate" json:"tax_rate"`
	InsuranceRate      float64 `yaml:"insurance_rate" json:"insurance_rate"`
	LicensingFee       float64 `yaml:"licensing_fee" json:"licensing_fee"`
	DefaultMonthlyRate float64 `yaml:"default_monthly_rate" json:"default_monthly_rate"`

	OilChangeEstimate    float64            `yaml:"oil_change_estimate" json:"oil_change_estimate"`
	LocalMarketMarkup    float64            `yaml:"local_market_markup" json:"local_market_markup"`
	DepreciationEstimate float64            `yaml:"depreciation_estimate" json:"depreciation_estimate"`
	MaintenanceFactor    float64            `yaml:"maintenance_factor" json:"maintenance_factor"`
	MaintenanceScores    []MaintenanceScore `yaml:"maintenance_scores" json:"maintenance_scores"`
}

// RegionalCosts represents the yearly regional costs derived from a valuation
type RegionalCosts struct {
	VehicleTax        float64 `json:"vehicle_tax"`
	InsuranceEstimate float64 `json:"insurance_estimate"`
	LicensingFee      float64 `json:"licensing_fee"`
}

// MaintenanceScore is a static 0-100 ease-of-maintenance score
type MaintenanceScore struct {
	Item  string `yaml:"item" json:"item"`
	Score int    `yaml:"score" json:"score"`
}
