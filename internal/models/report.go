package models

// ReportFileName is the download and attachment name of the exported cost table
const ReportFileName = "relatorio_autosmc.csv"

// CostLine is one row of the exported cost table
type CostLine struct {
	Service string  `json:"service"`
	Value   float64 `json:"value"`
}

// Report represents the single-vehicle detailed market report
type Report struct {
	City                 string             `json:"city"`
	Valuation            VehicleValuation   `json:"valuation"`
	Costs                RegionalCosts      `json:"costs"`
	LocalMarketAverage   float64            `json:"local_market_average"`
	DepreciationEstimate float64            `json:"depreciation_estimate"`
	Maintenance          []MaintenanceScore `json:"maintenance"`
	CostTable            []CostLine         `json:"cost_table"`
	Financing            *FinancingQuote    `json:"financing,omitempty"`
}

// ComparedVehicle is one side of a two-vehicle comparison
type ComparedVehicle struct {
	SessionID         string         `json:"session_id"`
	Model             string         `json:"model"`
	PriceValue        float64        `json:"price_value"`
	AnnualMaintenance float64        `json:"annual_maintenance"`
	Quote             FinancingQuote `json:"quote"`
}

// Comparison represents two vehicles financed under the same terms
type Comparison struct {
	MonthlyRate      float64           `json:"monthly_rate"`
	InstallmentCount int               `json:"installment_count"`
	Vehicles         []ComparedVehicle `json:"vehicles"`
}
