package models

// VehicleValuation represents the FIPE reference price of one vehicle configuration
type VehicleValuation struct {
	BrandName      string  `json:"brand_name"`
	ModelName      string  `json:"model_name"`
	ModelYear      int     `json:"model_year"`
	Fuel           string  `json:"fuel"`
	ReferenceMonth string  `json:"reference_month"`
	FipeCode       string  `json:"fipe_code"`
	PriceText      string  `json:"price_text"`
	PriceValue     float64 `json:"price_value"`
}
