package models

// FinancingQuote represents a fixed-rate installment plan
type FinancingQuote struct {
	MonthlyRate       float64 `json:"monthly_rate"`
	InstallmentCount  int     `json:"installment_count"`
	InstallmentAmount float64 `json:"installment_amount"`
	TotalPaid         float64 `json:"total_paid"`
	TotalInterest     float64 `json:"total_interest"`
}

// ReferenceRate is the suggested default monthly rate for financing quotes
type ReferenceRate struct {
	MonthlyRate float64 `json:"monthly_rate"`
	BaseRate    float64 `json:"base_rate,omitempty"`
	BankSpread  float64 `json:"bank_spread,omitempty"`
	Date        string  `json:"date,omitempty"`
	Source      string  `json:"source"` // "bcb" or "config"
}
