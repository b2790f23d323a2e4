package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/utils"
)

// ErrInvalidFinancingParameters is returned for a non-positive rate or installment count
var ErrInvalidFinancingParameters = errors.New("invalid financing parameters")

// ComputeInstallment returns the level installment of a fixed-rate loan:
//
//	r = monthlyRatePercent / 100
//	installment = value * r / (1 - (1 + r)^-n)
func ComputeInstallment(value, monthlyRatePercent float64, numInstallments int) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("%w: value %v", ErrInvalidFinancingParameters, value)
	}
	if math.IsNaN(monthlyRatePercent) || math.IsInf(monthlyRatePercent, 0) || monthlyRatePercent <= 0 {
		return 0, fmt.Errorf("%w: monthly rate %v%%", ErrInvalidFinancingParameters, monthlyRatePercent)
	}
	if numInstallments <= 0 {
		return 0, fmt.Errorf("%w: %d installments", ErrInvalidFinancingParameters, numInstallments)
	}

	r := monthlyRatePercent / 100
	installment := (value * r) / (1 - math.Pow(1+r, -float64(numInstallments)))
	if math.IsNaN(installment) || math.IsInf(installment, 0) {
		return 0, fmt.Errorf("%w: rate %v%% over %d installments", ErrInvalidFinancingParameters, monthlyRatePercent, numInstallments)
	}
	return installment, nil
}

// Quote builds a FinancingQuote with amounts rounded to cents
func Quote(value, monthlyRatePercent float64, numInstallments int) (models.FinancingQuote, error) {
	installment, err := ComputeInstallment(value, monthlyRatePercent, numInstallments)
	if err != nil {
		return models.FinancingQuote{}, err
	}

	total := installment * float64(numInstallments)
	return models.FinancingQuote{
		MonthlyRate:       monthlyRatePercent,
		InstallmentCount:  numInstallments,
		InstallmentAmount: utils.RoundCents(installment),
		TotalPaid:         utils.RoundCents(total),
		TotalInterest:     utils.RoundCents(total - value),
	}, nil
}
