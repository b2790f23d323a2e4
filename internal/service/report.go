package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/Dan9191/autosmc/internal/calc"
	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/utils"
)

// BuildReport assembles the detailed market report for one valuation.
// installments <= 0 omits the financing quote.
func (s *Service) BuildReport(v models.VehicleValuation, monthlyRate float64, installments int) (*models.Report, error) {
	costs := calc.ComputeRegionalCosts(v.PriceValue, s.rates)

	report := &models.Report{
		City:                 s.city,
		Valuation:            v,
		Costs:                costs,
		LocalMarketAverage:   utils.RoundCents(calc.LocalMarketAverage(v.PriceValue, s.rates)),
		DepreciationEstimate: s.rates.DepreciationEstimate,
		Maintenance:          s.rates.MaintenanceScores,
		CostTable: []models.CostLine{
			{Service: "Troca de Óleo (Estimada)", Value: s.rates.OilChangeEstimate},
			{Service: "Seguro Anual Médio", Value: costs.InsuranceEstimate},
			{Service: "Licenciamento", Value: costs.LicensingFee},
			{Service: fmt.Sprintf("IPVA %d", s.now().Year()), Value: costs.VehicleTax},
		},
	}

	if installments > 0 {
		quote, err := s.Quote(v.PriceValue, monthlyRate, installments)
		if err != nil {
			return nil, err
		}
		report.Financing = &quote
	}
	return report, nil
}

// Report builds the report for the valuation selected in a session
func (s *Service) Report(ctx context.Context, id string, monthlyRate float64, installments int) (*models.Report, error) {
	v, err := s.valuation(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.BuildReport(*v, monthlyRate, installments)
}

// Compare finances the vehicles of two sessions under the same terms
func (s *Service) Compare(ctx context.Context, idA, idB string, monthlyRate float64, installments int) (*models.Comparison, error) {
	cmp := &models.Comparison{
		MonthlyRate:      monthlyRate,
		InstallmentCount: installments,
	}
	for _, id := range []string{idA, idB} {
		v, err := s.valuation(ctx, id)
		if err != nil {
			return nil, err
		}
		quote, err := calc.Quote(v.PriceValue, monthlyRate, installments)
		if err != nil {
			return nil, err
		}
		cmp.Vehicles = append(cmp.Vehicles, models.ComparedVehicle{
			SessionID:         id,
			Model:             v.ModelName,
			PriceValue:        v.PriceValue,
			AnnualMaintenance: utils.RoundCents(calc.AnnualMaintenance(v.PriceValue, s.rates)),
			Quote:             quote,
		})
	}
	return cmp, nil
}

// ExportCSV renders the cost table of a session's report as UTF-8 CSV
func (s *Service) ExportCSV(ctx context.Context, id string) ([]byte, error) {
	report, err := s.Report(ctx, id, 0, 0)
	if err != nil {
		return nil, err
	}
	return EncodeCostTable(report.CostTable)
}

// EncodeCostTable writes the "Serviço, Valor (R$)" table
func EncodeCostTable(lines []models.CostLine) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Serviço", "Valor (R$)"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, line := range lines {
		if err := w.Write([]string{line.Service, utils.FormatAmount(line.Value)}); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// EmailReport sends the session's report and CSV to the given address
func (s *Service) EmailReport(ctx context.Context, id, to string) error {
	if s.mailer == nil {
		return ErrMailDisabled
	}

	report, err := s.Report(ctx, id, 0, 0)
	if err != nil {
		return err
	}
	data, err := EncodeCostTable(report.CostTable)
	if err != nil {
		return err
	}
	if err := s.mailer.SendReport(to, report, data); err != nil {
		return fmt.Errorf("failed to email report: %w", err)
	}
	return nil
}

func (s *Service) valuation(ctx context.Context, id string) (*models.VehicleValuation, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Valuation == nil {
		return nil, fmt.Errorf("%w: session %s", ErrNoValuation, id)
	}
	return session.Valuation, nil
}
