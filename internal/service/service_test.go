package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/autosmc/internal/calc"
	"github.com/Dan9191/autosmc/internal/config"
	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/repository"
	"github.com/Dan9191/autosmc/internal/utils"
)

type stubRateProvider struct {
	rate models.ReferenceRate
	err  error
}

func (p *stubRateProvider) GetMonthlyRate(context.Context) (models.ReferenceRate, error) {
	return p.rate, p.err
}

type stubMailer struct {
	to     string
	report *models.Report
	csv    []byte
	err    error
}

func (m *stubMailer) SendReport(to string, report *models.Report, csv []byte) error {
	m.to, m.report, m.csv = to, report, csv
	return m.err
}

func newTestService(t *testing.T, opts Options) (*Service, *stubCatalog) {
	t.Helper()
	catalog := newStubCatalog()
	opts.City = "São Miguel dos Campos - AL"
	svc := NewService(NewSelector(catalog, quietLogger()), repository.NewSessionRepositoryMemory(), config.DefaultRates(), opts, quietLogger())
	svc.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	return svc, catalog
}

// selectPolo walks a new session through brand, model and year
func selectPolo(t *testing.T, svc *Service, year string) *models.Session {
	t.Helper()
	ctx := context.Background()

	session, brands, err := svc.OpenSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brands)

	_, modelOptions, err := svc.ChooseBrand(ctx, session.ID, "VW - VolksWagen")
	require.NoError(t, err)
	require.Len(t, modelOptions, 2)

	_, yearOptions, err := svc.ChooseModel(ctx, session.ID, "Polo 1.0")
	require.NoError(t, err)
	require.Len(t, yearOptions, 2)

	session, err = svc.ChooseYear(ctx, session.ID, year)
	require.NoError(t, err)
	return session
}

func TestSessionFlow(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	session := selectPolo(t, svc, "2024 Flex")
	require.NotNil(t, session.Valuation)
	assert.Equal(t, 100000.0, session.Valuation.PriceValue)
	assert.Equal(t, "2024 Flex", session.Year.Name)

	stored, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Valuation.FipeCode, stored.Valuation.FipeCode)
}

func TestChooseBrand_ResetsDownstream(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	session := selectPolo(t, svc, "2024 Flex")

	updated, options, err := svc.ChooseBrand(ctx, session.ID, "Fiat")
	require.NoError(t, err)
	assert.Empty(t, options)
	assert.Nil(t, updated.Model)
	assert.Nil(t, updated.Valuation)

	_, err = svc.Report(ctx, session.ID, 0, 0)
	assert.ErrorIs(t, err, ErrNoValuation)
}

func TestChoose_OutOfOrderAndUnknown(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	session, _, err := svc.OpenSession(ctx)
	require.NoError(t, err)

	_, _, err = svc.ChooseModel(ctx, session.ID, "Polo 1.0")
	assert.ErrorIs(t, err, ErrStepOrder)
	_, err = svc.ChooseYear(ctx, session.ID, "2024 Flex")
	assert.ErrorIs(t, err, ErrStepOrder)

	_, _, err = svc.ChooseBrand(ctx, session.ID, "Tesla")
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, _, err = svc.ChooseBrand(ctx, "missing", "Fiat")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestChooseYear_ParseErrorSurfaces(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	session, _, err := svc.OpenSession(ctx)
	require.NoError(t, err)
	_, _, err = svc.ChooseBrand(ctx, session.ID, "VW - VolksWagen")
	require.NoError(t, err)
	_, _, err = svc.ChooseModel(ctx, session.ID, "Polo 1.0")
	require.NoError(t, err)

	_, err = svc.ChooseYear(ctx, session.ID, "2023 Flex")
	var perr *utils.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestChooseYear_FailedLookupClearsPreviousValuation(t *testing.T) {
	svc, catalog := newTestService(t, Options{})
	ctx := context.Background()
	session := selectPolo(t, svc, "2024 Flex")
	require.NotNil(t, session.Valuation)

	catalog.years["8000"] = append(catalog.years["8000"], models.CatalogEntry{Name: "2021 Flex", Code: "2021-5"})
	updated, err := svc.ChooseYear(ctx, session.ID, "2021 Flex")
	require.NoError(t, err)
	assert.Nil(t, updated.Year)
	assert.Nil(t, updated.Valuation)
	assert.Equal(t, "Polo 1.0", updated.Model.Name)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Valuation)
	_, err = svc.Report(ctx, session.ID, 1.95, 48)
	assert.ErrorIs(t, err, ErrNoValuation)
}

func TestReport(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	session := selectPolo(t, svc, "2024 Flex")

	report, err := svc.Report(context.Background(), session.ID, 1.95, 48)
	require.NoError(t, err)

	assert.Equal(t, "São Miguel dos Campos - AL", report.City)
	assert.InDelta(t, 3000.0, report.Costs.VehicleTax, 1e-9)
	assert.InDelta(t, 5000.0, report.Costs.InsuranceEstimate, 1e-9)
	assert.Equal(t, 180.0, report.Costs.LicensingFee)
	assert.Equal(t, 102000.0, report.LocalMarketAverage)
	assert.Equal(t, -4.2, report.DepreciationEstimate)
	assert.Len(t, report.Maintenance, 4)

	require.Len(t, report.CostTable, 4)
	assert.Equal(t, models.CostLine{Service: "Troca de Óleo (Estimada)", Value: 350}, report.CostTable[0])
	assert.Equal(t, "IPVA 2026", report.CostTable[3].Service)

	require.NotNil(t, report.Financing)
	assert.Equal(t, 3227.10, report.Financing.InstallmentAmount)
}

func TestReport_ZeroRateRejected(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	session := selectPolo(t, svc, "2024 Flex")

	report, err := svc.Report(ctx, session.ID, svc.DefaultMonthlyRate(), 12)
	require.NoError(t, err)
	assert.Equal(t, 1.95, report.Financing.MonthlyRate)

	_, err = svc.Report(ctx, session.ID, 0, 12)
	assert.ErrorIs(t, err, calc.ErrInvalidFinancingParameters)
	_, err = svc.Report(ctx, session.ID, -1, 12)
	assert.ErrorIs(t, err, calc.ErrInvalidFinancingParameters)

	report, err = svc.Report(ctx, session.ID, 1.95, 0)
	require.NoError(t, err)
	assert.Nil(t, report.Financing)
}

func TestCompare(t *testing.T) {
	svc, catalog := newTestService(t, Options{})
	ctx := context.Background()

	a := selectPolo(t, svc, "2024 Flex")
	b, _, err := svc.OpenSession(ctx)
	require.NoError(t, err)
	_, _, err = svc.ChooseBrand(ctx, b.ID, "VW - VolksWagen")
	require.NoError(t, err)
	_, _, err = svc.ChooseModel(ctx, b.ID, "Gol 1.0 Flex 12V 5p")
	require.NoError(t, err)
	_, err = svc.ChooseYear(ctx, b.ID, "2022 Gasolina")
	require.NoError(t, err)

	cmp, err := svc.Compare(ctx, a.ID, b.ID, 1.95, 48)
	require.NoError(t, err)
	require.Len(t, cmp.Vehicles, 2)
	assert.Equal(t, 1.95, cmp.MonthlyRate)
	assert.Equal(t, "Polo 1.0", cmp.Vehicles[0].Model)
	assert.Equal(t, 10000.0, cmp.Vehicles[0].AnnualMaintenance)
	assert.Greater(t, cmp.Vehicles[0].Quote.InstallmentAmount, cmp.Vehicles[1].Quote.InstallmentAmount)

	_, err = svc.Compare(ctx, a.ID, b.ID, 1.95, 0)
	assert.ErrorIs(t, err, calc.ErrInvalidFinancingParameters)
	_, err = svc.Compare(ctx, a.ID, b.ID, 0, 48)
	assert.ErrorIs(t, err, calc.ErrInvalidFinancingParameters)

	empty, _, err := svc.OpenSession(ctx)
	require.NoError(t, err)
	_, err = svc.Compare(ctx, a.ID, empty.ID, 1.95, 48)
	assert.ErrorIs(t, err, ErrNoValuation)

	assert.Greater(t, catalog.brandCalls, 0)
}

func TestExportCSV(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	session := selectPolo(t, svc, "2024 Flex")

	data, err := svc.ExportCSV(context.Background(), session.ID)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Serviço,Valor (R$)",
		"Troca de Óleo (Estimada),350.00",
		"Seguro Anual Médio,5000.00",
		"Licenciamento,180.00",
		"IPVA 2026,3000.00",
		"",
	}, "\n")
	assert.Equal(t, want, string(data))
}

func TestEmailReport(t *testing.T) {
	mailer := &stubMailer{}
	svc, _ := newTestService(t, Options{Mailer: mailer})
	session := selectPolo(t, svc, "2024 Flex")

	require.NoError(t, svc.EmailReport(context.Background(), session.ID, "cliente@example.com"))
	assert.Equal(t, "cliente@example.com", mailer.to)
	assert.Equal(t, "Polo 1.0", mailer.report.Valuation.ModelName)
	assert.Contains(t, string(mailer.csv), "Licenciamento,180.00")

	mailer.err = errors.New("smtp down")
	assert.Error(t, svc.EmailReport(context.Background(), session.ID, "cliente@example.com"))
}

func TestEmailReport_Disabled(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	err := svc.EmailReport(context.Background(), "any", "cliente@example.com")
	assert.ErrorIs(t, err, ErrMailDisabled)
}

func TestReferenceRate(t *testing.T) {
	provider := &stubRateProvider{rate: models.ReferenceRate{MonthlyRate: 2.02, BaseRate: 1.22, Source: "bcb"}}
	svc, _ := newTestService(t, Options{RateProvider: provider})

	rate := svc.ReferenceRate(context.Background())
	assert.Equal(t, "bcb", rate.Source)
	assert.Equal(t, 2.02, rate.MonthlyRate)

	provider.err = errors.New("timeout")
	rate = svc.ReferenceRate(context.Background())
	assert.Equal(t, "config", rate.Source)
	assert.Equal(t, 1.95, rate.MonthlyRate)
}

func TestCloseSessionAndWarmUp(t *testing.T) {
	svc, catalog := newTestService(t, Options{})
	ctx := context.Background()

	assert.Equal(t, 2, svc.WarmUp(ctx))
	assert.Equal(t, 1, catalog.brandCalls)

	session, _, err := svc.OpenSession(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.CloseSession(ctx, session.ID))
	assert.ErrorIs(t, svc.CloseSession(ctx, session.ID), repository.ErrSessionNotFound)
}
