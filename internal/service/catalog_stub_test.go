package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/integrations/fipe"
	"github.com/Dan9191/autosmc/internal/models"
)

// stubCatalog is an in-memory Catalog that counts every call
type stubCatalog struct {
	brands     []models.CatalogEntry
	models     map[models.Code][]models.CatalogEntry
	years      map[models.Code][]models.CatalogEntry
	valuations map[models.Code]models.VehicleValuation
	failBrands bool

	brandCalls, modelCalls, yearCalls, valuationCalls int
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		brands: []models.CatalogEntry{
			{Name: "Fiat", Code: "21"},
			{Name: "VW - VolksWagen", Code: "59"},
		},
		models: map[models.Code][]models.CatalogEntry{
			"59": {{Name: "Gol 1.0 Flex 12V 5p", Code: "5940"}, {Name: "Polo 1.0", Code: "8000"}},
		},
		years: map[models.Code][]models.CatalogEntry{
			"5940": {{Name: "2022 Gasolina", Code: "2022-1"}},
			"8000": {{Name: "2024 Flex", Code: "2024-5"}, {Name: "2023 Flex", Code: "2023-5"}},
		},
		valuations: map[models.Code]models.VehicleValuation{
			"2022-1": {BrandName: "VW - VolksWagen", ModelName: "Gol 1.0 Flex 12V 5p", ReferenceMonth: "outubro de 2026", FipeCode: "005340-6", PriceText: "R$ 75.432,10"},
			"2024-5": {BrandName: "VW - VolksWagen", ModelName: "Polo 1.0", ReferenceMonth: "outubro de 2026", FipeCode: "005530-1", PriceText: "R$ 100.000,00"},
			"2023-5": {BrandName: "VW - VolksWagen", ModelName: "Polo 1.0", FipeCode: "005530-1", PriceText: "cem mil"},
		},
	}
}

func (c *stubCatalog) Brands(_ context.Context) ([]models.CatalogEntry, error) {
	c.brandCalls++
	if c.failBrands {
		return nil, fmt.Errorf("%w: connection refused", fipe.ErrNetworkFailure)
	}
	if len(c.brands) == 0 {
		return nil, fipe.ErrEmptyResult
	}
	return c.brands, nil
}

func (c *stubCatalog) Models(_ context.Context, brand models.Code) ([]models.CatalogEntry, error) {
	c.modelCalls++
	if len(c.models[brand]) == 0 {
		return nil, fipe.ErrEmptyResult
	}
	return c.models[brand], nil
}

func (c *stubCatalog) Years(_ context.Context, _, model models.Code) ([]models.CatalogEntry, error) {
	c.yearCalls++
	if len(c.years[model]) == 0 {
		return nil, fipe.ErrEmptyResult
	}
	return c.years[model], nil
}

func (c *stubCatalog) Valuation(_ context.Context, _, _, year models.Code) (*models.VehicleValuation, error) {
	c.valuationCalls++
	v, ok := c.valuations[year]
	if !ok {
		return nil, fmt.Errorf("%w: unexpected status code: 404", fipe.ErrNetworkFailure)
	}
	return &v, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// pick returns a Chooser answering each step with a fixed name
func pick(brand, model, year string) Chooser {
	return ChooserFunc(func(step Step, _ []string) (string, bool) {
		switch step {
		case StepBrand:
			return brand, true
		case StepModel:
			return model, true
		default:
			return year, true
		}
	})
}
