package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/utils"
)

// Catalog is the hierarchical FIPE lookup the selector drives
type Catalog interface {
	Brands(ctx context.Context) ([]models.CatalogEntry, error)
	Models(ctx context.Context, brand models.Code) ([]models.CatalogEntry, error)
	Years(ctx context.Context, brand, model models.Code) ([]models.CatalogEntry, error)
	Valuation(ctx context.Context, brand, model, year models.Code) (*models.VehicleValuation, error)
}

// Step identifies one of the three dependent selections
type Step int

const (
	StepBrand Step = iota
	StepModel
	StepYear
)

func (s Step) String() string {
	switch s {
	case StepBrand:
		return "brand"
	case StepModel:
		return "model"
	case StepYear:
		return "year"
	}
	return "unknown"
}

// Chooser picks one option name for a step; ok is false when the user declines
type Chooser interface {
	Choose(step Step, options []string) (name string, ok bool)
}

// ChooserFunc adapts a function to Chooser
type ChooserFunc func(step Step, options []string) (string, bool)

func (f ChooserFunc) Choose(step Step, options []string) (string, bool) {
	return f(step, options)
}

// Selector maps brand, model and year choices onto catalog lookups.
// Lookup failures are absorbed here and surface as empty option lists.
type Selector struct {
	catalog Catalog
	log     *logrus.Logger
}

// NewSelector creates a selector over the given catalog
func NewSelector(catalog Catalog, log *logrus.Logger) *Selector {
	return &Selector{catalog: catalog, log: log}
}

// BrandOptions lists all brands, or nothing if the lookup failed
func (s *Selector) BrandOptions(ctx context.Context) []models.CatalogEntry {
	entries, err := s.catalog.Brands(ctx)
	if err != nil {
		s.log.Warnf("No brand options: %v", err)
		return nil
	}
	return entries
}

// ModelOptions lists the models of a brand, or nothing if the lookup failed
func (s *Selector) ModelOptions(ctx context.Context, brand models.Code) []models.CatalogEntry {
	entries, err := s.catalog.Models(ctx, brand)
	if err != nil {
		s.log.Warnf("No model options for brand %s: %v", brand, err)
		return nil
	}
	return entries
}

// YearOptions lists the model years of a model, or nothing if the lookup failed
func (s *Selector) YearOptions(ctx context.Context, brand, model models.Code) []models.CatalogEntry {
	entries, err := s.catalog.Years(ctx, brand, model)
	if err != nil {
		s.log.Warnf("No year options for %s/%s: %v", brand, model, err)
		return nil
	}
	return entries
}

// Valuation resolves the final triple and parses its price. It returns
// nil without error when the lookup failed, and a *utils.ParseError when
// the price text is malformed.
func (s *Selector) Valuation(ctx context.Context, brand, model, year models.Code) (*models.VehicleValuation, error) {
	v, err := s.catalog.Valuation(ctx, brand, model, year)
	if err != nil {
		s.log.Warnf("No valuation for %s/%s/%s: %v", brand, model, year, err)
		return nil, nil
	}

	price, err := utils.ParsePrice(v.PriceText)
	if err != nil {
		s.log.Errorf("Valuation %s has unparseable price: %v", v.FipeCode, err)
		return nil, err
	}

	valuation := *v
	valuation.PriceValue = price
	return &valuation, nil
}

// SelectVehicle runs the brand, model and year steps in order, asking chooser
// at each one. It returns nil without error as soon as a step has no options
// or the chooser declines; no later lookups are issued.
func (s *Selector) SelectVehicle(ctx context.Context, chooser Chooser) (*models.VehicleValuation, error) {
	brand, ok := s.choose(StepBrand, s.BrandOptions(ctx), chooser)
	if !ok {
		return nil, nil
	}
	model, ok := s.choose(StepModel, s.ModelOptions(ctx, brand.Code), chooser)
	if !ok {
		return nil, nil
	}
	year, ok := s.choose(StepYear, s.YearOptions(ctx, brand.Code, model.Code), chooser)
	if !ok {
		return nil, nil
	}
	return s.Valuation(ctx, brand.Code, model.Code, year.Code)
}

func (s *Selector) choose(step Step, options []models.CatalogEntry, chooser Chooser) (models.CatalogEntry, bool) {
	if len(options) == 0 {
		return models.CatalogEntry{}, false
	}
	name, ok := chooser.Choose(step, models.Names(options))
	if !ok {
		return models.CatalogEntry{}, false
	}
	return models.FindByName(options, name)
}
