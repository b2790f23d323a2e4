package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/calc"
	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/repository"
)

var (
	// ErrStepOrder is returned when a step is chosen before the one it depends on
	ErrStepOrder = errors.New("previous step not selected")
	// ErrUnknownOption is returned when the chosen name is not among the options
	ErrUnknownOption = errors.New("option not available")
	// ErrNoValuation is returned when a session has no valuation to report on
	ErrNoValuation = errors.New("no vehicle valuation selected")
	// ErrMailDisabled is returned when no SMTP server is configured
	ErrMailDisabled = errors.New("report mailer disabled")
)

// RateProvider suggests a monthly financing rate
type RateProvider interface {
	GetMonthlyRate(ctx context.Context) (models.ReferenceRate, error)
}

// Mailer delivers an exported report
type Mailer interface {
	SendReport(to string, report *models.Report, csv []byte) error
}

// Service handles the dashboard business logic. Each selector panel is one
// session; the comparison view uses two independent sessions.
type Service struct {
	selector *Selector
	sessions repository.SessionRepository
	rates    models.RegionalRates
	city     string
	rateSrc  RateProvider
	mailer   Mailer
	log      *logrus.Logger
	now      func() time.Time
}

// Options holds the optional collaborators of a Service
type Options struct {
	City         string
	RateProvider RateProvider
	Mailer       Mailer
}

// NewService initializes a new service
func NewService(selector *Selector, sessions repository.SessionRepository, rates models.RegionalRates, opts Options, log *logrus.Logger) *Service {
	return &Service{
		selector: selector,
		sessions: sessions,
		rates:    rates,
		city:     opts.City,
		rateSrc:  opts.RateProvider,
		mailer:   opts.Mailer,
		log:      log,
		now:      time.Now,
	}
}

// Rates returns the configured regional constants
func (s *Service) Rates() models.RegionalRates {
	return s.rates
}

// OpenSession creates a selector panel and returns the brand options
func (s *Service) OpenSession(ctx context.Context) (*models.Session, []models.CatalogEntry, error) {
	session, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.Infof("Session opened: %s", session.ID)
	return session, s.selector.BrandOptions(ctx), nil
}

// GetSession returns the current selection of a session
func (s *Service) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return s.sessions.Get(ctx, id)
}

// CloseSession discards a session
func (s *Service) CloseSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infof("Session closed: %s", id)
	return nil
}

// ChooseBrand selects a brand by name and returns its model options
func (s *Service) ChooseBrand(ctx context.Context, id, name string) (*models.Session, []models.CatalogEntry, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	brand, ok := models.FindByName(s.selector.BrandOptions(ctx), name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: brand %q", ErrUnknownOption, name)
	}
	session.SetBrand(brand)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, err
	}

	return session, s.selector.ModelOptions(ctx, brand.Code), nil
}

// ChooseModel selects a model of the chosen brand and returns its year options
func (s *Service) ChooseModel(ctx context.Context, id, name string) (*models.Session, []models.CatalogEntry, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Brand == nil {
		return nil, nil, fmt.Errorf("%w: choose a brand first", ErrStepOrder)
	}

	model, ok := models.FindByName(s.selector.ModelOptions(ctx, session.Brand.Code), name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: model %q", ErrUnknownOption, name)
	}
	session.SetModel(model)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, err
	}

	return session, s.selector.YearOptions(ctx, session.Brand.Code, model.Code), nil
}

// ChooseYear selects a model year and fetches the valuation. When the
// valuation lookup fails any previous year and valuation are cleared.
func (s *Service) ChooseYear(ctx context.Context, id, name string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Brand == nil || session.Model == nil {
		return nil, fmt.Errorf("%w: choose a brand and model first", ErrStepOrder)
	}

	year, ok := models.FindByName(s.selector.YearOptions(ctx, session.Brand.Code, session.Model.Code), name)
	if !ok {
		return nil, fmt.Errorf("%w: year %q", ErrUnknownOption, name)
	}

	valuation, err := s.selector.Valuation(ctx, session.Brand.Code, session.Model.Code, year.Code)
	if err != nil {
		return nil, err
	}
	if valuation == nil {
		session.ClearYear()
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
		s.log.Infof("Session %s: no valuation for year %q", session.ID, name)
		return session, nil
	}

	session.SetYear(year, valuation)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.log.Infof("Session %s selected %s %s: %s", session.ID, valuation.BrandName, valuation.ModelName, valuation.PriceText)
	return session, nil
}

// Quote prices a financing plan. A zero or negative rate is rejected; callers
// pick DefaultMonthlyRate themselves when the user gave none.
func (s *Service) Quote(value, monthlyRate float64, installments int) (models.FinancingQuote, error) {
	return calc.Quote(value, monthlyRate, installments)
}

// DefaultMonthlyRate is the configured rate used when a request names none
func (s *Service) DefaultMonthlyRate() float64 {
	return s.rates.DefaultMonthlyRate
}

// ReferenceRate returns the suggested monthly rate, falling back to configuration
func (s *Service) ReferenceRate(ctx context.Context) models.ReferenceRate {
	fallback := models.ReferenceRate{MonthlyRate: s.rates.DefaultMonthlyRate, Source: "config"}
	if s.rateSrc == nil {
		return fallback
	}

	rate, err := s.rateSrc.GetMonthlyRate(ctx)
	if err != nil {
		s.log.Warnf("Reference rate unavailable, using default %.2f%%: %v", s.rates.DefaultMonthlyRate, err)
		return fallback
	}
	return rate
}

// WarmUp prefetches the brand list so the first panel opens from cache
func (s *Service) WarmUp(ctx context.Context) int {
	return len(s.selector.BrandOptions(ctx))
}
