package models

import "time"

// Session holds the selection state of one selector panel
type Session struct {
	ID        string            `json:"id"`
	Brand     *CatalogEntry     `json:"brand,omitempty"`
	Model     *CatalogEntry     `json:"model,omitempty"`
	Year      *CatalogEntry     `json:"year,omitempty"`
	Valuation *VehicleValuation `json:"valuation,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SetBrand selects a brand and clears everything downstream
func (s *Session) SetBrand(e CatalogEntry) {
	s.Brand = &e
	s.Model = nil
	s.Year = nil
	s.Valuation = nil
}

// SetModel selects a model and clears the year and valuation
func (s *Session) SetModel(e CatalogEntry) {
	s.Model = &e
	s.Year = nil
	s.Valuation = nil
}

// ClearYear drops the year and valuation, keeping brand and model
func (s *Session) ClearYear() {
	s.Year = nil
	s.Valuation = nil
}

// SetYear selects a year together with its valuation
func (s *Session) SetYear(e CatalogEntry, v *VehicleValuation) {
	s.Year = &e
	s.Valuation = v
}
