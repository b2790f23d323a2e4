package fipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/config"
	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/repository"
)

var (
	// ErrNetworkFailure is returned when a lookup could not complete
	ErrNetworkFailure = errors.New("fipe lookup failed")
	// ErrEmptyResult is returned when a lookup succeeded with no selectable options
	ErrEmptyResult = errors.New("fipe lookup returned no options")
)

// Client handles integration with the Parallelum FIPE API
type Client struct {
	baseURL  string
	client   *http.Client
	cache    repository.Cache
	cacheTTL time.Duration
	log      *logrus.Logger
}

// NewClient initializes a new FIPE client. cache may be nil to disable caching.
func NewClient(cfg *config.Config, cache repository.Cache, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.FIPEURL, "/"),
		client: &http.Client{
			Timeout: cfg.FIPETimeout,
		},
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		log:      log,
	}
}

// BrandsPath is the lookup path listing all brands
func BrandsPath() string { return "" }

// ModelsPath is the lookup path listing the models of a brand
func ModelsPath(brand models.Code) string {
	return fmt.Sprintf("%s/modelos", brand)
}

// YearsPath is the lookup path listing the model years of a model
func YearsPath(brand, model models.Code) string {
	return fmt.Sprintf("%s/modelos/%s/anos", brand, model)
}

// ValuationPath is the lookup path of one brand/model/year valuation
func ValuationPath(brand, model, year models.Code) string {
	return fmt.Sprintf("%s/modelos/%s/anos/%s", brand, model, year)
}

// Fetch returns the raw JSON body for path, served from cache within the TTL
func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, path); ok {
			c.log.Debugf("FIPE cache hit: %q", path)
			return body, nil
		}
	}

	body, err := c.sendRequest(ctx, path)
	if err != nil {
		c.log.Warnf("FIPE lookup %q failed: %v", path, err)
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, path, body, c.cacheTTL); err != nil {
			c.log.Warnf("Failed to cache FIPE response for %q: %v", path, err)
		}
	}
	return body, nil
}

// sendRequest issues the GET and checks that the body is JSON
func (c *Client) sendRequest(ctx context.Context, path string) (json.RawMessage, error) {
	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrNetworkFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrNetworkFailure, err)
	}

	c.log.Debugf("FIPE response for %q: %s", path, string(body))

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrNetworkFailure)
	}
	return body, nil
}

// Brands lists all brands
func (c *Client) Brands(ctx context.Context) ([]models.CatalogEntry, error) {
	return c.fetchEntries(ctx, BrandsPath())
}

// Models lists the models of a brand
func (c *Client) Models(ctx context.Context, brand models.Code) ([]models.CatalogEntry, error) {
	body, err := c.Fetch(ctx, ModelsPath(brand))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Models []models.CatalogEntry `json:"modelos"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode models: %w", ErrNetworkFailure, err)
	}
	if len(resp.Models) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResult, ModelsPath(brand))
	}
	return resp.Models, nil
}

// Years lists the model years of a model
func (c *Client) Years(ctx context.Context, brand, model models.Code) ([]models.CatalogEntry, error) {
	return c.fetchEntries(ctx, YearsPath(brand, model))
}

// Valuation fetches the FIPE valuation of a brand/model/year triple.
// PriceValue is left for the caller to parse from PriceText.
func (c *Client) Valuation(ctx context.Context, brand, model, year models.Code) (*models.VehicleValuation, error) {
	path := ValuationPath(brand, model, year)
	body, err := c.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Valor         string `json:"Valor"`
		Marca         string `json:"Marca"`
		Modelo        string `json:"Modelo"`
		AnoModelo     int    `json:"AnoModelo"`
		Combustivel   string `json:"Combustivel"`
		CodigoFipe    string `json:"CodigoFipe"`
		MesReferencia string `json:"MesReferencia"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode valuation: %w", ErrNetworkFailure, err)
	}
	if resp.Valor == "" || resp.Marca == "" || resp.Modelo == "" || resp.MesReferencia == "" || resp.CodigoFipe == "" {
		return nil, fmt.Errorf("%w: incomplete valuation for %s", ErrNetworkFailure, path)
	}

	return &models.VehicleValuation{
		BrandName:      resp.Marca,
		ModelName:      resp.Modelo,
		ModelYear:      resp.AnoModelo,
		Fuel:           resp.Combustivel,
		ReferenceMonth: strings.TrimSpace(resp.MesReferencia),
		FipeCode:       resp.CodigoFipe,
		PriceText:      resp.Valor,
	}, nil
}

func (c *Client) fetchEntries(ctx context.Context, path string) ([]models.CatalogEntry, error) {
	body, err := c.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	var entries []models.CatalogEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %q: %w", ErrNetworkFailure, path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyResult, path)
	}
	return entries, nil
}
