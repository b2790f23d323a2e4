package bcb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/config"
	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/utils"
)

const requestTimeout = 10 * time.Second

// BCBClient handles integration with the Central Bank of Brazil SGS series API
type BCBClient struct {
	url    string
	series string
	spread float64
	client *http.Client
	log    *logrus.Logger
}

// NewBCBClient initializes a new BCB client
func NewBCBClient(cfg *config.Config, log *logrus.Logger) *BCBClient {
	return &BCBClient{
		url:    strings.TrimRight(cfg.BCBURL, "/"),
		series: cfg.BCBSeries,
		spread: cfg.BankSpread,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

// seriesURL returns the URL of the latest observation of the series as XML
func (c *BCBClient) seriesURL() string {
	return fmt.Sprintf("%s/bcdata.sgs.%s/dados/ultimos/1?formato=xml", c.url, c.series)
}

// sendRequest fetches the raw XML document
func (c *BCBClient) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.seriesURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("BCB XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the date and value of the latest series item
func (c *BCBClient) parseXMLResponse(rawBody []byte) (string, float64, error) {
	doc := etree.NewDocument()
	// SGS declares ISO-8859-1; dates and decimal-comma numbers are plain ASCII
	doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return "", 0, fmt.Errorf("failed to parse XML: %w", err)
	}

	items := doc.FindElements("//item")
	if len(items) == 0 {
		return "", 0, fmt.Errorf("no series data found in XML")
	}

	// Items are in ascending date order
	latest := items[len(items)-1]
	valueElement := latest.FindElement("./valor")
	if valueElement == nil {
		return "", 0, fmt.Errorf("valor element not found in XML")
	}

	rate, err := utils.ParseDecimalComma(valueElement.Text())
	if err != nil {
		return "", 0, fmt.Errorf("failed to parse rate: %w", err)
	}

	var date string
	if dateElement := latest.FindElement("./data"); dateElement != nil {
		date = strings.TrimSpace(dateElement.Text())
	}
	return date, rate, nil
}

// GetMonthlyRate retrieves the latest monthly Selic rate and adds the bank spread
func (c *BCBClient) GetMonthlyRate(ctx context.Context) (models.ReferenceRate, error) {
	body, err := c.sendRequest(ctx)
	if err != nil {
		return models.ReferenceRate{}, err
	}

	date, base, err := c.parseXMLResponse(body)
	if err != nil {
		return models.ReferenceRate{}, err
	}

	rate := models.ReferenceRate{
		MonthlyRate: utils.RoundCents(base + c.spread),
		BaseRate:    base,
		BankSpread:  c.spread,
		Date:        date,
		Source:      "bcb",
	}

	c.log.Infof("Retrieved monthly rate: %.2f%% (including %.2f%% bank spread)", rate.MonthlyRate, c.spread)
	return rate, nil
}
