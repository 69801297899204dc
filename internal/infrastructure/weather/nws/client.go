package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

const defaultUserAgent = "WeatherDataCollector/1.0"

// Client talks to the National Weather Service API. All requests share one
// rate limiter so a county sweep stays within the service's courtesy limit.
type Client struct {
	baseURL    string
	area       string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Options struct {
	Area              string
	UserAgent         string
	HTTPClient        *http.Client
	RequestsPerSecond float64
}

func New(baseURL string, options Options) *Client {
	area := options.Area
	if area == "" {
		area = "TX"
	}
	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	rps := options.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		area:       area,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// ActiveAlerts fetches the active alert feed for the configured area.
func (c *Client) ActiveAlerts(ctx context.Context) ([]domain.Alert, error) {
	var resp struct {
		Features []struct {
			ID         string `json:"id"`
			Properties struct {
				Event       string `json:"event"`
				Headline    string `json:"headline"`
				Description string `json:"description"`
				Severity    string `json:"severity"`
				Urgency     string `json:"urgency"`
				Certainty   string `json:"certainty"`
				Effective   string `json:"effective"`
				Expires     string `json:"expires"`
				Sent        string `json:"sent"`
				AreaDesc    string `json:"areaDesc"`
				Geocode     struct {
					SAME []string `json:"SAME"`
				} `json:"geocode"`
			} `json:"properties"`
		} `json:"features"`
	}
	url := fmt.Sprintf("%s/alerts/active?area=%s", c.baseURL, c.area)
	if err := c.getJSON(ctx, url, &resp, "active alerts"); err != nil {
		return nil, err
	}

	alerts := make([]domain.Alert, 0, len(resp.Features))
	for _, feature := range resp.Features {
		p := feature.Properties
		alerts = append(alerts, domain.Alert{
			ID:          feature.ID,
			Event:       p.Event,
			Headline:    p.Headline,
			Description: p.Description,
			Severity:    p.Severity,
			Urgency:     p.Urgency,
			Certainty:   p.Certainty,
			Effective:   p.Effective,
			Expires:     p.Expires,
			AreaDesc:    p.AreaDesc,
			SameCodes:   p.Geocode.SAME,
			Sent:        p.Sent,
			Link:        feature.ID,
		})
	}
	return alerts, nil
}

// CountyConditions resolves the gridpoint for a coordinate pair and returns
// its current measurements. Alerts are matched separately and not filled in
// here.
func (c *Client) CountyConditions(ctx context.Context, lat, lon float64) (domain.WeatherData, error) {
	gridURL, err := c.forecastGridURL(ctx, lat, lon)
	if err != nil {
		return domain.WeatherData{}, err
	}
	return c.gridpoint(ctx, gridURL)
}

func (c *Client) forecastGridURL(ctx context.Context, lat, lon float64) (string, error) {
	var resp struct {
		Properties struct {
			ForecastGridData string `json:"forecastGridData"`
		} `json:"properties"`
	}
	url := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	if err := c.getJSON(ctx, url, &resp, "points"); err != nil {
		return "", err
	}
	if resp.Properties.ForecastGridData == "" {
		return "", fmt.Errorf("points %.4f,%.4f: no forecastGridData in response", lat, lon)
	}
	return resp.Properties.ForecastGridData, nil
}

type gridSeries struct {
	UOM    string `json:"uom"`
	Values []struct {
		ValidTime string   `json:"validTime"`
		Value     *float64 `json:"value"`
	} `json:"values"`
}

func (c *Client) gridpoint(ctx context.Context, gridURL string) (domain.WeatherData, error) {
	var resp struct {
		Properties struct {
			Temperature                gridSeries `json:"temperature"`
			RelativeHumidity           gridSeries `json:"relativeHumidity"`
			ProbabilityOfPrecipitation gridSeries `json:"probabilityOfPrecipitation"`
			Visibility                 gridSeries `json:"visibility"`
			Hazards                    struct {
				Values []struct {
					ValidTime string `json:"validTime"`
					Value     []struct {
						Phenomenon   string `json:"phenomenon"`
						Significance string `json:"significance"`
						EventNumber  *int   `json:"event_number"`
					} `json:"value"`
				} `json:"values"`
			} `json:"hazards"`
		} `json:"properties"`
	}
	if err := c.getJSON(ctx, gridURL, &resp, "gridpoint"); err != nil {
		return domain.WeatherData{}, err
	}

	data := domain.WeatherData{
		Temperature:                firstMeasurement(resp.Properties.Temperature),
		RelativeHumidity:           firstMeasurement(resp.Properties.RelativeHumidity),
		ProbabilityOfPrecipitation: firstMeasurement(resp.Properties.ProbabilityOfPrecipitation),
		Visibility:                 firstMeasurement(resp.Properties.Visibility),
	}
	for _, entry := range resp.Properties.Hazards.Values {
		for _, hazard := range entry.Value {
			data.Hazards = append(data.Hazards, domain.Hazard{
				Phenomenon:   hazard.Phenomenon,
				Significance: hazard.Significance,
				EventNumber:  hazard.EventNumber,
				ValidTime:    entry.ValidTime,
			})
		}
	}
	return data, nil
}

// firstMeasurement takes the first entry of a series, which the gridpoint
// API orders starting at the current interval.
func firstMeasurement(series gridSeries) *domain.Measurement {
	if len(series.Values) == 0 {
		return nil
	}
	first := series.Values[0]
	return &domain.Measurement{
		Value:     first.Value,
		Unit:      series.UOM,
		ValidTime: first.ValidTime,
	}
}

func (c *Client) getJSON(ctx context.Context, url string, out any, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("nws %s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("nws %s: build request: %w", op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nws %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("nws %s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("nws %s: decode response: %w", op, err)
	}
	return nil
}
