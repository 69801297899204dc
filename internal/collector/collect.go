package collector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
	"github.com/tdis/disaster-chatbot/internal/core/ports"
)

// WeatherSource resolves current gridpoint conditions for a coordinate pair.
type WeatherSource interface {
	CountyConditions(ctx context.Context, lat, lon float64) (domain.WeatherData, error)
}

// Collector sweeps county centroids against the weather API with a bounded
// worker pool. A county that fails is logged and skipped; the sweep never
// aborts on one bad gridpoint.
type Collector struct {
	weather       WeatherSource
	alerts        ports.AlertSource
	maxWorkers    int
	includeAlerts bool
	logger        *slog.Logger
}

func New(weather WeatherSource, alerts ports.AlertSource, maxWorkers int, includeAlerts bool, logger *slog.Logger) *Collector {
	if maxWorkers <= 0 {
		maxWorkers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		weather:       weather,
		alerts:        alerts,
		maxWorkers:    maxWorkers,
		includeAlerts: includeAlerts,
		logger:        logger,
	}
}

// Run collects weather for every county and returns the successful results.
// Completion order is not deterministic.
func (c *Collector) Run(ctx context.Context, counties []domain.County) []domain.CountyWeather {
	var statewideAlerts []domain.Alert
	if c.includeAlerts && c.alerts != nil {
		alerts, err := c.alerts.ActiveAlerts(ctx)
		if err != nil {
			c.logger.Warn("active alerts fetch failed, continuing without alerts", "error", err)
		} else {
			statewideAlerts = alerts
			c.logger.Info("fetched active alerts", "count", len(alerts))
		}
	}

	c.logger.Info("starting county sweep", "counties", len(counties), "workers", c.maxWorkers)

	var (
		mu        sync.Mutex
		results   []domain.CountyWeather
		completed int
		wg        sync.WaitGroup
	)
	sem := make(chan struct{}, c.maxWorkers)

	for _, county := range counties {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(county domain.County) {
			defer wg.Done()
			defer func() { <-sem }()

			weather, err := c.collectCounty(ctx, county, statewideAlerts)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if err != nil {
				c.logger.Warn("county failed",
					"county", county.Name,
					"completed", completed,
					"total", len(counties),
					"error", err)
				return
			}
			results = append(results, weather)
			c.logger.Info("county processed",
				"county", county.Name,
				"completed", completed,
				"total", len(counties))
		}(county)
	}
	wg.Wait()
	return results
}

func (c *Collector) collectCounty(ctx context.Context, county domain.County, statewideAlerts []domain.Alert) (domain.CountyWeather, error) {
	data, err := c.weather.CountyConditions(ctx, county.Latitude, county.Longitude)
	if err != nil {
		return domain.CountyWeather{}, err
	}
	if c.includeAlerts {
		data.Alerts = MatchAlertsToCounty(county, statewideAlerts)
	}
	return domain.CountyWeather{
		CountyName: county.Name,
		Coordinates: domain.Coordinates{
			Latitude:  county.Latitude,
			Longitude: county.Longitude,
		},
		Data: data,
	}, nil
}
