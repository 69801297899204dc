package collector

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

const (
	weatherJSONName   = "texas_counties_weather.json"
	weatherCSVName    = "texas_counties_weather.csv"
	timestampJSONName = "weather_timestamp.json"
)

var csvHeader = []string{
	"countyName",
	"latitude",
	"longitude",
	"temperature",
	"temperature_unit",
	"relativeHumidity",
	"precipitationProbability",
	"visibility",
	"visibility_unit",
	"hazard_phenomenon",
	"hazard_significance",
	"alert_event",
	"alert_severity",
	"alert_urgency",
	"alert_expires",
}

// WriteOutputs writes the weather JSON, the flattened CSV, and the timestamp
// file to the output directory and mirrors them into public/ and dist/ for
// the front-end build.
func WriteOutputs(outputDir string, results []domain.CountyWeather, now time.Time) error {
	dirs := []string{outputDir, "public", "dist"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	for _, dir := range dirs {
		if err := writeWeatherJSON(filepath.Join(dir, weatherJSONName), results); err != nil {
			return err
		}
		if err := writeWeatherCSV(filepath.Join(dir, weatherCSVName), results); err != nil {
			return err
		}
		if err := writeTimestampJSON(filepath.Join(dir, timestampJSONName), now); err != nil {
			return err
		}
	}
	return nil
}

func writeWeatherJSON(path string, results []domain.CountyWeather) error {
	if results == nil {
		results = []domain.CountyWeather{}
	}
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal weather data: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeWeatherCSV flattens each county to one row. Only the first hazard and
// first alert survive the flattening.
func writeWeatherCSV(path string, results []domain.CountyWeather) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, county := range results {
		if err := writer.Write(countyRow(county)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func countyRow(county domain.CountyWeather) []string {
	row := []string{
		county.CountyName,
		formatFloat(county.Coordinates.Latitude),
		formatFloat(county.Coordinates.Longitude),
	}

	data := county.Data
	row = append(row, measurementValue(data.Temperature), measurementUnit(data.Temperature))
	row = append(row, measurementValue(data.RelativeHumidity))
	row = append(row, measurementValue(data.ProbabilityOfPrecipitation))
	row = append(row, measurementValue(data.Visibility), measurementUnit(data.Visibility))

	if len(data.Hazards) > 0 {
		row = append(row, data.Hazards[0].Phenomenon, data.Hazards[0].Significance)
	} else {
		row = append(row, "", "")
	}

	if len(data.Alerts) > 0 {
		alert := data.Alerts[0]
		row = append(row, alert.Event, alert.Severity, alert.Urgency, alert.Expires)
	} else {
		row = append(row, "", "", "", "")
	}
	return row
}

func measurementValue(m *domain.Measurement) string {
	if m == nil || m.Value == nil {
		return ""
	}
	return strconv.FormatFloat(*m.Value, 'f', -1, 64)
}

func measurementUnit(m *domain.Measurement) string {
	if m == nil {
		return ""
	}
	return m.Unit
}

func writeTimestampJSON(path string, now time.Time) error {
	central, err := time.LoadLocation("America/Chicago")
	if err != nil {
		return fmt.Errorf("load central timezone: %w", err)
	}

	payload := map[string]string{
		"last_updated":  now.In(central).Format("January 02, 2006 at 03:04 PM MST"),
		"timestamp_utc": now.UTC().Format(time.RFC3339),
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timestamp: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
