package collector

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

func sampleResults() []domain.CountyWeather {
	temp := 36.1
	return []domain.CountyWeather{
		{
			CountyName:  "Blanco",
			Coordinates: domain.Coordinates{Latitude: 30.266, Longitude: -98.4},
			Data: domain.WeatherData{
				Temperature: &domain.Measurement{Value: &temp, Unit: "wmoUnit:degC"},
				Hazards: []domain.Hazard{
					{Phenomenon: "HT", Significance: "Y"},
					{Phenomenon: "FL", Significance: "W"},
				},
				Alerts: []domain.Alert{
					{Event: "Heat Advisory", Severity: "Moderate", Urgency: "Expected", Expires: "2026-08-31T20:00:00-05:00"},
				},
			},
		},
	}
}

func TestWriteOutputsMirrorsToAllDirs(t *testing.T) {
	base := t.TempDir()
	t.Chdir(base)

	outputDir := filepath.Join(base, "weather_data")
	now := time.Date(2026, time.August, 30, 19, 30, 0, 0, time.UTC)
	if err := WriteOutputs(outputDir, sampleResults(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, dir := range []string{outputDir, "public", "dist"} {
		for _, name := range []string{"texas_counties_weather.json", "texas_counties_weather.csv", "weather_timestamp.json"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Fatalf("missing %s in %s: %v", name, dir, err)
			}
		}
	}
}

func TestCSVKeepsFirstHazardAndAlertOnly(t *testing.T) {
	base := t.TempDir()
	t.Chdir(base)

	outputDir := filepath.Join(base, "weather_data")
	if err := WriteOutputs(outputDir, sampleResults(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file, err := os.Open(filepath.Join(outputDir, "texas_counties_weather.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}

	byColumn := map[string]string{}
	for i, column := range rows[0] {
		byColumn[column] = rows[1][i]
	}
	if byColumn["countyName"] != "Blanco" {
		t.Fatalf("unexpected county name: %q", byColumn["countyName"])
	}
	if byColumn["temperature"] != "36.1" || byColumn["temperature_unit"] != "wmoUnit:degC" {
		t.Fatalf("unexpected temperature columns: %v", byColumn)
	}
	if byColumn["hazard_phenomenon"] != "HT" {
		t.Fatalf("expected first hazard only, got %q", byColumn["hazard_phenomenon"])
	}
	if byColumn["alert_event"] != "Heat Advisory" {
		t.Fatalf("expected first alert event, got %q", byColumn["alert_event"])
	}
	if byColumn["relativeHumidity"] != "" {
		t.Fatalf("expected empty humidity column, got %q", byColumn["relativeHumidity"])
	}
}

func TestTimestampUsesCentralTime(t *testing.T) {
	base := t.TempDir()
	t.Chdir(base)

	outputDir := filepath.Join(base, "weather_data")
	now := time.Date(2026, time.August, 30, 19, 30, 0, 0, time.UTC)
	if err := WriteOutputs(outputDir, nil, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(outputDir, "weather_timestamp.json"))
	if err != nil {
		t.Fatalf("read timestamp: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}

	if payload["last_updated"] != "August 30, 2026 at 02:30 PM CDT" {
		t.Fatalf("unexpected formatted time: %q", payload["last_updated"])
	}
	if !strings.HasPrefix(payload["timestamp_utc"], "2026-08-30T19:30:00") {
		t.Fatalf("unexpected utc timestamp: %q", payload["timestamp_utc"])
	}
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collector.yaml")
	content := "max_workers: 8\ninclude_alerts: true\noutput_dir: /tmp/out\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := LoadConfigFile(path, &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxWorkers != 8 || !cfg.IncludeAlerts || cfg.OutputDir != "/tmp/out" {
		t.Fatalf("config not merged: %+v", cfg)
	}
	if cfg.BaseURL != "https://api.weather.gov" {
		t.Fatalf("expected untouched default base URL, got %q", cfg.BaseURL)
	}
}
