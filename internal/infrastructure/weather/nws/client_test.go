package nws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestActiveAlertsParsesFeed(t *testing.T) {
	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(`{
			"features": [
				{
					"id": "https://api.weather.gov/alerts/urn:oid:1",
					"properties": {
						"event": "Flood Warning",
						"headline": "Flood Warning issued",
						"description": "The Blanco River is above flood stage.",
						"severity": "Severe",
						"urgency": "Immediate",
						"certainty": "Observed",
						"effective": "2026-08-30T10:00:00-05:00",
						"expires": "2026-08-31T10:00:00-05:00",
						"sent": "2026-08-30T10:00:00-05:00",
						"areaDesc": "Blanco; Hays",
						"geocode": {"SAME": ["048031", "048209"]}
					}
				}
			]
		}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{RequestsPerSecond: 1000})
	alerts, err := client.ActiveAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/alerts/active?area=TX" {
		t.Fatalf("unexpected request path: %s", gotPath)
	}
	if gotUA != "WeatherDataCollector/1.0" {
		t.Fatalf("unexpected user agent: %s", gotUA)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	alert := alerts[0]
	if alert.Event != "Flood Warning" || alert.AreaDesc != "Blanco; Hays" {
		t.Fatalf("unexpected alert fields: %+v", alert)
	}
	if len(alert.SameCodes) != 2 || alert.SameCodes[0] != "048031" {
		t.Fatalf("unexpected SAME codes: %v", alert.SameCodes)
	}
	if alert.Link != alert.ID {
		t.Fatalf("expected link to mirror feed id")
	}
}

func TestCountyConditionsResolvesGridpoint(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "30.2660,-98.4000") {
			t.Errorf("unexpected points path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"properties": {"forecastGridData": "` + server.URL + `/gridpoints/EWX/1,2"}}`))
	})
	mux.HandleFunc("/gridpoints/EWX/1,2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"properties": {
				"temperature": {
					"uom": "wmoUnit:degC",
					"values": [
						{"validTime": "2026-08-30T15:00:00+00:00/PT1H", "value": 36.1},
						{"validTime": "2026-08-30T16:00:00+00:00/PT1H", "value": 37.2}
					]
				},
				"relativeHumidity": {"uom": "wmoUnit:percent", "values": [{"validTime": "2026-08-30T15:00:00+00:00/PT1H", "value": 41}]},
				"hazards": {
					"values": [
						{"validTime": "2026-08-30T15:00:00+00:00/PT6H", "value": [
							{"phenomenon": "HT", "significance": "Y", "event_number": null}
						]}
					]
				},
				"probabilityOfPrecipitation": {"uom": "wmoUnit:percent", "values": []}
			}
		}`))
	})

	client := New(server.URL, Options{RequestsPerSecond: 1000})
	data, err := client.CountyConditions(context.Background(), 30.266, -98.4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.Temperature == nil || data.Temperature.Value == nil || *data.Temperature.Value != 36.1 {
		t.Fatalf("expected first temperature value, got %+v", data.Temperature)
	}
	if data.Temperature.Unit != "wmoUnit:degC" {
		t.Fatalf("unexpected temperature unit: %s", data.Temperature.Unit)
	}
	if data.RelativeHumidity == nil || *data.RelativeHumidity.Value != 41 {
		t.Fatalf("unexpected humidity: %+v", data.RelativeHumidity)
	}
	if data.ProbabilityOfPrecipitation != nil {
		t.Fatalf("expected nil measurement for empty series")
	}
	if data.Visibility != nil {
		t.Fatalf("expected nil measurement for absent series")
	}
	if len(data.Hazards) != 1 || data.Hazards[0].Phenomenon != "HT" || data.Hazards[0].Significance != "Y" {
		t.Fatalf("unexpected hazards: %+v", data.Hazards)
	}
}

func TestGetJSONReportsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail": "upstream maintenance"}`))
	}))
	defer server.Close()

	client := New(server.URL, Options{RequestsPerSecond: 1000})
	_, err := client.ActiveAlerts(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "upstream maintenance") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}
