package domain

// County is one row of the county centroid input file.
type County struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	FIPS      string  `json:"fips,omitempty"`
}

// Alert is one active NWS alert with the identifiers used for county
// matching (areaDesc text and SAME geocodes).
type Alert struct {
	ID          string   `json:"id"`
	Event       string   `json:"event"`
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Urgency     string   `json:"urgency"`
	Certainty   string   `json:"certainty"`
	Effective   string   `json:"effective"`
	Expires     string   `json:"expires"`
	AreaDesc    string   `json:"areaDesc"`
	SameCodes   []string `json:"sameCodes"`
	Sent        string   `json:"sent,omitempty"`
	Link        string   `json:"link,omitempty"`
}

// Measurement is the latest value of one gridpoint time series.
type Measurement struct {
	Value     *float64 `json:"value"`
	Unit      string   `json:"unit,omitempty"`
	ValidTime string   `json:"validTime,omitempty"`
}

type Hazard struct {
	Phenomenon   string `json:"phenomenon"`
	Significance string `json:"significance"`
	EventNumber  *int   `json:"eventNumber"`
	ValidTime    string `json:"validTime"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CountyWeather is the per-county output record of the collector. Optional
// series are omitted when the gridpoint response does not carry them.
type CountyWeather struct {
	CountyName  string      `json:"countyName"`
	Coordinates Coordinates `json:"coordinates"`
	Data        WeatherData `json:"data"`
}

type WeatherData struct {
	Temperature                *Measurement `json:"temperature,omitempty"`
	RelativeHumidity           *Measurement `json:"relativeHumidity,omitempty"`
	Hazards                    []Hazard     `json:"hazards,omitempty"`
	ProbabilityOfPrecipitation *Measurement `json:"probabilityOfPrecipitation,omitempty"`
	Visibility                 *Measurement `json:"visibility,omitempty"`
	Alerts                     []Alert      `json:"alerts,omitempty"`
}
