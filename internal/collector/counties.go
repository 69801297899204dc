package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

const (
	columnLatitude  = "X (Lat)"
	columnLongitude = "Y (Long)"
	columnName      = "CNTY_NM"
	columnFIPS      = "FIPS"
)

// sampleCountyData is a 3-county slice of the full centroid export, enough
// to exercise the pipeline without sweeping all 254 counties.
const sampleCountyData = `X (Lat),Y (Long),CNTY_NM,CNTY_NBR,FIPS,Shape_Leng,Shape_Area,County Centroid Location
33.97408519,-99.77871109,Foard,79,48155,2.302711251,0.177999074,POINT (-99.77871109 33.97408519)
30.26636128,-98.39974086,Blanco,16,48031,1.683596565,0.173305894,POINT (-98.39974086 30.26636128)
33.60750375,-102.3430919,Hockley,111,48219,1.922123942,0.228718494,POINT (-102.3430919 33.60750375)`

// WriteSampleCountyFile writes the bundled sample to outputDir and returns
// its path.
func WriteSampleCountyFile(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "texas_counties_sample.csv")
	if err := os.WriteFile(path, []byte(sampleCountyData), 0o644); err != nil {
		return "", fmt.Errorf("write sample county file: %w", err)
	}
	return path, nil
}

// VerifyCountyFile checks that the CSV header carries the required columns
// before a run commits to a full sweep.
func VerifyCountyFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open county file: %w", err)
	}
	defer file.Close()

	header, err := csv.NewReader(file).Read()
	if err != nil {
		return fmt.Errorf("read county file header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[strings.TrimSpace(column)] = true
	}

	var missing []string
	for _, required := range []string{columnLatitude, columnLongitude, columnName} {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("county file %s missing required columns: %s", path, strings.Join(missing, ", "))
	}
	return nil
}

// LoadCounties reads county centroids from a CSV export. The FIPS column is
// optional; counties without it still match alerts by name.
func LoadCounties(path string) ([]domain.County, error) {
	if err := VerifyCountyFile(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open county file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read county file header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.TrimSpace(column)] = i
	}
	fipsIdx, hasFIPS := index[columnFIPS]

	var counties []domain.County
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("county file line %d: %w", line, err)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[index[columnLatitude]]), 64)
		if err != nil {
			return nil, fmt.Errorf("county file line %d: parse latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[index[columnLongitude]]), 64)
		if err != nil {
			return nil, fmt.Errorf("county file line %d: parse longitude: %w", line, err)
		}

		county := domain.County{
			Name:      strings.TrimSpace(row[index[columnName]]),
			Latitude:  lat,
			Longitude: lon,
		}
		if hasFIPS && fipsIdx < len(row) {
			county.FIPS = strings.TrimSpace(row[fipsIdx])
		}
		counties = append(counties, county)
	}
	return counties, nil
}
