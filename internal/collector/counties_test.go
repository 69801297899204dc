package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSampleCountyFileAndLoad(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSampleCountyFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counties, err := LoadCounties(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counties) != 3 {
		t.Fatalf("expected 3 sample counties, got %d", len(counties))
	}

	blanco := counties[1]
	if blanco.Name != "Blanco" {
		t.Fatalf("expected Blanco second, got %s", blanco.Name)
	}
	if blanco.Latitude < 30.26 || blanco.Latitude > 30.27 {
		t.Fatalf("unexpected Blanco latitude: %f", blanco.Latitude)
	}
	if blanco.FIPS != "48031" {
		t.Fatalf("unexpected Blanco FIPS: %s", blanco.FIPS)
	}
}

func TestVerifyCountyFileMissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(path, []byte("name,lat,lon\nBlanco,30.2,-98.4\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	err := VerifyCountyFile(path)
	if err == nil {
		t.Fatalf("expected error for missing columns")
	}
}

func TestLoadCountiesMalformedRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counties.csv")
	content := "X (Lat),Y (Long),CNTY_NM\n" +
		"33.97408519,-99.77871109,Foard\n" +
		"30.26636128,-98.39974086\n" +
		"33.60750375,-102.3430919,Hockley\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	counties, err := LoadCounties(path)
	if err == nil {
		t.Fatalf("expected error for short row, got counties %+v", counties)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected error to name line 3, got: %v", err)
	}
}

func TestLoadCountiesWithoutFIPSColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counties.csv")
	content := "X (Lat),Y (Long),CNTY_NM\n30.26636128,-98.39974086,Blanco\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	counties, err := LoadCounties(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counties) != 1 || counties[0].FIPS != "" {
		t.Fatalf("expected one county without FIPS, got %+v", counties)
	}
}
