package collector

import (
	"strings"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

// MatchAlertsToCounty filters the statewide feed down to alerts touching one
// county, either by "<NAME> COUNTY" in the area description or by SAME code
// membership. Texas SAME codes are 048 plus the county part of the FIPS code.
func MatchAlertsToCounty(county domain.County, alerts []domain.Alert) []domain.Alert {
	countyName := strings.ToUpper(county.Name) + " COUNTY"

	var countySAME string
	if len(county.FIPS) == 5 {
		countySAME = "048" + county.FIPS[2:]
	}

	var matched []domain.Alert
	for _, alert := range alerts {
		if strings.Contains(strings.ToUpper(alert.AreaDesc), countyName) {
			matched = append(matched, alert)
			continue
		}
		if countySAME != "" && containsCode(alert.SameCodes, countySAME) {
			matched = append(matched, alert)
		}
	}
	return matched
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
