package rules

import (
	"strings"

	"freightx/internal/domain"
)

// IndiaPrefix is the UN/LOCODE country prefix that decides shipment direction.
const IndiaPrefix = "IN"

// ClassifyProductLine derives the product line from the two port codes.
// A destination in India is an import; otherwise an origin in India is an
// export; any other pair is unclassified.
func ClassifyProductLine(originCode, destinationCode string) (domain.ProductLine, bool) {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(destinationCode)), IndiaPrefix) {
		return domain.ProductLineSeaImportLCL, true
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(originCode)), IndiaPrefix) {
		return domain.ProductLineSeaExportLCL, true
	}
	return "", false
}
