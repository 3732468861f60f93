package domain

import (
	"errors"
	"math"
	"strings"
)

// ErrNegativeCount is returned when an aggregate count comes back negative.
var ErrNegativeCount = errors.New("negative total_houses")

// YearBuiltCount is the number of houses built in one year.
type YearBuiltCount struct {
	YearBuilt   string `json:"year_built" db:"year_built"`
	TotalHouses int32  `json:"total_houses" db:"total_houses"`
}

// Clean normalises the row in place. Rows that fail must be skipped.
func (y *YearBuiltCount) Clean() error {
	y.YearBuilt = cleanLabel(y.YearBuilt)

	switch {
	case y.TotalHouses == math.MaxInt32:
		y.TotalHouses = 0
	case y.TotalHouses < 0:
		return ErrNegativeCount
	}
	return nil
}

// AvgSalesPriceByBedroom is the mean sale price for a bedroom count.
type AvgSalesPriceByBedroom struct {
	YearBuilt    string  `json:"year_built" db:"year_built"`
	SalesDate    string  `json:"sales_date" db:"sales_date"`
	AvgSalePrice float64 `json:"avg_sale_price" db:"avg_sale_price"`
	Bedrooms     int16   `json:"bedrooms" db:"bedrooms"`
}

// Clean normalises the textual columns in place.
func (a *AvgSalesPriceByBedroom) Clean() {
	a.YearBuilt = cleanLabel(a.YearBuilt)
}

// AvgPricePerAcreage is the mean sale price for a lot size.
type AvgPricePerAcreage struct {
	Acreage  float64 `json:"acreage" db:"acreage"`
	AvgPrice float64 `json:"avg_price" db:"avg_price"`
}

// cleanLabel keeps ASCII letters and digits, mapping blanks and "null" to Unknown.
func cleanLabel(value string) string {
	if value == "" || value == "null" {
		return "Unknown"
	}
	var b strings.Builder
	for _, r := range value {
		if isASCIIAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
