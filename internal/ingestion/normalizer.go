package ingestion

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rpattn/nwreports/internal/domain"

	"github.com/shopspring/decimal"
)

// Column positions of the rate table.
const (
	colCode = iota
	colNumericID
	colCountry
	colUnitBasis
	colMidRate
	rateColumns
)

// Normalize converts one raw row into a currency record. The identifier and
// unit basis fall back to 0 when unparseable; an unparseable rate or a blank
// code or country discards the row.
func Normalize(row RawRow, date string) (domain.CurrencyRecord, bool) {
	if len(row) < rateColumns {
		return domain.CurrencyRecord{}, false
	}

	code := strings.TrimSpace(row[colCode])
	country := strings.TrimSpace(row[colCountry])

	rate, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(row[colMidRate]), ",", "."))
	if err != nil {
		return domain.CurrencyRecord{}, false
	}

	if code == "" || country == "" {
		return domain.CurrencyRecord{}, false
	}
	if utf8.RuneCountInString(code) > domain.MaxCurrencyCodeLength ||
		utf8.RuneCountInString(country) > domain.MaxCurrencyCountryLength {
		return domain.CurrencyRecord{}, false
	}

	record := domain.CurrencyRecord{
		Code:        code,
		NumericID:   parseIntOrZero(row[colNumericID]),
		CountryName: country,
		UnitBasis:   parseIntOrZero(row[colUnitBasis]),
		MidRate:     rate.InexactFloat64(),
	}
	if date != "" {
		record.Date = &date
	}
	return record, true
}

// NormalizeAll normalises rows in order and returns the kept records along
// with the number of rows seen.
func NormalizeAll(rows iter.Seq[RawRow], date string) ([]domain.CurrencyRecord, int) {
	records := []domain.CurrencyRecord{}
	seen := 0
	for row := range rows {
		seen++
		if record, ok := Normalize(row, date); ok {
			records = append(records, record)
		}
	}
	return records, seen
}

func parseIntOrZero(value string) int32 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}
