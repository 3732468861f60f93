package domain

// CurrencyRecord is one normalised row of the official exchange-rate table.
type CurrencyRecord struct {
	Code        string  `json:"code" db:"code"`
	NumericID   int32   `json:"numeric_id" db:"numeric_id"`
	CountryName string  `json:"country_name" db:"country_name"`
	UnitBasis   int32   `json:"unit_basis" db:"unit_basis"`
	MidRate     float64 `json:"mid_rate" db:"mid_rate"`
	Date        *string `json:"date,omitempty" db:"rate_date"`
}

// Column limits of the currency_rates table.
const (
	MaxCurrencyCodeLength    = 20
	MaxCurrencyCountryLength = 50
)
