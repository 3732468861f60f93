package ingestion

import (
	"slices"
	"testing"
)

func TestNormalizeRewritesCommaDecimal(t *testing.T) {
	record, ok := Normalize(RawRow{"EUR", "978", "EMU", "1", "117,4523"}, "2026-10-19")
	if !ok {
		t.Fatalf("expected row to be kept")
	}
	if record.MidRate != 117.4523 {
		t.Fatalf("expected rate 117.4523, got %v", record.MidRate)
	}
	if record.Code != "EUR" || record.CountryName != "EMU" || record.NumericID != 978 || record.UnitBasis != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Date == nil || *record.Date != "2026-10-19" {
		t.Fatalf("expected rate date to be set, got %v", record.Date)
	}
}

func TestNormalizeAcceptsPeriodDecimal(t *testing.T) {
	record, ok := Normalize(RawRow{"USD", "840", "USA", "1", "99.861"}, "")
	if !ok || record.MidRate != 99.861 {
		t.Fatalf("unexpected result: %+v %t", record, ok)
	}
	if record.Date != nil {
		t.Fatalf("expected no date when none is supplied")
	}
}

func TestNormalizeDiscardsUnparseableRate(t *testing.T) {
	for _, rate := range []string{"", "n/a", "1.234,56", "12,34,5", "NaN", "Inf"} {
		if record, ok := Normalize(RawRow{"EUR", "978", "EMU", "1", rate}, ""); ok {
			t.Fatalf("expected rate %q to discard the row, got %+v", rate, record)
		}
	}
}

func TestNormalizeDefaultsIdentifierAndUnitBasis(t *testing.T) {
	record, ok := Normalize(RawRow{"JPY", "x392", "Japan", "hundred", "73,4921"}, "")
	if !ok {
		t.Fatalf("unparseable id and unit basis must not discard the row")
	}
	if record.NumericID != 0 || record.UnitBasis != 0 {
		t.Fatalf("expected id and unit basis to default to 0, got %+v", record)
	}
	if record.MidRate != 73.4921 {
		t.Fatalf("unexpected rate: %v", record.MidRate)
	}
}

func TestNormalizeDiscardsBlankIdentity(t *testing.T) {
	cases := []RawRow{
		{"   ", "978", "EMU", "1", "117,1753"},
		{"EUR", "978", "", "1", "117,1753"},
	}
	for _, row := range cases {
		if _, ok := Normalize(row, ""); ok {
			t.Fatalf("expected %q to be discarded", row)
		}
	}
}

func TestNormalizeTrimsText(t *testing.T) {
	record, ok := Normalize(RawRow{"  CHF\n", " 756 ", "\tSwitzerland ", " 1 ", " 125,0017 "}, "")
	if !ok {
		t.Fatalf("expected row to be kept")
	}
	if record.Code != "CHF" || record.CountryName != "Switzerland" || record.NumericID != 756 || record.MidRate != 125.0017 {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestNormalizeDiscardsShortAndOversizedRows(t *testing.T) {
	if _, ok := Normalize(RawRow{"EUR", "978", "EMU", "1"}, ""); ok {
		t.Fatalf("expected row without a rate cell to be discarded")
	}
	if _, ok := Normalize(RawRow{"ABCDEFGHIJKLMNOPQRSTUVWXYZ", "1", "X", "1", "1,0"}, ""); ok {
		t.Fatalf("expected code longer than the column to be discarded")
	}
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	rows := slices.Values([]RawRow{
		{"EUR", "978", "EMU", "1", "117,1753"},
		{"BAD", "1", "Nowhere", "1", "--"},
		{"AUD", "036", "Australia", "1", "65,0123"},
		{"USD", "840", "USA", "1", "99,8610"},
	})

	records, seen := NormalizeAll(rows, "")
	if seen != 4 {
		t.Fatalf("expected 4 rows seen, got %d", seen)
	}
	var codes []string
	for _, r := range records {
		codes = append(codes, r.Code)
	}
	if !slices.Equal(codes, []string{"EUR", "AUD", "USD"}) {
		t.Fatalf("unexpected order: %v", codes)
	}
}
