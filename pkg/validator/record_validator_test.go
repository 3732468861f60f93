package validator

import "testing"

type testRecord struct {
	Code     string `json:"code" validate:"required,min=1,max=4"`
	LastName string `json:"lastname" validate:"required,max=20,alphanum"`
	Born     string `json:"birthdate" validate:"required,datetime=2006-01-02"`
}

func validRecord() testRecord {
	return testRecord{Code: "ABC", LastName: "Grujicic2", Born: "1990-01-01"}
}

func TestRecordValidatorAcceptsValidRecord(t *testing.T) {
	result, err := NewRecordValidator().Validate(validRecord())
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if !result.IsValid || len(result.Errors) != 0 {
		t.Fatalf("expected record to pass, got %+v", result)
	}
}

func TestRecordValidatorLengthBounds(t *testing.T) {
	v := NewRecordValidator()

	for _, code := range []string{"", "ABCDE"} {
		record := validRecord()
		record.Code = code
		result, err := v.Validate(record)
		if err != nil {
			t.Fatalf("validate returned error: %v", err)
		}
		if result.IsValid || result.Errors[0].Field != "code" {
			t.Fatalf("expected %q to be rejected on code, got %+v", code, result)
		}
	}
}

func TestRecordValidatorCountsCharactersNotBytes(t *testing.T) {
	record := validRecord()
	record.Code = "Đoka"

	result, err := NewRecordValidator().Validate(record)
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected 4 character value to fit, got errors: %+v", result.Errors)
	}
}

func TestRecordValidatorASCIIAlphanumeric(t *testing.T) {
	v := NewRecordValidator()

	for _, bad := range []string{"Grujičić", "O'Neil", "Smith Jones", "abc-1"} {
		record := validRecord()
		record.LastName = bad
		result, err := v.Validate(record)
		if err != nil {
			t.Fatalf("validate returned error: %v", err)
		}
		if result.IsValid {
			t.Fatalf("expected %q to be rejected", bad)
		}
		if result.Errors[0].Message != "field 'lastname' contains invalid characters" {
			t.Fatalf("unexpected message %q", result.Errors[0].Message)
		}
	}
}

func TestRecordValidatorDate(t *testing.T) {
	record := validRecord()
	record.Born = "1990-13-01"

	result, err := NewRecordValidator().Validate(record)
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if result.IsValid || result.Errors[0].Field != "birthdate" {
		t.Fatalf("expected invalid month to be rejected, got %+v", result)
	}
}

func TestRecordValidatorCollectsAllErrors(t *testing.T) {
	result, err := NewRecordValidator().Validate(testRecord{})
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if result.IsValid || len(result.Errors) != 3 {
		t.Fatalf("expected three errors, got %+v", result)
	}
	want := []string{"code", "lastname", "birthdate"}
	for i, field := range want {
		if result.Errors[i].Field != field {
			t.Fatalf("errors must follow field order, got %+v", result.Errors)
		}
	}
	if result.Errors[0].Message != "field 'code' is required" {
		t.Fatalf("unexpected message %q", result.Errors[0].Message)
	}
}

func TestRecordValidatorRejectsNonStruct(t *testing.T) {
	if _, err := NewRecordValidator().Validate("not a struct"); err == nil {
		t.Fatalf("expected an error for a non-struct value")
	}
}
