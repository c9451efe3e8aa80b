package pipeline

import (
	"errors"
	"strings"
	"testing"
)

const wellFormedResponse = `{
  "bank_name": "HSBC",
  "date": "2025-03-14",
  "payee": "Acme Co",
  "payer": "WEALTH MANAGEMENT CUBE LIMITED",
  "amount_numerical": "66969.77",
  "amount_words": "Sixty six thousand nine hundred sixty nine dollars and seventy seven cents",
  "cheque_number": "123456 789",
  "key_identifier": "123456",
  "currency": "HKD",
  "remarks": "Trailer rebate Q1",
  "is_trailer_fee": true,
  "is_management_fee": false,
  "next_step": "Process Payment"
}`

func TestValidator_Parse_WellFormed(t *testing.T) {
	record, err := NewValidator(false).Parse(wellFormedResponse)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if record.BankName != "HSBC" {
		t.Errorf("BankName = %q, want HSBC", record.BankName)
	}
	if record.Date != "2025-03-14" {
		t.Errorf("Date = %q, want 2025-03-14", record.Date)
	}
	if record.Payee != "Acme Co" {
		t.Errorf("Payee = %q, want Acme Co", record.Payee)
	}
	if record.Payer != "WEALTH MANAGEMENT CUBE LIMITED" {
		t.Errorf("Payer = %q", record.Payer)
	}
	if record.AmountNumerical != "66969.77" {
		t.Errorf("AmountNumerical = %q, want 66969.77", record.AmountNumerical)
	}
	if record.KeyIdentifier != "123456" {
		t.Errorf("KeyIdentifier = %q, want 123456", record.KeyIdentifier)
	}
	if record.Currency != "HKD" {
		t.Errorf("Currency = %q, want HKD", record.Currency)
	}
	if !record.IsTrailerFee {
		t.Error("IsTrailerFee = false, want true")
	}
	if record.IsManagementFee {
		t.Error("IsManagementFee = true, want false")
	}
	if record.NextStep != NextStepProcessPayment {
		t.Errorf("NextStep = %q, want %q", record.NextStep, NextStepProcessPayment)
	}
}

func TestValidator_Parse_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "json fence", raw: "```json\n" + wellFormedResponse + "\n```"},
		{name: "bare fence", raw: "```\n" + wellFormedResponse + "\n```"},
		{name: "leading prose", raw: "Here is the JSON you asked for:\n" + wellFormedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := NewValidator(false).Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if record.Payee != "Acme Co" {
				t.Errorf("Payee = %q, want Acme Co", record.Payee)
			}
		})
	}
}

func TestValidator_Parse_MissingPayer(t *testing.T) {
	raw := `{
  "date": "2025-03-14",
  "payee": "Acme Co",
  "key_identifier": "123456",
  "currency": "HKD",
  "is_trailer_fee": false,
  "is_management_fee": false
}`

	_, err := NewValidator(false).Parse(raw)
	var incomplete *IncompleteResponseError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Parse() error = %v, want IncompleteResponseError", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != "payer" {
		t.Errorf("Missing = %v, want [payer]", incomplete.Missing)
	}
}

func TestValidator_Parse_ListsAllMissingFields(t *testing.T) {
	_, err := NewValidator(false).Parse(`{"payee": "Acme Co"}`)
	var incomplete *IncompleteResponseError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Parse() error = %v, want IncompleteResponseError", err)
	}

	want := []string{"date", "key_identifier", "payer", "currency", "is_trailer_fee", "is_management_fee"}
	if len(incomplete.Missing) != len(want) {
		t.Fatalf("Missing = %v, want %v", incomplete.Missing, want)
	}
	for i, field := range want {
		if incomplete.Missing[i] != field {
			t.Errorf("Missing[%d] = %q, want %q", i, incomplete.Missing[i], field)
		}
	}
}

func TestValidator_Parse_Malformed(t *testing.T) {
	_, err := NewValidator(false).Parse("this is not json at all")
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("Parse() error = %v, want MalformedResponseError", err)
	}
	if !strings.Contains(malformed.Raw, "this is not json") {
		t.Errorf("Raw = %q, want diagnostic sample of response", malformed.Raw)
	}
}

func TestValidator_Parse_MalformedTruncatesRaw(t *testing.T) {
	raw := strings.Repeat("x", 2000)
	_, err := NewValidator(false).Parse(raw)
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("Parse() error = %v, want MalformedResponseError", err)
	}
	if len(malformed.Raw) != maxRawSample {
		t.Errorf("len(Raw) = %d, want %d", len(malformed.Raw), maxRawSample)
	}
}

func TestValidator_Parse_CoercesNumericIdentifiers(t *testing.T) {
	raw := `{
  "date": "2025-03-14",
  "payee": "Acme Co",
  "payer": "OTHER",
  "key_identifier": 123456,
  "amount_numerical": 500.25,
  "currency": "USD",
  "is_trailer_fee": false,
  "is_management_fee": false
}`

	record, err := NewValidator(false).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if record.KeyIdentifier != "123456" {
		t.Errorf("KeyIdentifier = %q, want 123456", record.KeyIdentifier)
	}
	if record.AmountNumerical != "500.25" {
		t.Errorf("AmountNumerical = %q, want 500.25", record.AmountNumerical)
	}
}

func TestValidator_Parse_PreservesUnknownFields(t *testing.T) {
	raw := `{
  "date": "2025-03-14",
  "payee": "Acme Co",
  "payer": "OTHER",
  "key_identifier": "123456",
  "currency": "USD",
  "is_trailer_fee": false,
  "is_management_fee": false,
  "confidence": 0.93
}`

	record, err := NewValidator(false).Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := record.Raw["confidence"]; !ok {
		t.Error("Raw missing unknown field 'confidence'")
	}
}

func TestValidator_Parse_Strict(t *testing.T) {
	base := func(currency string) string {
		return `{
  "date": "2025-03-14",
  "payee": "Acme Co",
  "payer": "OTHER",
  "key_identifier": "123456",
  "currency": "` + currency + `",
  "is_trailer_fee": false,
  "is_management_fee": false
}`
	}

	t.Run("valid currency passes", func(t *testing.T) {
		if _, err := NewValidator(true).Parse(base("HKD")); err != nil {
			t.Errorf("Parse() error = %v, want nil", err)
		}
	})

	t.Run("unknown currency rejected", func(t *testing.T) {
		_, err := NewValidator(true).Parse(base("JPY"))
		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Errorf("Parse() error = %v, want MalformedResponseError", err)
		}
	})

	t.Run("lenient mode accepts unknown currency", func(t *testing.T) {
		if _, err := NewValidator(false).Parse(base("JPY")); err != nil {
			t.Errorf("Parse() error = %v, want nil in lenient mode", err)
		}
	})

	t.Run("wrong boolean type rejected", func(t *testing.T) {
		raw := strings.Replace(base("HKD"), `"is_trailer_fee": false`, `"is_trailer_fee": "no"`, 1)
		if _, err := NewValidator(true).Parse(raw); err == nil {
			t.Error("Parse() error = nil, want type violation")
		}
	})
}
