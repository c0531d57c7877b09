package finance

import (
	"errors"
	"math"
	"testing"
)

func TestConvertBaseIdentity(t *testing.T) {
	rates := DefaultRates()
	got, errConvert := rates.Convert(250, "EUR", "EUR")
	if errConvert != nil {
		t.Fatalf("convert: %v", errConvert)
	}
	if got != 250 {
		t.Fatalf("expected identity conversion, got %v", got)
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	rates := DefaultRates()
	if _, errConvert := rates.Convert(100, "EUR", "CHF"); !errors.Is(errConvert, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", errConvert)
	}
	if _, errConvert := rates.Convert(100, "CHF", "EUR"); !errors.Is(errConvert, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", errConvert)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	rates := DefaultRates()
	for code := range rates {
		converted, errTo := rates.Convert(1234.56, "EUR", code)
		if errTo != nil {
			t.Fatalf("convert to %s: %v", code, errTo)
		}
		back, errBack := rates.Convert(converted, code, "EUR")
		if errBack != nil {
			t.Fatalf("convert back from %s: %v", code, errBack)
		}
		if math.Abs(back-1234.56) > 1e-9 {
			t.Fatalf("round trip via %s drifted: %v", code, back)
		}
	}
}

func TestFormatKnownCurrencies(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     string
	}{
		{3000, "SEK", "3000 kr"},
		{3000, "USD", "$3000"},
		{3000, "EUR", "€3000"},
		{3000, "GBP", "£3000"},
		{1499.6, "NOK", "1500 kr"},
		{99.4, "DKK", "99 kr"},
	}
	for _, tc := range cases {
		if got := Format(tc.amount, tc.currency); got != tc.want {
			t.Fatalf("Format(%v, %s) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestFormatUnknownCurrencyFallsBackToCode(t *testing.T) {
	if got := Format(3000, "CHF"); got != "3000 CHF" {
		t.Fatalf("expected ISO fallback, got %q", got)
	}
	if got := Format(3000, " chf "); got != "3000 CHF" {
		t.Fatalf("expected normalized ISO fallback, got %q", got)
	}
}
