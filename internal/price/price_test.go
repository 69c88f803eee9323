package price

import "testing"

func TestNormalize(t *testing.T) {
	eur := "EUR"
	usd := "USD"

	tests := []struct {
		name     string
		raw      string
		value    *float64
		currency *string
	}{
		{"plain euro code", "245 EUR", f(245), &eur},
		{"comma decimal", "199,99 €", f(199.99), &eur},
		{"european grouping", "1.234,56 €", f(1234.56), &eur},
		{"dot decimal dollar", "$150.50", f(150.50), &usd},
		{"usd code", "99 USD", f(99), &usd},
		{"grouping space", "1 299 €", f(1299), &eur},
		{"non-breaking space", "1 299 €", f(1299), &eur},
		{"prefix text", "ab 52,00 €", f(52), &eur},
		{"no digits keeps currency", "Prix en €", nil, &eur},
		{"no currency marker", "245", f(245), nil},
		{"unavailable", "Prix indisponible", nil, nil},
		{"empty", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c := Normalize(tt.raw)
			if (v == nil) != (tt.value == nil) {
				t.Fatalf("Normalize(%q) value = %v, want %v", tt.raw, deref(v), deref(tt.value))
			}
			if v != nil && *v != *tt.value {
				t.Errorf("Normalize(%q) value = %v, want %v", tt.raw, *v, *tt.value)
			}
			if (c == nil) != (tt.currency == nil) {
				t.Fatalf("Normalize(%q) currency = %v, want %v", tt.raw, derefS(c), derefS(tt.currency))
			}
			if c != nil && *c != *tt.currency {
				t.Errorf("Normalize(%q) currency = %q, want %q", tt.raw, *c, *tt.currency)
			}
		})
	}
}

func TestNormalizeNeverPanics(t *testing.T) {
	inputs := []string{",,,", "...", "€", "12,34,56.78", " ", "eur"}
	for _, raw := range inputs {
		Normalize(raw)
	}
}

func TestHasCurrencyMarker(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"199,99 €", true},
		{"245 EUR", true},
		{"245 eur", true},
		{"$12", true},
		{"99 usd", true},
		{"Sold out", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasCurrencyMarker(tt.s); got != tt.want {
			t.Errorf("HasCurrencyMarker(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestAmountRe(t *testing.T) {
	got := AmountRe.FindAllString("ab 52,00 € oder 245 EUR, sonst nichts", -1)
	if len(got) != 2 {
		t.Fatalf("matches = %v, want 2 amounts", got)
	}
	if AmountRe.MatchString("no prices here") {
		t.Error("matched text without amounts")
	}
}

func f(v float64) *float64 { return &v }

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefS(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
