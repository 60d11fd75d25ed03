package extract

import "testing"

func TestParseSpanishNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"950", 950},
		{"1.050,00", 1050},
		{"12,35", 12.35},
		{"20.000", 20000},
		{" 890,00 ", 890},
	}

	for _, c := range cases {
		got, err := ParseSpanishNumber(c.in)
		if err != nil {
			t.Fatalf("ParseSpanishNumber(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseSpanishNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseSpanishNumber_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "€", "--"} {
		if _, err := ParseSpanishNumber(in); err == nil {
			t.Fatalf("ParseSpanishNumber(%q) should fail", in)
		}
	}
}

func TestParseSpanishNumber_Idempotent(t *testing.T) {
	first, err := ParseSpanishNumber("1.234,56")
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := ParseSpanishNumber("1.234,56")
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}
	if first != second {
		t.Fatalf("parse not idempotent: %v != %v", first, second)
	}
}

func TestRentPlausibility(t *testing.T) {
	bounds := Bounds{Min: DefaultRentMin, Max: DefaultRentMax}

	if _, ok := parseCurrency("3", bounds); ok {
		t.Fatal("3 should be discarded as implausible rent")
	}
	if _, ok := parseCurrency("25.000", bounds); ok {
		t.Fatal("25000 should be discarded as implausible rent")
	}
	if v, ok := parseCurrency("950", bounds); !ok || v != 950 {
		t.Fatalf("950 should be retained, got %v ok=%v", v, ok)
	}
}

func TestPerAreaPlausibility(t *testing.T) {
	bounds := Bounds{Min: DefaultPerAreaMin, Max: DefaultPerAreaMax}

	if _, ok := parseCurrency("950", bounds); ok {
		t.Fatal("950 should be outside the per-area bound")
	}
	if v, ok := parseCurrency("12,35", bounds); !ok || v != 12.35 {
		t.Fatalf("12,35 should be a plausible per-area price, got %v ok=%v", v, ok)
	}
}
