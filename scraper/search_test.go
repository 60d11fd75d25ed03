package scraper

import "testing"

func TestChooseSuggestion(t *testing.T) {
	cases := []struct {
		name  string
		texts []string
		want  int
	}{
		{"empty list", nil, -1},
		{"sentinel only", []string{"No se han encontrado resultados"}, -1},
		{"blank rows only", []string{"", "  "}, -1},
		{"sentinel then candidate", []string{"Sin resultados", "9872023VH5797S0001WX - CL MAYOR 1"}, 1},
		{"candidate first", []string{"9872023VH5797S0001WX - CL MAYOR 1", "otra opción"}, 0},
		{"candidate past probe window", []string{"", "", "", "", "", "9872023VH5797S0001WX"}, -1},
	}

	for _, c := range cases {
		if got := chooseSuggestion(c.texts); got != c.want {
			t.Fatalf("%s: chooseSuggestion = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestIsNoResult(t *testing.T) {
	for _, text := range []string{
		"No se han encontrado resultados",
		"SIN RESULTADOS",
		"No hay resultados para la búsqueda",
		"",
		"   ",
	} {
		if !isNoResult(text) {
			t.Fatalf("expected %q to be treated as a no-result row", text)
		}
	}
	if isNoResult("9872023VH5797S0001WX - CL MAYOR 1, MADRID") {
		t.Fatal("candidate row misclassified as no-result")
	}
}
