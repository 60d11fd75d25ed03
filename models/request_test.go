package models

import (
	"reflect"
	"testing"
)

func TestValidateRef(t *testing.T) {
	valid := []string{
		"9872023VH5797S0001WX",
		"1234567890ABCDEFGHIJ",
	}
	for _, ref := range valid {
		req := &EstimateRequest{CadastralRef: ref}
		if err := req.ValidateRef(); err != nil {
			t.Fatalf("expected %q to be valid: %v", ref, err)
		}
	}

	invalid := []string{
		"",
		"9872023VH5797S0001W",    // 19 chars
		"9872023VH5797S0001WX1",  // 21 chars
		"9872023vh5797s0001wx",   // lower case
		"9872023VH5797S0001W-",   // punctuation
		"9872023 H5797S0001WX",   // whitespace inside
	}
	for _, ref := range invalid {
		req := &EstimateRequest{CadastralRef: ref}
		if err := req.ValidateRef(); err == nil {
			t.Fatalf("expected %q to be rejected", ref)
		}
	}
}

func TestNormalizeUppercases(t *testing.T) {
	req := &EstimateRequest{CadastralRef: " 9872023vh5797s0001wx ", EnergyLabel: "e"}
	req.Normalize()
	if req.CadastralRef != "9872023VH5797S0001WX" {
		t.Fatalf("unexpected normalized ref %q", req.CadastralRef)
	}
	if req.EnergyLabel != "E" {
		t.Fatalf("unexpected normalized label %q", req.EnergyLabel)
	}
	if err := req.ValidateRef(); err != nil {
		t.Fatalf("normalized ref should validate: %v", err)
	}
}

func TestMissingMandatory(t *testing.T) {
	req := &EstimateRequest{}
	want := []string{"etiquetaEnergetica", "estadoConservacion", "planta"}
	if got := req.MissingMandatory(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	req = &EstimateRequest{EnergyLabel: "E", Floor: "3"}
	want = []string{"estadoConservacion"}
	if got := req.MissingMandatory(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	req = &EstimateRequest{EnergyLabel: "E", Condition: "bueno", Floor: "3"}
	if got := req.MissingMandatory(); got != nil {
		t.Fatalf("expected nothing missing, got %v", got)
	}
}

func TestMissingMandatory_BadEnergyLabel(t *testing.T) {
	req := &EstimateRequest{EnergyLabel: "H", Condition: "bueno", Floor: "3"}
	want := []string{"etiquetaEnergetica"}
	if got := req.MissingMandatory(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
