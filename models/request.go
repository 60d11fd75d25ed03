package models

import (
	"fmt"
	"regexp"
	"strings"
)

// CadastralRefPattern is the canonical format of a Spanish cadastral
// reference: 20 alphanumeric characters, upper case.
var CadastralRefPattern = regexp.MustCompile(`^[A-Z0-9]{20}$`)

var validEnergyLabels = "ABCDEFG"

// EstimateRequest carries everything needed to drive one SERPAVI
// calculation. The three mandatory attributes cannot be derived from the
// cadastral reference, so the caller must supply them up front.
type EstimateRequest struct {
	CadastralRef string `json:"referenciaCatastral"`

	// Mandatory attributes.
	EnergyLabel string `json:"etiquetaEnergetica"`
	Condition   string `json:"estadoConservacion"`
	Floor       string `json:"planta"`

	// Optional yes/no attributes. Nil means "leave the form control alone".
	Elevator      *bool `json:"ascensor,omitempty"`
	Parking       *bool `json:"aparcamiento,omitempty"`
	Furnished     *bool `json:"amueblado,omitempty"`
	Concierge     *bool `json:"conserje,omitempty"`
	SpecialViews  *bool `json:"vistasEspeciales,omitempty"`
	Amenities     *bool `json:"equipamiento,omitempty"`
	CommunalAreas *bool `json:"zonasComunes,omitempty"`
	Exterior      *bool `json:"exterior,omitempty"`

	// Optional numeric attributes.
	Bedrooms  *int     `json:"dormitorios,omitempty"`
	Bathrooms *int     `json:"banos,omitempty"`
	Area      *float64 `json:"superficie,omitempty"`

	// Debug requests richer failure diagnostics (raw markup, screenshot).
	Debug bool `json:"debug,omitempty"`
}

// Normalize upper-cases the identifier and energy label so validation and
// form filling see canonical values.
func (r *EstimateRequest) Normalize() {
	r.CadastralRef = strings.ToUpper(strings.TrimSpace(r.CadastralRef))
	r.EnergyLabel = strings.ToUpper(strings.TrimSpace(r.EnergyLabel))
	r.Condition = strings.TrimSpace(r.Condition)
	r.Floor = strings.TrimSpace(r.Floor)
}

// ValidateRef checks the identifier format. It runs before any browser
// resource is allocated.
func (r *EstimateRequest) ValidateRef() error {
	if !CadastralRefPattern.MatchString(r.CadastralRef) {
		return fmt.Errorf("invalid cadastral reference %q: must match %s", r.CadastralRef, CadastralRefPattern.String())
	}
	return nil
}

// MissingMandatory returns the JSON names of mandatory attributes that are
// absent or invalid, in a stable order.
func (r *EstimateRequest) MissingMandatory() []string {
	var missing []string
	if r.EnergyLabel == "" || len(r.EnergyLabel) != 1 || !strings.Contains(validEnergyLabels, r.EnergyLabel) {
		missing = append(missing, "etiquetaEnergetica")
	}
	if r.Condition == "" {
		missing = append(missing, "estadoConservacion")
	}
	if r.Floor == "" {
		missing = append(missing, "planta")
	}
	return missing
}
