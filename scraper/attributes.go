package scraper

import (
	"context"
	"log"
	"strconv"

	"serpavi_estimator/models"
)

// attributeSpec binds a form label pattern to the request value that
// feeds it. Order matches the form's visual order.
type attributeSpec struct {
	label string
	value func(*models.EstimateRequest) (string, bool)
}

func boolAttr(v *bool) (string, bool) {
	if v == nil {
		return "", false
	}
	return strconv.FormatBool(*v), true
}

func intAttr(v *int) (string, bool) {
	if v == nil {
		return "", false
	}
	return strconv.Itoa(*v), true
}

var attributeSpecs = []attributeSpec{
	{"etiqueta energética", func(r *models.EstimateRequest) (string, bool) { return r.EnergyLabel, r.EnergyLabel != "" }},
	{"conservación", func(r *models.EstimateRequest) (string, bool) { return r.Condition, r.Condition != "" }},
	{"planta", func(r *models.EstimateRequest) (string, bool) { return r.Floor, r.Floor != "" }},
	{"ascensor", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.Elevator) }},
	{"aparcamiento", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.Parking) }},
	{"amueblad", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.Furnished) }},
	{"conserje", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.Concierge) }},
	{"vistas", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.SpecialViews) }},
	{"equipamiento", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.Amenities) }},
	{"zonas comunes", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.CommunalAreas) }},
	{"exterior", func(r *models.EstimateRequest) (string, bool) { return boolAttr(r.Exterior) }},
	{"dormitorios", func(r *models.EstimateRequest) (string, bool) { return intAttr(r.Bedrooms) }},
	{"baños", func(r *models.EstimateRequest) (string, bool) { return intAttr(r.Bathrooms) }},
	{"superficie", func(r *models.EstimateRequest) (string, bool) {
		if r.Area == nil {
			return "", false
		}
		return strconv.FormatFloat(*r.Area, 'f', -1, 64), true
	}},
}

// FillAttributes populates every attribute whose control exists on the
// current form variant. Absent controls are skipped without error; the
// calculator shows different attribute sets per property type.
func FillAttributes(ctx context.Context, surface *Surface, req *models.EstimateRequest) error {
	locator := NewFieldLocator(surface.Frame)
	filled, skipped := 0, 0

	for _, spec := range attributeSpecs {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, present := spec.value(req)
		if !present {
			continue
		}

		control, found := locator.Resolve(spec.label)
		if !found {
			skipped++
			log.Printf("Attributes: no control for %q, skipping", spec.label)
			continue
		}

		if err := control.Set(value); err != nil {
			skipped++
			log.Printf("Attributes: set %q=%q failed (continuing): %v", spec.label, value, err)
			continue
		}
		filled++
	}

	log.Printf("Attributes: %d filled, %d skipped", filled, skipped)
	return nil
}
