package extract

import (
	"regexp"
	"sort"
)

// Candidate is what one strategy pulled out of one text region. Fields are
// nil when the strategy had nothing to say about them.
type Candidate struct {
	Min       *float64
	Max       *float64
	Reference *float64
	PerArea   *float64
	Method    string
}

func (c *Candidate) empty() bool {
	return c == nil || (c.Min == nil && c.Max == nil && c.Reference == nil && c.PerArea == nil)
}

// Strategy attempts extraction from already-normalized text. Strategies
// are ordered; within a category the first match wins.
type Strategy interface {
	Name() string
	Extract(text string, rent, perArea Bounds) *Candidate
}

const cur = `\s*(?:€|euros?)`

var (
	// "Precio de referencia: 1.050,00 €", "precio máximo de referencia 980 €"
	refPriceRe = regexp.MustCompile(`(?i)precio(?:\s+m[áa]ximo)?\s+de\s+referencia\D{0,40}?(` + numPat + `)` + cur)

	// "entre 900 € y 1.100 €"
	rangeBetweenRe = regexp.MustCompile(`(?i)entre\s+(` + numPat + `)` + cur + `\s+y\s+(` + numPat + `)` + cur)
	// "mínimo de 900 € ... máximo de 1.100 €" (and the inverted order)
	rangeMinMaxRe = regexp.MustCompile(`(?i)m[ií]nimo\D{0,30}?(` + numPat + `)` + cur + `\D{0,80}?m[áa]ximo\D{0,30}?(` + numPat + `)` + cur)
	rangeMaxMinRe = regexp.MustCompile(`(?i)m[áa]ximo\D{0,30}?(` + numPat + `)` + cur + `\D{0,80}?m[ií]nimo\D{0,30}?(` + numPat + `)` + cur)
	// "900 € a 1.100 €", "de 900 € hasta 1.100 €"
	rangeToRe = regexp.MustCompile(`(?i)(` + numPat + `)` + cur + `\s+(?:a|hasta)\s+(` + numPat + `)` + cur)

	// "12,50 €/m²" — the area marker must follow immediately, which keeps
	// per-m² figures distinct from monthly totals ("950 €/mes").
	perAreaRe = regexp.MustCompile(`(?i)(` + numPat + `)\s*(?:€|euros?)\s*/?\s*m[²2]`)

	// Any currency-marked token, for the last-resort scan. A lookalike of
	// the per-area pattern is excluded by the caller.
	currencyTokenRe = regexp.MustCompile(`(` + numPat + `)` + cur)
)

// referencePriceStrategy matches the explicit "precio de referencia"
// phrasing. When present this figure is authoritative for the total.
type referencePriceStrategy struct{}

func (referencePriceStrategy) Name() string { return "reference_price" }

func (s referencePriceStrategy) Extract(text string, rent, _ Bounds) *Candidate {
	m := refPriceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, ok := parseCurrency(m[1], rent)
	if !ok {
		return nil
	}
	return &Candidate{Reference: &v, Method: s.Name()}
}

// rangeStrategy matches explicit range phrasings where both ends carry a
// currency marker.
type rangeStrategy struct{}

func (rangeStrategy) Name() string { return "explicit_range" }

func (s rangeStrategy) Extract(text string, rent, _ Bounds) *Candidate {
	for _, re := range []*regexp.Regexp{rangeBetweenRe, rangeMinMaxRe, rangeToRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		lo, okLo := parseCurrency(m[1], rent)
		hi, okHi := parseCurrency(m[2], rent)
		if !okLo || !okHi {
			continue
		}
		return &Candidate{Min: &lo, Max: &hi, Method: s.Name()}
	}
	if m := rangeMaxMinRe.FindStringSubmatch(text); m != nil {
		hi, okHi := parseCurrency(m[1], rent)
		lo, okLo := parseCurrency(m[2], rent)
		if okHi && okLo {
			return &Candidate{Min: &lo, Max: &hi, Method: s.Name()}
		}
	}
	return nil
}

// perAreaStrategy matches a currency amount immediately followed by an
// area-unit marker.
type perAreaStrategy struct{}

func (perAreaStrategy) Name() string { return "price_per_area" }

func (s perAreaStrategy) Extract(text string, _, perArea Bounds) *Candidate {
	m := perAreaRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, ok := parseCurrency(m[1], perArea)
	if !ok {
		return nil
	}
	return &Candidate{PerArea: &v, Method: s.Name()}
}

// minSeparation is the least distance between two currency tokens for the
// fallback scan to treat them as a genuine (min, max) pair.
const minSeparation = 50

// fallbackScanStrategy collects every plausible currency-marked token,
// sorts ascending and picks the extremes. A single surviving value becomes
// max with min unknown. The engine runs it only when every explicit
// strategy came up empty: currency tokens next to an explicit match are
// deposits, fees and the match itself, not a range.
type fallbackScanStrategy struct{}

func (fallbackScanStrategy) Name() string { return "currency_scan" }

func (s fallbackScanStrategy) Extract(text string, rent, _ Bounds) *Candidate {
	matches := currencyTokenRe.FindAllStringSubmatchIndex(text, -1)
	var values []float64
	for _, idx := range matches {
		// Skip tokens that are really per-m² figures.
		if loc := perAreaRe.FindStringIndex(text[idx[0]:]); loc != nil && loc[0] == 0 {
			continue
		}
		token := text[idx[2]:idx[3]]
		if v, ok := parseCurrency(token, rent); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	lo, hi := values[0], values[len(values)-1]
	if len(values) == 1 || hi-lo < minSeparation {
		return &Candidate{Max: &hi, Method: s.Name()}
	}
	return &Candidate{Min: &lo, Max: &hi, Method: s.Name()}
}

func defaultStrategies() []Strategy {
	return []Strategy{
		referencePriceStrategy{},
		rangeStrategy{},
		perAreaStrategy{},
	}
}
