package extract

import (
	"log"
	"regexp"
	"strings"
)

// Estimate is the reconciled output of a full extraction pass.
type Estimate struct {
	Min       *float64
	Max       *float64
	Reference *float64
	PerArea   *float64
	Total     *float64
	Method    string
}

// Engine runs the ordered strategies over keyword-anchored text regions,
// falling back to the full body text, then merges and reconciles the
// candidates. Strategies can be added or reordered without touching the
// pipeline.
type Engine struct {
	strategies []Strategy
	fallback   Strategy
	rent       Bounds
	perArea    Bounds
}

func NewEngine(rent, perArea Bounds) *Engine {
	if rent.Max == 0 {
		rent = Bounds{Min: DefaultRentMin, Max: DefaultRentMax}
	}
	if perArea.Max == 0 {
		perArea = Bounds{Min: DefaultPerAreaMin, Max: DefaultPerAreaMax}
	}
	return &Engine{
		strategies: defaultStrategies(),
		fallback:   fallbackScanStrategy{},
		rent:       rent,
		perArea:    perArea,
	}
}

var wsRe = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace runs so the phrase patterns can match
// across line breaks in rendered text.
func Normalize(text string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
}

// extractOne runs the given strategies over one region. Explicit-label
// matches fill their category first; later strategies only contribute
// categories still unset.
func (e *Engine) extractOne(strategies []Strategy, text string) *Candidate {
	merged := &Candidate{}
	for _, s := range strategies {
		c := s.Extract(text, e.rent, e.perArea)
		if c.empty() {
			continue
		}
		if merged.Reference == nil && c.Reference != nil {
			merged.Reference = c.Reference
		}
		if merged.Min == nil && c.Min != nil {
			merged.Min = c.Min
		}
		if merged.Max == nil && c.Max != nil {
			merged.Max = c.Max
		}
		if merged.PerArea == nil && c.PerArea != nil {
			merged.PerArea = c.PerArea
		}
		if merged.Method == "" {
			merged.Method = c.Method
		}
	}
	if merged.empty() {
		return nil
	}
	return merged
}

// mergeRegions folds per-region candidates: min of mins, max of maxes,
// first non-nil reference and per-area in region priority order.
func mergeRegions(candidates []*Candidate) *Candidate {
	merged := &Candidate{}
	for _, c := range candidates {
		if c.empty() {
			continue
		}
		if c.Min != nil && (merged.Min == nil || *c.Min < *merged.Min) {
			merged.Min = c.Min
		}
		if c.Max != nil && (merged.Max == nil || *c.Max > *merged.Max) {
			merged.Max = c.Max
		}
		if merged.Reference == nil && c.Reference != nil {
			merged.Reference = c.Reference
		}
		if merged.PerArea == nil && c.PerArea != nil {
			merged.PerArea = c.PerArea
		}
		if merged.Method == "" {
			merged.Method = c.Method
		}
	}
	if merged.empty() {
		return nil
	}
	return merged
}

// Run extracts with the explicit strategies first; the currency scan only
// runs when that whole pass produced nothing, so an explicit match is
// never padded out with unrelated tokens. Returns nil when no monetary
// value survived either pass.
func (e *Engine) Run(regions []string, body string, area *float64) *Estimate {
	merged := e.pass(e.strategies, regions, body)
	if merged == nil {
		log.Printf("extract: no explicit phrasing matched, running currency scan")
		merged = e.pass([]Strategy{e.fallback}, regions, body)
	}
	if merged == nil {
		return nil
	}
	return e.reconcile(merged, area)
}

// pass extracts from the anchor-scoped regions first and only consults
// the full body text when no region yielded data.
func (e *Engine) pass(strategies []Strategy, regions []string, body string) *Candidate {
	var candidates []*Candidate
	for _, region := range regions {
		if c := e.extractOne(strategies, Normalize(region)); c != nil {
			candidates = append(candidates, c)
		}
	}

	merged := mergeRegions(candidates)
	if merged == nil {
		merged = e.extractOne(strategies, Normalize(body))
	}
	return merged
}

// reconcile applies the invariants: swap an inverted range, then derive
// the total. An explicit reference price is authoritative; otherwise max,
// then min, then per-area times an independently known surface area.
func (e *Engine) reconcile(c *Candidate, area *float64) *Estimate {
	est := &Estimate{
		Min:       c.Min,
		Max:       c.Max,
		Reference: c.Reference,
		PerArea:   c.PerArea,
		Method:    c.Method,
	}

	if est.Min != nil && est.Max != nil && *est.Min > *est.Max {
		est.Min, est.Max = est.Max, est.Min
	}

	switch {
	case est.Reference != nil:
		est.Total = est.Reference
	case est.Max != nil:
		est.Total = est.Max
	case est.Min != nil:
		est.Total = est.Min
	case est.PerArea != nil && area != nil && *area > 0:
		total := *est.PerArea * *area
		est.Total = &total
	}

	return est
}
