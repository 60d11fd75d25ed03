package models

// Result status values.
const (
	StatusOK              = "ok"
	StatusNeedsAttributes = "needs_attributes"
	StatusFailed          = "failed"
)

// Soft-failure kinds. These are domain outcomes, not transport errors: the
// HTTP layer reports them with a normal status and an explicit payload.
const (
	ErrKindInvalidRequest      = "invalid_request"
	ErrKindUnreachable         = "unreachable"
	ErrKindSearchInputNotFound = "search_input_not_found"
	ErrKindLayoutChanged       = "layout_changed"
	ErrKindTimeout             = "timeout"
	ErrKindInternal            = "internal"
)

// Diagnostic is best-effort context attached to a failed estimate. Samples
// are truncated; markup and screenshots only appear in debug mode.
type Diagnostic struct {
	URL            string `json:"url,omitempty"`
	TextSample     string `json:"textSample,omitempty"`
	HTMLSample     string `json:"htmlSample,omitempty"`
	ScreenshotPath string `json:"screenshotPath,omitempty"`
}

// EstimateResult is the single response shape for every pipeline outcome.
type EstimateResult struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`

	CadastralRef string `json:"referenciaCatastral,omitempty"`

	MinPrice       *float64 `json:"minPrice,omitempty"`
	MaxPrice       *float64 `json:"maxPrice,omitempty"`
	ReferencePrice *float64 `json:"referencePrice,omitempty"`
	PricePerArea   *float64 `json:"pricePerArea,omitempty"`
	TotalPrice     *float64 `json:"totalPrice,omitempty"`
	Method         string   `json:"method,omitempty"`

	Missing []string `json:"missing,omitempty"`

	ErrorKind  string      `json:"errorKind,omitempty"`
	Error      string      `json:"error,omitempty"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// NeedsAttributesResult names exactly the mandatory fields the caller left
// out. No browser work has happened when this is built.
func NeedsAttributesResult(ref string, missing []string) *EstimateResult {
	return &EstimateResult{
		Status:       StatusNeedsAttributes,
		CadastralRef: ref,
		Missing:      missing,
	}
}

// FailedResult builds a soft-failure response of the given kind.
func FailedResult(ref, kind, msg string, diag *Diagnostic) *EstimateResult {
	return &EstimateResult{
		Status:       StatusFailed,
		CadastralRef: ref,
		ErrorKind:    kind,
		Error:        msg,
		Diagnostic:   diag,
	}
}
