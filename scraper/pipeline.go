package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"serpavi_estimator/config"
	"serpavi_estimator/extract"
	"serpavi_estimator/models"
)

const (
	textSampleLen = 500
	htmlSampleLen = 2000
	maxRegions    = 8
	maxRegionLen  = 4000
)

// Selectors for result regions anchored near price keywords. Scoped to
// concrete elements so a match is the result block, not an ancestor.
var regionSelectors = []string{
	"[class*='precio']",
	"[class*='resultado']",
	"[class*='rango']",
	"p:has-text('referencia')",
	"p:has-text('€')",
	"td:has-text('€')",
	"li:has-text('€')",
}

// ArtifactSink stores debug captures (screenshot, raw markup) for a run.
// Returns the stored location, best effort.
type ArtifactSink interface {
	Save(runID, name string, data []byte) (string, error)
}

// Pipeline runs the full per-request automation: navigate, search, fill,
// trigger, extract. It owns the browser session lifecycle; exactly one
// session exists per in-flight request and it is released on every exit
// path, including the global deadline.
type Pipeline struct {
	cfg       *config.Config
	navigator *Navigator
	engine    *extract.Engine
	artifacts ArtifactSink
}

func NewPipeline(cfg *config.Config, artifacts ArtifactSink) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		navigator: NewNavigator(cfg.Site, cfg.Pipeline),
		engine: extract.NewEngine(
			extract.Bounds{Min: cfg.Site.RentMin, Max: cfg.Site.RentMax},
			extract.Bounds{Min: cfg.Site.PerAreaMin, Max: cfg.Site.PerAreaMax},
		),
		artifacts: artifacts,
	}
}

// Estimate validates the request, then races the pipeline against the
// global deadline. Validation failures return before any browser
// resource is allocated. The worker goroutine observes cancellation at
// every step boundary, so a deadline response never leaks a session: the
// goroutine unwinds at its next checkpoint and its deferred Close runs.
func (p *Pipeline) Estimate(ctx context.Context, req *models.EstimateRequest) *models.EstimateResult {
	req.Normalize()

	if err := req.ValidateRef(); err != nil {
		return models.FailedResult(req.CadastralRef, models.ErrKindInvalidRequest, err.Error(), nil)
	}
	if missing := req.MissingMandatory(); len(missing) > 0 {
		return models.NeedsAttributesResult(req.CadastralRef, missing)
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Pipeline.GlobalTimeout)
	defer cancel()

	resCh := make(chan *models.EstimateResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[%s] Pipeline panic: %v", runID, r)
				resCh <- models.FailedResult(req.CadastralRef, models.ErrKindInternal, fmt.Sprintf("panic: %v", r), nil)
			}
		}()
		resCh <- p.run(ctx, runID, req)
	}()

	select {
	case res := <-resCh:
		return res
	case <-ctx.Done():
		log.Printf("[%s] Global deadline elapsed", runID)
		return models.FailedResult(req.CadastralRef, models.ErrKindTimeout,
			fmt.Sprintf("deadline of %s elapsed", p.cfg.Pipeline.GlobalTimeout), nil)
	}
}

func (p *Pipeline) run(ctx context.Context, runID string, req *models.EstimateRequest) *models.EstimateResult {
	started := time.Now()
	log.Printf("[%s] Starting estimate for %s", runID, req.CadastralRef)

	session, err := NewSession(&p.cfg.Browser)
	if err != nil {
		return models.FailedResult(req.CadastralRef, models.ErrKindInternal, err.Error(), nil)
	}
	defer session.Close()

	surface, err := p.navigator.Resolve(ctx, session)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.FailedResult(req.CadastralRef, models.ErrKindTimeout, err.Error(), nil)
		}
		diag := p.diagnose(runID, session.Page(), req.Debug)
		return models.FailedResult(req.CadastralRef, models.ErrKindUnreachable, err.Error(), diag)
	}

	if err := ctx.Err(); err != nil {
		return models.FailedResult(req.CadastralRef, models.ErrKindTimeout, err.Error(), nil)
	}

	if err := SubmitSearch(ctx, surface, req.CadastralRef, p.cfg.Pipeline); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.FailedResult(req.CadastralRef, models.ErrKindTimeout, err.Error(), nil)
		}
		diag := p.diagnose(runID, surface.Page, req.Debug)
		return models.FailedResult(req.CadastralRef, models.ErrKindSearchInputNotFound, err.Error(), diag)
	}

	// Attribute filling is best effort throughout: availability varies by
	// property type and partial input still yields a usable estimate.
	if err := FillAttributes(ctx, surface, req); err != nil {
		return models.FailedResult(req.CadastralRef, models.ErrKindTimeout, err.Error(), nil)
	}

	if err := TriggerCalculation(surface, p.cfg.Pipeline); err != nil {
		diag := p.diagnose(runID, surface.Page, req.Debug)
		return models.FailedResult(req.CadastralRef, models.ErrKindLayoutChanged, err.Error(), diag)
	}

	if err := ctx.Err(); err != nil {
		return models.FailedResult(req.CadastralRef, models.ErrKindTimeout, err.Error(), nil)
	}

	regions := collectRegions(surface)
	body := bodyText(surface)

	estimate := p.engine.Run(regions, body, req.Area)
	if estimate == nil {
		diag := p.diagnose(runID, surface.Page, req.Debug)
		return models.FailedResult(req.CadastralRef, models.ErrKindLayoutChanged,
			"no monetary data found in result text", diag)
	}

	log.Printf("[%s] Estimate complete in %s (method=%s)", runID, time.Since(started).Round(time.Millisecond), estimate.Method)

	return &models.EstimateResult{
		OK:             true,
		Status:         models.StatusOK,
		CadastralRef:   req.CadastralRef,
		MinPrice:       estimate.Min,
		MaxPrice:       estimate.Max,
		ReferencePrice: estimate.Reference,
		PricePerArea:   estimate.PerArea,
		TotalPrice:     estimate.Total,
		Method:         estimate.Method,
	}
}

// collectRegions gathers bounded text from keyword-anchored elements.
func collectRegions(surface *Surface) []string {
	var regions []string
	for _, selector := range regionSelectors {
		texts, err := surface.Frame.Locator(selector).AllInnerTexts()
		if err != nil {
			continue
		}
		for _, text := range texts {
			if len(text) > maxRegionLen {
				text = text[:maxRegionLen]
			}
			regions = append(regions, text)
			if len(regions) >= maxRegions {
				return regions
			}
		}
	}
	return regions
}

func bodyText(surface *Surface) string {
	if text, err := surface.Frame.Locator("body").InnerText(); err == nil && text != "" {
		return text
	}
	// Frame text unavailable; fall back to rendering the page markup.
	if html, err := surface.Page.Content(); err == nil {
		return extract.VisibleText(html)
	}
	return ""
}

// diagnose assembles best-effort failure context: current location and a
// truncated visible-text sample, plus raw markup and a screenshot when
// the caller asked for debug evidence.
func (p *Pipeline) diagnose(runID string, page playwright.Page, debug bool) *models.Diagnostic {
	diag := &models.Diagnostic{URL: page.URL()}

	html, err := page.Content()
	if err != nil {
		log.Printf("[%s] Diagnostic content unavailable: %v", runID, err)
		return diag
	}
	diag.TextSample = extract.Sample(extract.VisibleText(html), textSampleLen)

	if !debug {
		return diag
	}

	diag.HTMLSample = extract.Sample(html, htmlSampleLen)
	if p.artifacts != nil {
		if path, err := p.artifacts.Save(runID, "page.html", []byte(html)); err == nil {
			log.Printf("[%s] Saved markup capture: %s", runID, path)
		}
		if shot, err := page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)}); err == nil {
			if path, err := p.artifacts.Save(runID, "screenshot.png", shot); err == nil {
				diag.ScreenshotPath = path
			}
		}
	}

	return diag
}
