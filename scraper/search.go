package scraper

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"serpavi_estimator/config"
)

// ErrSearchInputNotFound means the load-bearing search control could not
// be located, which signals a layout change on the target site.
var ErrSearchInputNotFound = errors.New("search input not found")

// Ordered locator strategies for the cadastral reference input: attribute
// match first, then placeholder, then accessibility role.
var searchInputSelectors = []string{
	"input[name*='referencia' i]",
	"input[id*='referencia' i]",
	"input[name*='catastral' i]",
	"input[placeholder*='referencia catastral' i]",
	"input[placeholder*='catastral' i]",
	"input[type='search']",
}

var suggestionSelectors = []string{
	"[role='listbox'] [role='option']",
	"ul[class*='suggest'] li",
	"ul[class*='autocomplete'] li",
	".mat-option",
	"[class*='sugerencia']",
}

// Sentinel phrases in a rendered suggestion meaning "no results".
var noResultPhrases = []string{
	"no se han encontrado",
	"sin resultados",
	"no hay resultados",
	"no existen resultados",
}

// Markers confirming the detail form rendered after candidate selection.
var detailMarkers = []string{
	"label:has-text('conservación')",
	"label:has-text('Etiqueta energética')",
	"legend:has-text('conservación')",
	"[class*='resultado']",
	"[class*='inmueble']",
}

const maxSuggestions = 5

// SubmitSearch types the cadastral reference into the search control,
// resolves the asynchronous suggestion list and confirms a candidate.
func SubmitSearch(ctx context.Context, surface *Surface, ref string, timeouts config.PipelineConfig) error {
	frame := surface.Frame

	input := findSearchInput(frame)
	if input == nil {
		return ErrSearchInputNotFound
	}

	if err := input.Click(); err != nil {
		log.Printf("Search: focus click failed (continuing): %v", err)
	}
	if err := input.Fill(""); err != nil {
		return ErrSearchInputNotFound
	}
	// Character-by-character typing so the autocomplete fires.
	if err := input.PressSequentially(ref, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(40),
	}); err != nil {
		return ErrSearchInputNotFound
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if picked := pickSuggestion(surface, timeouts.SuggestionWait); !picked {
		log.Printf("Search: no suggestions rendered, submitting with Enter")
		if err := input.Press("Enter"); err != nil {
			log.Printf("Search: Enter press failed (continuing): %v", err)
		}
	}

	return confirmSearch(surface, input, timeouts.StepTimeout)
}

func findSearchInput(frame playwright.Frame) playwright.Locator {
	for _, selector := range searchInputSelectors {
		input := frame.Locator(selector).First()
		if visible, _ := input.IsVisible(); visible {
			log.Printf("Search: input located via %s", selector)
			return input
		}
	}
	input := frame.GetByRole("textbox").First()
	if visible, _ := input.IsVisible(); visible {
		log.Printf("Search: input located via textbox role")
		return input
	}
	return nil
}

// pickSuggestion waits (bounded) for the suggestion list and clicks the
// first acceptable candidate. A selector whose rows are all "no results"
// sentinels does not end the search: later selectors may hold the real
// list. Waiting stops once any selector rendered rows.
func pickSuggestion(surface *Surface, wait time.Duration) bool {
	deadline := time.Now().Add(wait)

	for time.Now().Before(deadline) {
		sawRows := false
		for _, selector := range suggestionSelectors {
			options := surface.Frame.Locator(selector)
			texts, err := options.AllInnerTexts()
			if err != nil || len(texts) == 0 {
				continue
			}
			sawRows = true

			idx := chooseSuggestion(texts)
			if idx < 0 {
				continue
			}
			if err := options.Nth(idx).Click(); err != nil {
				log.Printf("Search: suggestion click failed: %v", err)
				continue
			}
			log.Printf("Search: selected suggestion %d (%s)", idx, strings.TrimSpace(texts[idx]))
			return true
		}
		if sawRows {
			return false
		}
		surface.Page.WaitForTimeout(400)
	}
	return false
}

// chooseSuggestion returns the index of the first usable suggestion
// within the probe window, or -1 when every row is empty or a "no
// results" sentinel.
func chooseSuggestion(texts []string) int {
	limit := len(texts)
	if limit > maxSuggestions {
		limit = maxSuggestions
	}
	for i := 0; i < limit; i++ {
		if !isNoResult(texts[i]) {
			return i
		}
	}
	return -1
}

func isNoResult(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range noResultPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return strings.TrimSpace(text) == ""
}

// confirmSearch treats either a rendered detail marker or disappearance
// of the original input (navigation happened) as success.
func confirmSearch(surface *Surface, input playwright.Locator, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		for _, marker := range detailMarkers {
			m := surface.Frame.Locator(marker).First()
			if visible, _ := m.IsVisible(); visible {
				return nil
			}
		}
		if visible, _ := input.IsVisible(); !visible {
			return nil
		}
		surface.Page.WaitForTimeout(500)
	}

	return ErrSearchInputNotFound
}
