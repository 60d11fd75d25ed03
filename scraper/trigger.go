package scraper

import (
	"errors"
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"

	"serpavi_estimator/config"
)

// Verbs the calculation control is expected to carry.
var triggerVerbs = []string{"Calcular", "Consultar", "Continuar", "Siguiente"}

var errNoTrigger = errors.New("calculation control not found")

// TriggerCalculation activates the control that produces the priced
// result, then waits for network quiescence plus a short settle delay to
// absorb client-side rendering that lags network completion.
func TriggerCalculation(surface *Surface, timeouts config.PipelineConfig) error {
	frame := surface.Frame

	var clicked bool
	for _, verb := range triggerVerbs {
		selectors := []string{
			fmt.Sprintf("button:has-text('%s')", verb),
			fmt.Sprintf("input[type='submit'][value*='%s' i]", verb),
			fmt.Sprintf("a[role='button']:has-text('%s')", verb),
		}
		for _, selector := range selectors {
			btn := frame.Locator(selector).First()
			if visible, _ := btn.IsVisible(); !visible {
				continue
			}
			if err := btn.Click(); err != nil {
				log.Printf("Trigger: click %s failed (continuing): %v", selector, err)
				continue
			}
			log.Printf("Trigger: clicked %s", selector)
			clicked = true
			break
		}
		if clicked {
			break
		}
	}
	if !clicked {
		return errNoTrigger
	}

	if err := surface.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeouts.StepTimeout.Milliseconds())),
	}); err != nil {
		log.Printf("Trigger: network idle wait expired (continuing): %v", err)
	}
	surface.Page.WaitForTimeout(float64(timeouts.SettleDelay.Milliseconds()))

	return nil
}
