package scraper

import (
	"log"

	"github.com/playwright-community/playwright-go"
)

// Consent prompts vary per entry path (direct load, ministry landing page,
// popup), so dismissal runs at every navigation checkpoint. Strictly best
// effort: a prompt that never appears is the good case.
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#didomi-notice-agree-button",
	"button:has-text('Aceptar todas')",
	"button:has-text('Aceptar cookies')",
	"button:has-text('Aceptar')",
	"button:has-text('De acuerdo')",
	"button[id*='accept']",
	"button[class*='accept']",
	"button[class*='consent']",
	"a:has-text('Aceptar')",
}

// DismissConsent clicks the first visible consent control, if any.
func DismissConsent(page playwright.Page) {
	for _, selector := range consentSelectors {
		btn := page.Locator(selector).First()
		if visible, _ := btn.IsVisible(); visible {
			log.Printf("Clicking consent button: %s", selector)
			if err := btn.Click(); err != nil {
				log.Printf("Consent click failed (ignored): %v", err)
				continue
			}
			page.WaitForTimeout(1000)
			return
		}
	}
}
