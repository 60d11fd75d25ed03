package scraper

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"serpavi_estimator/config"
)

// ErrUnreachable means no navigation path landed on the target domain
// within the resolution deadline. Distinct from later in-app failures.
var ErrUnreachable = errors.New("target application unreachable")

// Surface is the live interactive surface the rest of the pipeline works
// against: the frame hosted on the target domain plus its owning page
// (needed for keyboard, screenshots and popup handling). Scoped to one
// request, never cached.
type Surface struct {
	Page  playwright.Page
	Frame playwright.Frame
}

// Navigator resolves a Surface by trying ordered fallback paths: direct
// load of the application, then the ministry landing page (whose SERPAVI
// link may navigate in place or spawn a secondary tab), then the direct
// path once more.
type Navigator struct {
	site     *config.SiteConfig
	timeouts config.PipelineConfig
	attempts []navAttempt
}

// navAttempt is one ordered entry of the fallback plan. A nil Surface
// means the attempt did not land on the target domain.
type navAttempt struct {
	name string
	fn   func(*Session, time.Time) *Surface
}

func NewNavigator(site *config.SiteConfig, timeouts config.PipelineConfig) *Navigator {
	n := &Navigator{site: site, timeouts: timeouts}
	n.attempts = []navAttempt{
		{"direct", n.tryDirect},
		{"landing", n.tryViaLandingPage},
		{"direct-retry", n.tryDirect},
	}
	return n
}

func (n *Navigator) Resolve(ctx context.Context, session *Session) (*Surface, error) {
	deadline := time.Now().Add(time.Duration(n.site.ResolveTimeoutMS) * time.Millisecond)

	for _, attempt := range n.attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			log.Printf("Navigator: resolution deadline expired before %s attempt", attempt.name)
			break
		}
		if surface := attempt.fn(session, deadline); surface != nil {
			log.Printf("Navigator: resolved via %s path", attempt.name)
			return surface, nil
		}
		log.Printf("Navigator: %s attempt did not reach %s", attempt.name, n.site.Domain)
	}

	return nil, ErrUnreachable
}

func (n *Navigator) tryDirect(session *Session, deadline time.Time) *Surface {
	page := session.Page()

	_, err := page.Goto(n.site.AppURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(n.stepTimeoutMS(deadline)),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		log.Printf("Navigator: direct load error (continuing): %v", err)
	}

	DismissConsent(page)
	return n.findTargetSurface(page)
}

func (n *Navigator) tryViaLandingPage(session *Session, deadline time.Time) *Surface {
	page := session.Page()

	_, err := page.Goto(n.site.LandingURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(n.stepTimeoutMS(deadline)),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		log.Printf("Navigator: landing load error (continuing): %v", err)
	}

	DismissConsent(page)

	anchorSelectors := []string{
		"a[href*='" + n.site.Domain + "']",
		"a[href*='serpavi']",
		"a:has-text('SERPAVI')",
	}

	var anchor playwright.Locator
	for _, selector := range anchorSelectors {
		candidate := page.Locator(selector).First()
		if visible, _ := candidate.IsVisible(); visible {
			anchor = candidate
			log.Printf("Navigator: found landing anchor: %s", selector)
			break
		}
	}
	if anchor == nil {
		return nil
	}

	// The anchor may navigate in place or spawn a secondary page; race
	// both outcomes.
	popupCh := make(chan playwright.Page, 1)
	page.OnPopup(func(p playwright.Page) {
		select {
		case popupCh <- p:
		default:
		}
	})

	if err := anchor.Click(); err != nil {
		log.Printf("Navigator: anchor click failed: %v", err)
		return nil
	}

	for time.Now().Before(deadline) {
		select {
		case popup := <-popupCh:
			log.Printf("Navigator: anchor spawned popup: %s", popup.URL())
			popup.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
				State:   playwright.LoadStateDomcontentloaded,
				Timeout: playwright.Float(n.stepTimeoutMS(deadline)),
			})
			DismissConsent(popup)
			if surface := n.findTargetSurface(popup); surface != nil {
				return surface
			}
		default:
		}

		if surface := n.findTargetSurface(page); surface != nil {
			return surface
		}
		page.WaitForTimeout(500)
	}

	return nil
}

// findTargetSurface scans the page and all its child frames for one whose
// resolved location is hosted on the target domain.
func (n *Navigator) findTargetSurface(page playwright.Page) *Surface {
	for _, frame := range page.Frames() {
		if hostMatches(frame.URL(), n.site.Domain) {
			return &Surface{Page: page, Frame: frame}
		}
	}
	return nil
}

func (n *Navigator) stepTimeoutMS(deadline time.Time) float64 {
	remaining := time.Until(deadline)
	step := n.timeouts.NavTimeout
	if remaining < step {
		step = remaining
	}
	if step < time.Second {
		step = time.Second
	}
	return float64(step.Milliseconds())
}

func hostMatches(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}
