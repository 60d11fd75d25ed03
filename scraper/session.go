package scraper

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"serpavi_estimator/config"
)

// Resource types and request hosts aborted by the static interception
// policy. Heavy media and trackers add latency and flakiness without
// contributing to the calculation.
var (
	blockedResourceTypes = map[string]bool{
		"image": true,
		"media": true,
		"font":  true,
	}
	blockedHosts = []string{
		"google-analytics.com",
		"googletagmanager.com",
		"doubleclick.net",
		"facebook.net",
		"facebook.com",
		"hotjar.com",
	}
)

// Session owns exactly one browser process and one isolated browsing
// context. Sessions are created per request, never pooled or shared, and
// Close is safe on every exit path.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	mu     sync.Mutex
	closed bool
}

func NewSession(cfg *config.BrowserConfig) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Locale:   playwright.String("es-ES"),
		Viewport: &playwright.Size{Width: 1366, Height: 860},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("create context: %w", err)
	}

	if err := context.Route("**/*", interceptRequest); err != nil {
		log.Printf("Warning: request interception not installed: %v", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &Session{pw: pw, browser: browser, context: context, page: page}, nil
}

func (s *Session) Page() playwright.Page {
	return s.page
}

func (s *Session) Context() playwright.BrowserContext {
	return s.context
}

// Close tears the whole session down. Idempotent; every error is
// swallowed because teardown must not mask the pipeline outcome.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.context != nil {
		s.context.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
}

func interceptRequest(route playwright.Route) {
	req := route.Request()
	if blockedResourceTypes[req.ResourceType()] {
		route.Abort()
		return
	}
	for _, host := range blockedHosts {
		if strings.Contains(req.URL(), host) {
			route.Abort()
			return
		}
	}
	route.Continue()
}
