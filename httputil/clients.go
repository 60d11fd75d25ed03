package httputil

import (
	"net/http"
	"time"
)

// Clients holds the plain HTTP clients used outside the browser pipeline.
type Clients struct {
	// Probe fetches the target site for the connectivity diagnostic. It
	// does not follow redirects so the raw entry status is reported.
	Probe *http.Client
	// API is a general-purpose client for auxiliary calls.
	API *http.Client
}

func NewClients() *Clients {
	probe := &http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Clients{
		Probe: probe,
		API:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewProbeRequest builds the diagnostic GET with browser-like headers so
// the target does not treat the probe differently from a first visit.
func NewProbeRequest(url string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	return req, nil
}
