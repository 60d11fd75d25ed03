package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"serpavi_estimator/config"
)

func newTestNavigator(resolveTimeoutMS int) *Navigator {
	return NewNavigator(&config.SiteConfig{
		Domain:           "serpavi.mivau.gob.es",
		ResolveTimeoutMS: resolveTimeoutMS,
	}, config.PipelineConfig{NavTimeout: time.Second})
}

func stubAttempt(name string, calls *[]string, surface *Surface) navAttempt {
	return navAttempt{name: name, fn: func(*Session, time.Time) *Surface {
		*calls = append(*calls, name)
		return surface
	}}
}

func TestResolve_AttemptOrder(t *testing.T) {
	n := newTestNavigator(2000)
	var calls []string
	n.attempts = []navAttempt{
		stubAttempt("direct", &calls, nil),
		stubAttempt("landing", &calls, nil),
		stubAttempt("direct-retry", &calls, nil),
	}

	_, err := n.Resolve(context.Background(), nil)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	want := []string{"direct", "landing", "direct-retry"}
	if len(calls) != len(want) {
		t.Fatalf("expected %d attempts, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("attempt %d: expected %s, got %s", i, want[i], calls[i])
		}
	}
}

func TestResolve_LandingFallbackBeforeUnreachable(t *testing.T) {
	n := newTestNavigator(2000)
	var calls []string
	resolved := &Surface{}
	n.attempts = []navAttempt{
		stubAttempt("direct", &calls, nil),
		stubAttempt("landing", &calls, resolved),
		stubAttempt("direct-retry", &calls, nil),
	}

	surface, err := n.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected success via landing path, got %v", err)
	}
	if surface != resolved {
		t.Fatal("expected the landing attempt's surface")
	}
	if len(calls) != 2 || calls[0] != "direct" || calls[1] != "landing" {
		t.Fatalf("expected direct then landing only, got %v", calls)
	}
}

func TestResolve_DeadlineShortCircuits(t *testing.T) {
	n := newTestNavigator(-1)
	var calls []string
	n.attempts = []navAttempt{
		stubAttempt("direct", &calls, nil),
		stubAttempt("landing", &calls, nil),
	}

	_, err := n.Resolve(context.Background(), nil)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no attempts past an expired deadline, got %v", calls)
	}
}

func TestResolve_ContextCancelled(t *testing.T) {
	n := newTestNavigator(2000)
	var calls []string
	n.attempts = []navAttempt{stubAttempt("direct", &calls, nil)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Resolve(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no attempts after cancellation, got %v", calls)
	}
}

func TestHostMatches(t *testing.T) {
	cases := []struct {
		url    string
		domain string
		want   bool
	}{
		{"https://serpavi.mivau.gob.es/consulta", "serpavi.mivau.gob.es", true},
		{"https://app.serpavi.mivau.gob.es/", "serpavi.mivau.gob.es", true},
		{"https://www.mivau.gob.es/vivienda", "serpavi.mivau.gob.es", false},
		{"https://serpavi.mivau.gob.es.evil.com/", "serpavi.mivau.gob.es", false},
		{"about:blank", "serpavi.mivau.gob.es", false},
	}
	for _, c := range cases {
		if got := hostMatches(c.url, c.domain); got != c.want {
			t.Fatalf("hostMatches(%q, %q) = %v, want %v", c.url, c.domain, got, c.want)
		}
	}
}
