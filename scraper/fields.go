package scraper

import (
	"fmt"
	"log"
	"regexp"

	"github.com/playwright-community/playwright-go"
)

// FormControl is a uniform handle over the heterogeneous controls the
// calculator renders: selects, free-text inputs and yes/no groups. The
// variant is decided once at lookup, not re-inspected on every use.
type FormControl interface {
	Set(value string) error
}

// Affirmative/negative accessible-name patterns for the es-ES locale.
var (
	yesOptionSelectors = []string{
		"label:has-text('Sí')",
		"label:has-text('Si')",
		"input[type='radio'][value='true']",
		"input[type='radio'][value='si']",
		"input[type='radio'][value='S']",
	}
	noOptionSelectors = []string{
		"label:has-text('No')",
		"input[type='radio'][value='false']",
		"input[type='radio'][value='no']",
		"input[type='radio'][value='N']",
	}
)

type selectControl struct {
	loc playwright.Locator
}

func (c *selectControl) Set(value string) error {
	if _, err := c.loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err == nil {
		return nil
	}
	_, err := c.loc.SelectOption(playwright.SelectOptionValues{Labels: &[]string{value}})
	if err != nil {
		return fmt.Errorf("select option %q: %w", value, err)
	}
	return nil
}

type textControl struct {
	loc playwright.Locator
}

func (c *textControl) Set(value string) error {
	if err := c.loc.Fill(value); err != nil {
		return fmt.Errorf("fill %q: %w", value, err)
	}
	return nil
}

type toggleControl struct {
	group playwright.Locator
}

func (c *toggleControl) Set(value string) error {
	selectors := yesOptionSelectors
	if value == "false" {
		selectors = noOptionSelectors
	}
	for _, selector := range selectors {
		opt := c.group.Locator(selector).First()
		if visible, _ := opt.IsVisible(); visible {
			return opt.Click()
		}
	}
	return fmt.Errorf("no matching toggle option for %q", value)
}

// checkControl is a single labeled checkbox with no surrounding group.
type checkControl struct {
	loc playwright.Locator
}

func (c *checkControl) Set(value string) error {
	return c.loc.SetChecked(value == "true")
}

// FieldLocator resolves form controls inside the target frame by label
// pattern (case-insensitive, partial). A control that is not present is
// reported as absent, not as an error: the calculator's attribute set
// varies by property type.
type FieldLocator struct {
	frame playwright.Frame
}

func NewFieldLocator(frame playwright.Frame) *FieldLocator {
	return &FieldLocator{frame: frame}
}

func (l *FieldLocator) Resolve(label string) (FormControl, bool) {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label))

	loc := l.frame.GetByLabel(pattern).First()
	if visible, _ := loc.IsVisible(); visible {
		return l.classify(loc, label), true
	}

	if group, ok := l.resolveGroup(label); ok {
		return &toggleControl{group: group}, true
	}

	return nil, false
}

// resolveGroup finds a yes/no group whose label sits on a surrounding
// fieldset rather than on the individual inputs.
func (l *FieldLocator) resolveGroup(label string) (playwright.Locator, bool) {
	groupSelectors := []string{
		fmt.Sprintf("fieldset:has-text('%s')", label),
		fmt.Sprintf("[role='radiogroup']:has-text('%s')", label),
		fmt.Sprintf("[role='group']:has-text('%s')", label),
	}
	for _, selector := range groupSelectors {
		group := l.frame.Locator(selector).First()
		if visible, _ := group.IsVisible(); visible {
			return group, true
		}
	}
	return nil, false
}

// classify inspects the element once and returns the matching variant.
func (l *FieldLocator) classify(loc playwright.Locator, label string) FormControl {
	kind, err := loc.Evaluate(`el => el.tagName.toLowerCase() + ':' + (el.type || '')`, nil)
	if err != nil {
		log.Printf("Field classify failed, assuming text control: %v", err)
		return &textControl{loc: loc}
	}

	switch kind {
	case "select:", "select:select-one", "select:select-multiple":
		return &selectControl{loc: loc}
	case "input:radio", "input:checkbox":
		if group, ok := l.resolveGroup(label); ok {
			return &toggleControl{group: group}
		}
		return &checkControl{loc: loc}
	default:
		return &textControl{loc: loc}
	}
}
