// Package recruitment holds the page-interaction helpers for the recruitment
// module: login, navigation, and the candidate and vacancy workflows. Every
// helper waits on explicit predicates and returns wrapped errors; timeouts
// surface as driver.ErrTimeout.
package recruitment

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
	"github.com/gotrs-io/recruitment-e2e/internal/driver"
	"github.com/gotrs-io/recruitment-e2e/internal/session"
	"github.com/gotrs-io/recruitment-e2e/internal/wait"
)

// page carries what every helper needs: the live driver, the target
// configuration and the step wait bounds.
type page struct {
	d    driver.Driver
	cfg  *config.Config
	wait wait.Options
}

// Pages bundles the helpers for one session.
type Pages struct {
	Auth       *AuthHelper
	Nav        *Navigator
	Candidates *CandidatesPage
	Vacancies  *VacanciesPage
}

// NewPages builds every helper over d.
func NewPages(d driver.Driver, cfg *config.Config, w wait.Options) *Pages {
	p := page{d: d, cfg: cfg, wait: w}
	nav := &Navigator{page: p}
	return &Pages{
		Auth:       &AuthHelper{page: p},
		Nav:        nav,
		Candidates: &CandidatesPage{page: p},
		Vacancies:  &VacanciesPage{page: p, nav: nav},
	}
}

// For builds the helpers for an open session.
func For(s *session.Session) *Pages { return NewPages(s.Driver, s.Config, s.Wait) }

func (p page) step(name string) func(err *error) {
	start := time.Now()
	log.Info().Str("step", name).Msg("step started")
	return func(err *error) {
		if *err != nil {
			log.Warn().Str("step", name).Dur("elapsed", time.Since(start)).Err(*err).Msg("step failed")
			return
		}
		log.Debug().Str("step", name).Dur("elapsed", time.Since(start)).Msg("step done")
	}
}

func (p page) visible(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	return wait.Visible(ctx, p.d, p.wait, loc)
}

func (p page) clickable(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	return wait.Clickable(ctx, p.d, p.wait, loc)
}

func (p page) waitPresent(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	return wait.Present(ctx, p.d, p.wait, loc)
}

// click waits for loc to become clickable, then clicks it.
func (p page) click(ctx context.Context, loc driver.Locator) error {
	el, err := p.clickable(ctx, loc)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

// clickNow clicks the first match of loc without waiting.
func (p page) clickNow(ctx context.Context, loc driver.Locator) error {
	el, err := p.d.FindElement(ctx, loc)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

// typeInto waits for loc to become visible and appends text to it.
func (p page) typeInto(ctx context.Context, loc driver.Locator, text string) error {
	el, err := p.visible(ctx, loc)
	if err != nil {
		return err
	}
	return el.Type(ctx, text)
}

// typeNow appends text to the first match of loc without waiting.
func (p page) typeNow(ctx context.Context, loc driver.Locator, text string) error {
	el, err := p.d.FindElement(ctx, loc)
	if err != nil {
		return err
	}
	return el.Type(ctx, text)
}

// choose opens a dropdown and clicks an option once it becomes clickable.
func (p page) choose(ctx context.Context, opener, option driver.Locator) error {
	if err := p.click(ctx, opener); err != nil {
		return fmt.Errorf("failed to open dropdown: %w", err)
	}
	if err := p.click(ctx, option); err != nil {
		return fmt.Errorf("failed to pick option: %w", err)
	}
	return nil
}

func (p page) waitToast(ctx context.Context) error {
	if _, err := p.visible(ctx, toast); err != nil {
		return fmt.Errorf("no confirmation toast: %w", err)
	}
	return nil
}

// waitTable blocks until the list body is in the DOM and returns the rows.
// An empty list renders a zero-size body, so presence is all that is checked.
func (p page) waitTable(ctx context.Context) ([]driver.Element, error) {
	if _, err := p.waitPresent(ctx, tableBody); err != nil {
		return nil, fmt.Errorf("results table did not load: %w", err)
	}
	rows, err := p.d.FindElements(ctx, tableCard)
	if err != nil {
		return nil, fmt.Errorf("failed to read result rows: %w", err)
	}
	return rows, nil
}
