package recruitment

import (
	"context"
	"fmt"
)

// Navigator moves between recruitment screens.
type Navigator struct {
	page
}

// GoToCandidates opens Recruitment from the main menu and waits for the
// Candidates list.
func (n *Navigator) GoToCandidates(ctx context.Context) (err error) {
	defer n.step("go to candidates")(&err)

	if err := n.click(ctx, recruitmentMenu); err != nil {
		return fmt.Errorf("failed to open recruitment menu: %w", err)
	}
	if _, err := n.visible(ctx, candidatesHeader); err != nil {
		return fmt.Errorf("candidates page did not load: %w", err)
	}
	return nil
}

// GoToVacancies loads the vacancies list directly by URL.
func (n *Navigator) GoToVacancies(ctx context.Context) (err error) {
	defer n.step("go to vacancies")(&err)

	if err := n.d.Navigate(ctx, n.cfg.VacanciesURL()); err != nil {
		return fmt.Errorf("failed to navigate to vacancies: %w", err)
	}
	if _, err := n.visible(ctx, vacanciesHeader); err != nil {
		return fmt.Errorf("vacancies page did not load: %w", err)
	}
	return nil
}

// CandidatesTableVisible reports whether the candidates table is displayed,
// waiting up to the step bound for it.
func (n *Navigator) CandidatesTableVisible(ctx context.Context) (bool, error) {
	el, err := n.visible(ctx, table)
	if err != nil {
		return false, fmt.Errorf("candidates table not visible: %w", err)
	}
	return el.Visible(ctx)
}

// CurrentURL returns the page URL.
func (n *Navigator) CurrentURL(ctx context.Context) (string, error) {
	return n.d.CurrentURL(ctx)
}
