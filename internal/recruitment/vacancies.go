package recruitment

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/gotrs-io/recruitment-e2e/internal/driver"
)

// VacanciesPage drives the Recruitment > Vacancies screens.
type VacanciesPage struct {
	page
	nav *Navigator
}

// CreateVacancy fills the Add Vacancy form from the vacancies list and saves
// it, waiting for the confirmation toast.
func (v *VacanciesPage) CreateVacancy(ctx context.Context, vac Vacancy) (err error) {
	defer v.step("create vacancy " + vac.Name)(&err)

	if err := v.click(ctx, addButton); err != nil {
		return fmt.Errorf("failed to click add: %w", err)
	}
	if err := v.typeInto(ctx, driver.ForLabel("Vacancy Name", driver.Input), vac.Name); err != nil {
		return fmt.Errorf("failed to fill vacancy name: %w", err)
	}
	if err := v.choose(ctx, driver.ForLabel("Job Title", driver.AnyDiv), optionContaining(vac.JobTitle)); err != nil {
		return fmt.Errorf("failed to select job title %q: %w", vac.JobTitle, err)
	}
	if err := v.typeNow(ctx, driver.ForLabel("Description", driver.Textarea), vac.Description); err != nil {
		return fmt.Errorf("failed to fill description: %w", err)
	}
	if err := v.typeNow(ctx, driver.ForLabel("Hiring Manager", driver.Input), vac.HiringManagerHint); err != nil {
		return fmt.Errorf("failed to fill hiring manager: %w", err)
	}
	if err := v.click(ctx, firstOption); err != nil {
		return fmt.Errorf("failed to pick hiring manager: %w", err)
	}
	if err := v.typeNow(ctx, driver.ForLabel("Number of Positions", driver.Input), vac.Positions); err != nil {
		return fmt.Errorf("failed to fill number of positions: %w", err)
	}

	save, err := v.d.FindElement(ctx, saveButton)
	if err != nil {
		return fmt.Errorf("failed to find save: %w", err)
	}
	if err := save.ScrollIntoView(ctx); err != nil {
		return fmt.Errorf("failed to scroll to save: %w", err)
	}
	if err := save.Click(ctx); err != nil {
		return fmt.Errorf("failed to click save: %w", err)
	}
	return v.waitToast(ctx)
}

// SearchVacancy reloads the vacancies list, searches by name and reports
// whether any row's text contains name.
func (v *VacanciesPage) SearchVacancy(ctx context.Context, name string) (found bool, err error) {
	defer v.step("search vacancy " + name)(&err)

	if err := v.nav.GoToVacancies(ctx); err != nil {
		return false, err
	}
	box, err := v.visible(ctx, driver.ForLabel("Vacancy", driver.Input))
	if err != nil {
		return false, fmt.Errorf("vacancy filter not visible: %w", err)
	}
	if err := box.Clear(ctx); err != nil {
		return false, fmt.Errorf("failed to clear vacancy filter: %w", err)
	}
	if err := box.Type(ctx, name); err != nil {
		return false, fmt.Errorf("failed to fill vacancy filter: %w", err)
	}
	if err := v.clickNow(ctx, searchButton); err != nil {
		return false, fmt.Errorf("failed to click search: %w", err)
	}
	rows, err := v.waitTable(ctx)
	if err != nil {
		return false, err
	}
	texts, err := rowTexts(ctx, rows)
	if err != nil {
		return false, err
	}
	return RowsContain(texts, name), nil
}

// OpenVacancy searches for name and opens the first result row.
func (v *VacanciesPage) OpenVacancy(ctx context.Context, name string) (err error) {
	defer v.step("open vacancy " + name)(&err)

	found, err := v.SearchVacancy(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		log.Warn().Str("vacancy", name).Msg("vacancy not in results; opening first row")
	}
	if err := v.click(ctx, tableCard); err != nil {
		return fmt.Errorf("failed to open vacancy row: %w", err)
	}
	return nil
}

// AddAttachment uploads path to the open vacancy with a comment, defaulting
// to DefaultAttachmentComment, and waits for the confirmation toast.
func (v *VacanciesPage) AddAttachment(ctx context.Context, path, comment string) (err error) {
	defer v.step("add attachment")(&err)

	if comment == "" {
		comment = DefaultAttachmentComment
	}
	if err := v.click(ctx, attachmentsAdd); err != nil {
		return fmt.Errorf("failed to click add attachment: %w", err)
	}
	// File inputs are usually styled away, so only presence is awaited.
	file, err := v.waitPresent(ctx, attachmentFile)
	if err != nil {
		return fmt.Errorf("file input not found: %w", err)
	}
	if err := file.SetFiles(ctx, path); err != nil {
		return fmt.Errorf("failed to set attachment file: %w", err)
	}
	if err := v.typeInto(ctx, attachmentComment, comment); err != nil {
		return fmt.Errorf("failed to fill attachment comment: %w", err)
	}
	if err := v.clickNow(ctx, attachmentSave); err != nil {
		return fmt.Errorf("failed to save attachment: %w", err)
	}
	return v.waitToast(ctx)
}

// SelectFilterOption opens the labeled dropdown filter and picks its first
// option.
func (v *VacanciesPage) SelectFilterOption(ctx context.Context, label string) (err error) {
	defer v.step("select filter " + label)(&err)

	if err := v.choose(ctx, driver.ForLabel(label, driver.SelectText), firstOption); err != nil {
		return fmt.Errorf("filter %q: %w", label, err)
	}
	return nil
}

// ApplyFilters picks the first option of each labeled filter, searches and
// returns the number of rows shown.
func (v *VacanciesPage) ApplyFilters(ctx context.Context, labels ...string) (n int, err error) {
	for _, label := range labels {
		if err := v.SelectFilterOption(ctx, label); err != nil {
			return 0, err
		}
	}
	if err := v.clickNow(ctx, searchButton); err != nil {
		return 0, fmt.Errorf("failed to click search: %w", err)
	}
	rows, err := v.waitTable(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// RowsContain reports whether any row text contains name as a literal,
// case- and whitespace-sensitive substring.
func RowsContain(rows []string, name string) bool {
	for _, r := range rows {
		if strings.Contains(r, name) {
			return true
		}
	}
	return false
}

func rowTexts(ctx context.Context, rows []driver.Element) ([]string, error) {
	texts := make([]string, 0, len(rows))
	for i, r := range rows {
		t, err := r.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", i, err)
		}
		texts = append(texts, t)
	}
	return texts, nil
}
