package recruitment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotrs-io/recruitment-e2e/internal/driver"
	"github.com/gotrs-io/recruitment-e2e/internal/wait"
)

// CandidatesPage drives the Recruitment > Candidates screen.
type CandidatesPage struct {
	page
}

// SearchByName filters the list by candidate name and returns the number of
// rows shown. Zero rows is a valid result.
func (c *CandidatesPage) SearchByName(ctx context.Context, name string) (n int, err error) {
	defer c.step("search candidate " + name)(&err)

	if err := c.typeInto(ctx, candidateNameInput, name); err != nil {
		return 0, fmt.Errorf("failed to fill candidate name: %w", err)
	}
	if err := c.clickNow(ctx, submitButton); err != nil {
		return 0, fmt.Errorf("failed to click search: %w", err)
	}
	rows, err := c.waitTable(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ResetSearch types term into the name filter, presses Reset and returns the
// field value once the list has reloaded.
func (c *CandidatesPage) ResetSearch(ctx context.Context, term string) (value string, err error) {
	defer c.step("reset search")(&err)

	field, err := c.visible(ctx, candidateNameInput)
	if err != nil {
		return "", fmt.Errorf("candidate name field not visible: %w", err)
	}
	if err := field.Type(ctx, term); err != nil {
		return "", fmt.Errorf("failed to fill candidate name: %w", err)
	}
	if err := c.click(ctx, resetButton); err != nil {
		return "", fmt.Errorf("failed to click reset: %w", err)
	}
	if _, err := c.waitTable(ctx); err != nil {
		return "", err
	}
	value, err = field.Value(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read candidate name: %w", err)
	}
	return value, nil
}

// AddCandidate fills the Add Candidate form, saves it and waits for the
// candidate profile to open.
func (c *CandidatesPage) AddCandidate(ctx context.Context, cand Candidate) (err error) {
	defer c.step("add candidate")(&err)

	if err := c.click(ctx, addButton); err != nil {
		return fmt.Errorf("failed to click add: %w", err)
	}
	if err := c.typeInto(ctx, firstNameField, cand.FirstName); err != nil {
		return fmt.Errorf("failed to fill first name: %w", err)
	}
	if err := c.typeNow(ctx, middleNameField, cand.MiddleName); err != nil {
		return fmt.Errorf("failed to fill middle name: %w", err)
	}
	if err := c.typeNow(ctx, lastNameField, cand.LastName); err != nil {
		return fmt.Errorf("failed to fill last name: %w", err)
	}
	if cand.Vacancy != "" {
		if err := c.choose(ctx, driver.ForLabel("Vacancy", driver.SelectText), optionContaining(cand.Vacancy)); err != nil {
			return fmt.Errorf("failed to select vacancy %q: %w", cand.Vacancy, err)
		}
	}

	for _, f := range []struct{ label, value string }{
		{"Email", cand.Email},
		{"Contact Number", cand.ContactNumber},
		{"Keywords", cand.Keywords},
	} {
		if f.value == "" {
			continue
		}
		if err := c.typeNow(ctx, driver.ForLabel(f.label, driver.Input), f.value); err != nil {
			return fmt.Errorf("failed to fill %s: %w", f.label, err)
		}
	}

	if cand.ApplicationDay != "" {
		if err := c.choose(ctx, driver.ForLabel("Date of Application", driver.Icon), calendarDay(cand.ApplicationDay)); err != nil {
			return fmt.Errorf("failed to pick application date: %w", err)
		}
	}
	if cand.Notes != "" {
		if err := c.typeNow(ctx, driver.ForLabel("Notes", driver.Textarea), cand.Notes); err != nil {
			return fmt.Errorf("failed to fill notes: %w", err)
		}
	}
	if cand.Consent {
		if err := c.click(ctx, driver.ForLabelContaining("Consent", driver.Container)); err != nil {
			return fmt.Errorf("failed to tick consent: %w", err)
		}
	}

	if err := c.clickNow(ctx, saveButton); err != nil {
		return fmt.Errorf("failed to click save: %w", err)
	}
	if _, err := c.visible(ctx, profileContainer); err != nil {
		return fmt.Errorf("candidate profile did not open: %w", err)
	}
	return nil
}

// ProfileVisible reports whether the candidate profile container is shown.
func (c *CandidatesPage) ProfileVisible(ctx context.Context) (bool, error) {
	el, err := c.d.FindElement(ctx, profileContainer)
	if errors.Is(err, driver.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return el.Visible(ctx)
}

// SubmitEmptyForm opens the Add Candidate form, saves it untouched and
// returns how many inputs are marked invalid. A form that never shows
// validation errors yields zero, not an error, so the caller's assertion
// reports it.
func (c *CandidatesPage) SubmitEmptyForm(ctx context.Context) (n int, err error) {
	defer c.step("submit empty candidate form")(&err)

	if err := c.click(ctx, addButton); err != nil {
		return 0, fmt.Errorf("failed to click add: %w", err)
	}
	if err := c.click(ctx, saveButton); err != nil {
		return 0, fmt.Errorf("failed to click save: %w", err)
	}

	err = wait.Until(ctx, c.wait, "validation errors", func(ctx context.Context) (bool, error) {
		els, err := c.d.FindElements(ctx, errorInputs)
		if err != nil {
			return false, err
		}
		n = len(els)
		return n > 0, nil
	})
	if errors.Is(err, driver.ErrTimeout) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// NextPage clicks the first Next pagination button when there is one and
// waits for the list to render. It reports whether a page change happened.
func (c *CandidatesPage) NextPage(ctx context.Context) (moved bool, err error) {
	defer c.step("next page")(&err)

	buttons, err := c.d.FindElements(ctx, nextButton)
	if err != nil {
		return false, fmt.Errorf("failed to look for pagination: %w", err)
	}
	if len(buttons) == 0 {
		return false, nil
	}
	if err := buttons[0].Click(ctx); err != nil {
		return false, fmt.Errorf("failed to click next: %w", err)
	}
	if _, err := c.waitTable(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteFirstRow deletes the first candidate in the list and waits for the
// confirmation toast. An empty list is a successful no-op reported as false.
func (c *CandidatesPage) DeleteFirstRow(ctx context.Context) (deleted bool, err error) {
	defer c.step("delete first candidate")(&err)

	rows, err := c.waitTable(ctx)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	trash, err := rows[0].FindElement(ctx, rowTrashButton)
	if err != nil {
		return false, fmt.Errorf("no delete button on first row: %w", err)
	}
	if err := trash.Click(ctx); err != nil {
		return false, fmt.Errorf("failed to click delete: %w", err)
	}
	if err := c.click(ctx, confirmDelete); err != nil {
		return false, fmt.Errorf("failed to confirm delete: %w", err)
	}
	if err := c.waitToast(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Filter applies every non-empty field of f, searches and returns the number
// of rows shown.
func (c *CandidatesPage) Filter(ctx context.Context, f CandidateFilter) (n int, err error) {
	defer c.step("filter candidates")(&err)

	selects := []struct {
		label  string
		option driver.Locator
		value  string
	}{
		{"Job Title", optionWithText(f.JobTitle), f.JobTitle},
		{"Vacancy", optionContaining(f.Vacancy), f.Vacancy},
		{"Status", optionWithText(f.Status), f.Status},
	}
	for _, s := range selects {
		if s.value == "" {
			continue
		}
		if err := c.choose(ctx, driver.ForLabel(s.label, driver.Container), s.option); err != nil {
			return 0, fmt.Errorf("failed to filter by %s: %w", s.label, err)
		}
	}

	inputs := []struct {
		name  string
		loc   driver.Locator
		value string
	}{
		{"candidate name", candidateNameInput, f.CandidateName},
		{"keywords", driver.ForLabel("Keywords", driver.Input), f.Keywords},
		{"from date", fromDateInput, f.From},
		{"to date", toDateInput, f.To},
	}
	for _, in := range inputs {
		if in.value == "" {
			continue
		}
		if err := c.typeInto(ctx, in.loc, in.value); err != nil {
			return 0, fmt.Errorf("failed to fill %s: %w", in.name, err)
		}
	}

	if f.Method != "" {
		if err := c.choose(ctx, driver.ForLabel("Method of Application", driver.Container), optionWithText(f.Method)); err != nil {
			return 0, fmt.Errorf("failed to filter by method: %w", err)
		}
	}

	if err := c.clickNow(ctx, submitButton); err != nil {
		return 0, fmt.Errorf("failed to click search: %w", err)
	}
	rows, err := c.waitTable(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
