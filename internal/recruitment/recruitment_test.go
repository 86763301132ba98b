package recruitment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
	"github.com/gotrs-io/recruitment-e2e/internal/driver"
	"github.com/gotrs-io/recruitment-e2e/internal/driver/drivertest"
	"github.com/gotrs-io/recruitment-e2e/internal/wait"
)

var fast = wait.Options{Timeout: 200 * time.Millisecond, Interval: 5 * time.Millisecond}

func testConfig() *config.Config {
	return &config.Config{
		Target: config.TargetConfig{
			BaseURL:       "http://hrm.test",
			VacanciesPath: "/web/index.php/recruitment/viewJobVacancy",
		},
		Credentials: config.CredentialsConfig{Username: "Admin", Password: "admin123"},
	}
}

func newPages(p *drivertest.Page) *Pages { return NewPages(p, testConfig(), fast) }

func valueOf(t *testing.T, p *drivertest.Page, loc driver.Locator) string {
	t.Helper()
	el, err := p.FindElement(context.Background(), loc)
	require.NoError(t, err)
	v, err := el.Value(context.Background())
	require.NoError(t, err)
	return v
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("reaches dashboard", func(t *testing.T) {
		p := drivertest.New()
		submit := drivertest.NewElement("Login")
		submit.OnClick = func() { p.Set(dashboardHeader, drivertest.NewElement("Dashboard")) }
		p.Set(usernameField, drivertest.Input()).Set(passwordField, drivertest.Input()).Set(submitButton, submit)

		require.NoError(t, newPages(p).Auth.Login(ctx))
		assert.Equal(t, "Admin", valueOf(t, p, usernameField))
		assert.Equal(t, "admin123", valueOf(t, p, passwordField))
		assert.Equal(t, 1, submit.Clicks)
	})

	t.Run("wrong credentials time out", func(t *testing.T) {
		p := drivertest.New()
		p.Set(usernameField, drivertest.Input()).Set(passwordField, drivertest.Input()).
			Set(submitButton, drivertest.NewElement("Login"))

		err := newPages(p).Auth.LoginAs(ctx, "Admin", "wrong")
		require.Error(t, err)
		assert.ErrorIs(t, err, driver.ErrTimeout)
		assert.Contains(t, err.Error(), "login did not reach the dashboard")
	})

	t.Run("missing login form times out", func(t *testing.T) {
		err := newPages(drivertest.New()).Auth.Login(ctx)
		assert.ErrorIs(t, err, driver.ErrTimeout)
		assert.Contains(t, err.Error(), "failed to fill username")
	})
}

func TestGoToCandidates(t *testing.T) {
	ctx := context.Background()
	p := drivertest.New()
	menu := drivertest.NewElement("Recruitment")
	menu.OnClick = func() {
		p.SetURL("http://hrm.test/web/index.php/recruitment/viewCandidates")
		p.Set(candidatesHeader, drivertest.NewElement("Candidates"))
		p.Set(table, drivertest.NewElement(""))
	}
	p.Set(recruitmentMenu, menu)

	pages := newPages(p)
	require.NoError(t, pages.Nav.GoToCandidates(ctx))
	u, err := pages.Nav.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, u, "recruitment/viewCandidates")
	visible, err := pages.Nav.CandidatesTableVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestGoToVacancies(t *testing.T) {
	ctx := context.Background()
	p := drivertest.New()
	p.OnNavigate = func(string) { p.Set(vacanciesHeader, drivertest.NewElement("Vacancies")) }

	require.NoError(t, newPages(p).Nav.GoToVacancies(ctx))
	assert.Equal(t, []string{"http://hrm.test/web/index.php/recruitment/viewJobVacancy"}, p.Visited)

	err := newPages(drivertest.New()).Nav.GoToVacancies(ctx)
	assert.ErrorIs(t, err, driver.ErrTimeout)
}

func candidatesList(rows ...string) *drivertest.Page {
	p := drivertest.New()
	p.Set(candidateNameInput, drivertest.Input())
	body := drivertest.NewElement("")
	// A list without rows has a zero-size body that engines report as hidden.
	body.Hidden = len(rows) == 0
	p.Set(tableBody, body)
	cards := make([]*drivertest.Element, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, drivertest.NewElement(r))
	}
	p.Set(tableCard, cards...)
	p.Set(submitButton, drivertest.NewElement("Search"))
	return p
}

func TestSearchByName(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		rows []string
	}{
		{"Peter", []string{"Peter Mac Anderson"}},
		{"Linda", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := candidatesList(tc.rows...)
			n, err := newPages(p).Candidates.SearchByName(ctx, tc.name)
			require.NoError(t, err)
			assert.Equal(t, len(tc.rows), n)
			assert.Equal(t, tc.name, valueOf(t, p, candidateNameInput))
		})
	}

	t.Run("no results with hidden table body", func(t *testing.T) {
		p := candidatesList()
		el, err := p.FindElement(ctx, tableBody)
		require.NoError(t, err)
		visible, err := el.Visible(ctx)
		require.NoError(t, err)
		require.False(t, visible)

		n, err := newPages(p).Candidates.SearchByName(ctx, "Nobody")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("table never loads", func(t *testing.T) {
		p := candidatesList()
		p.Remove(tableBody)
		_, err := newPages(p).Candidates.SearchByName(ctx, "Peter")
		assert.ErrorIs(t, err, driver.ErrTimeout)
	})
}

func TestResetSearchKeepsValue(t *testing.T) {
	ctx := context.Background()
	p := candidatesList()
	reset := drivertest.NewElement("Reset")
	p.Set(resetButton, reset)

	v, err := newPages(p).Candidates.ResetSearch(ctx, "aki")
	require.NoError(t, err)
	assert.Equal(t, "aki", v)
	assert.Equal(t, 1, reset.Clicks)
}

// buildCandidateForm renders the Add Candidate form onto p, the way the
// real page does after Add is clicked.
func buildCandidateForm(p *drivertest.Page, save *drivertest.Element) {
	for _, loc := range []driver.Locator{
		firstNameField, middleNameField, lastNameField,
		driver.ForLabel("Email", driver.Input),
		driver.ForLabel("Contact Number", driver.Input),
		driver.ForLabel("Keywords", driver.Input),
		driver.ForLabel("Notes", driver.Textarea),
	} {
		p.Set(loc, drivertest.Input())
	}
	vacancy := drivertest.NewElement("-- Select --")
	vacancy.OnClick = func() { p.Set(optionContaining("Senior QA Lead"), drivertest.NewElement("Senior QA Lead")) }
	p.Set(driver.ForLabel("Vacancy", driver.SelectText), vacancy)
	calendar := drivertest.NewElement("")
	calendar.OnClick = func() { p.Set(calendarDay("12"), drivertest.NewElement("12")) }
	p.Set(driver.ForLabel("Date of Application", driver.Icon), calendar)
	p.Set(driver.ForLabelContaining("Consent", driver.Container), drivertest.NewElement(""))
	p.Set(saveButton, save)
}

func TestAddCandidate(t *testing.T) {
	ctx := context.Background()
	p := drivertest.New()
	save := drivertest.NewElement("Save")
	save.OnClick = func() { p.Set(profileContainer, drivertest.NewElement("Application Stage")) }
	add := drivertest.NewElement("Add")
	add.OnClick = func() { buildCandidateForm(p, save) }
	p.Set(addButton, add)

	cand := Candidate{
		FirstName: "Aki", MiddleName: "Test", LastName: "Candidate",
		Vacancy: "Senior QA Lead", Email: "aki_1700000000@example.com",
		ContactNumber: "09123456789", Keywords: "automation, selenium, python",
		ApplicationDay: "12", Notes: "Automation test candidate", Consent: true,
	}
	pages := newPages(p)
	require.NoError(t, pages.Candidates.AddCandidate(ctx, cand))

	visible, err := pages.Candidates.ProfileVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, "Aki", valueOf(t, p, firstNameField))
	assert.Equal(t, "Candidate", valueOf(t, p, lastNameField))
	assert.Equal(t, "aki_1700000000@example.com", valueOf(t, p, driver.ForLabel("Email", driver.Input)))
	assert.Equal(t, "Automation test candidate", valueOf(t, p, driver.ForLabel("Notes", driver.Textarea)))
	assert.Equal(t, 1, save.Clicks)
}

func TestAddCandidateMissingVacancyOption(t *testing.T) {
	ctx := context.Background()
	p := drivertest.New()
	add := drivertest.NewElement("Add")
	add.OnClick = func() { buildCandidateForm(p, drivertest.NewElement("Save")) }
	p.Set(addButton, add)

	err := newPages(p).Candidates.AddCandidate(ctx, Candidate{FirstName: "Aki", Vacancy: "Nonexistent"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrTimeout)
	assert.Contains(t, err.Error(), `failed to select vacancy "Nonexistent"`)
}

func TestSubmitEmptyForm(t *testing.T) {
	ctx := context.Background()

	t.Run("errors shown", func(t *testing.T) {
		p := drivertest.New()
		save := drivertest.NewElement("Save")
		save.OnClick = func() {
			p.Set(errorInputs, drivertest.Input(), drivertest.Input())
		}
		add := drivertest.NewElement("Add")
		add.OnClick = func() { p.Set(saveButton, save) }
		p.Set(addButton, add)

		n, err := newPages(p).Candidates.SubmitEmptyForm(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("no validation yields zero", func(t *testing.T) {
		p := drivertest.New()
		p.Set(addButton, drivertest.NewElement("Add")).Set(saveButton, drivertest.NewElement("Save"))

		n, err := newPages(p).Candidates.SubmitEmptyForm(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestNextPage(t *testing.T) {
	ctx := context.Background()

	moved, err := newPages(candidatesList()).Candidates.NextPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	p := candidatesList("Peter Mac Anderson")
	next := drivertest.NewElement("Next")
	p.Set(nextButton, next, drivertest.NewElement("Next"))
	moved, err = newPages(p).Candidates.NextPage(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, next.Clicks)
}

func TestDeleteFirstRow(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list is a no-op", func(t *testing.T) {
		deleted, err := newPages(candidatesList()).Candidates.DeleteFirstRow(ctx)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("empty list with hidden body is a no-op", func(t *testing.T) {
		p := drivertest.New()
		body := drivertest.NewElement("")
		body.Hidden = true
		p.Set(tableBody, body)

		deleted, err := newPages(p).Candidates.DeleteFirstRow(ctx)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("deletes with confirmation", func(t *testing.T) {
		p := drivertest.New()
		p.Set(tableBody, drivertest.NewElement(""))
		trash := drivertest.NewElement("")
		trash.OnClick = func() {
			confirm := drivertest.NewElement("Yes, Delete")
			confirm.OnClick = func() { p.Set(toast, drivertest.NewElement("Successfully Deleted")) }
			p.Set(confirmDelete, confirm)
		}
		p.Set(tableCard,
			drivertest.NewElement("Peter Mac Anderson").With(rowTrashButton, trash),
			drivertest.NewElement("Linda Jane Anderson"))

		deleted, err := newPages(p).Candidates.DeleteFirstRow(ctx)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, 1, trash.Clicks)
	})

	t.Run("missing toast times out", func(t *testing.T) {
		p := drivertest.New()
		p.Set(tableBody, drivertest.NewElement(""))
		p.Set(confirmDelete, drivertest.NewElement("Yes, Delete"))
		p.Set(tableCard, drivertest.NewElement("Peter").With(rowTrashButton, drivertest.NewElement("")))

		_, err := newPages(p).Candidates.DeleteFirstRow(ctx)
		assert.ErrorIs(t, err, driver.ErrTimeout)
		assert.Contains(t, err.Error(), "no confirmation toast")
	})
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	p := candidatesList("Peter Mac Anderson")

	opener := func(option driver.Locator, text string) *drivertest.Element {
		el := drivertest.NewElement("-- Select --")
		el.OnClick = func() { p.Set(option, drivertest.NewElement(text)) }
		return el
	}
	p.Set(driver.ForLabel("Job Title", driver.Container), opener(optionWithText("QA Engineer"), "QA Engineer"))
	p.Set(driver.ForLabel("Vacancy", driver.Container), opener(optionContaining("Senior QA Lead"), "Senior QA Lead"))
	p.Set(driver.ForLabel("Status", driver.Container), opener(optionWithText("Shortlisted"), "Shortlisted"))
	p.Set(driver.ForLabel("Method of Application", driver.Container), opener(optionWithText("Online"), "Online"))
	p.Set(driver.ForLabel("Keywords", driver.Input), drivertest.Input())
	p.Set(fromDateInput, drivertest.Input()).Set(toDateInput, drivertest.Input())

	n, err := newPages(p).Candidates.Filter(ctx, CandidateFilter{
		JobTitle: "QA Engineer", Vacancy: "Senior QA Lead", Status: "Shortlisted",
		CandidateName: "Peter", Keywords: "automation",
		From: "2023-01-01", To: "2023-12-31", Method: "Online",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "2023-01-01", valueOf(t, p, fromDateInput))
	assert.Equal(t, "automation", valueOf(t, p, driver.ForLabel("Keywords", driver.Input)))
}

func vacancyPage(t *testing.T, rows ...string) *drivertest.Page {
	t.Helper()
	p := drivertest.New()
	p.OnNavigate = func(string) {
		p.Set(vacanciesHeader, drivertest.NewElement("Vacancies"))
		p.Set(driver.ForLabel("Vacancy", driver.Input), drivertest.Input())
		p.Set(searchButton, drivertest.NewElement("Search"))
		p.Set(tableBody, drivertest.NewElement(""))
		cards := make([]*drivertest.Element, 0, len(rows))
		for _, r := range rows {
			cards = append(cards, drivertest.NewElement(r))
		}
		p.Set(tableCard, cards...)
	}
	return p
}

func TestSearchVacancy(t *testing.T) {
	ctx := context.Background()
	name := "QA Lead Vacancy 1700000000"

	found, err := newPages(vacancyPage(t, "QA Lead Vacancy 1700000000 QA Lead Active")).Vacancies.SearchVacancy(ctx, name)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = newPages(vacancyPage(t, "Senior QA Lead")).Vacancies.SearchVacancy(ctx, name)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = newPages(vacancyPage(t)).Vacancies.SearchVacancy(ctx, name)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateVacancy(t *testing.T) {
	ctx := context.Background()
	p := drivertest.New()
	save := drivertest.NewElement("Save")
	save.OnClick = func() { p.Set(toast, drivertest.NewElement("Successfully Saved")) }
	add := drivertest.NewElement("Add")
	add.OnClick = func() {
		p.Set(driver.ForLabel("Vacancy Name", driver.Input), drivertest.Input())
		jobTitle := drivertest.NewElement("-- Select --")
		jobTitle.OnClick = func() { p.Set(optionContaining("QA Lead"), drivertest.NewElement("QA Lead")) }
		p.Set(driver.ForLabel("Job Title", driver.AnyDiv), jobTitle)
		p.Set(driver.ForLabel("Description", driver.Textarea), drivertest.Input())
		manager := drivertest.Input()
		p.Set(driver.ForLabel("Hiring Manager", driver.Input), manager)
		p.Set(firstOption, drivertest.NewElement("Odis Adalwin"))
		p.Set(driver.ForLabel("Number of Positions", driver.Input), drivertest.Input())
		p.Set(saveButton, save)
	}
	p.Set(addButton, add)

	err := newPages(p).Vacancies.CreateVacancy(ctx, Vacancy{
		Name: "QA Lead Vacancy 1700000000", JobTitle: "QA Lead",
		Description: "Automated test vacancy", HiringManagerHint: "a", Positions: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "QA Lead Vacancy 1700000000", valueOf(t, p, driver.ForLabel("Vacancy Name", driver.Input)))
	assert.Equal(t, "a", valueOf(t, p, driver.ForLabel("Hiring Manager", driver.Input)))
	assert.Equal(t, 1, save.Clicks)
}

func TestOpenVacancyAndAddAttachment(t *testing.T) {
	ctx := context.Background()
	p := vacancyPage(t, "QA Lead Vacancy 1")
	file := drivertest.Input()
	file.Hidden = true
	comment := drivertest.Input()
	attachSave := drivertest.NewElement("Save")
	attachSave.OnClick = func() { p.Set(toast, drivertest.NewElement("Successfully Saved")) }
	attachAdd := drivertest.NewElement("Add")
	attachAdd.OnClick = func() {
		p.Set(attachmentFile, file)
		p.Set(attachmentComment, comment)
		p.Set(attachmentSave, attachSave)
	}
	pages := newPages(p)
	require.NoError(t, pages.Vacancies.OpenVacancy(ctx, "QA Lead Vacancy 1"))
	p.Set(attachmentsAdd, attachAdd)

	require.NoError(t, pages.Vacancies.AddAttachment(ctx, "/tmp/sample.pdf", ""))
	assert.Equal(t, []string{"/tmp/sample.pdf"}, file.Files)
	assert.Equal(t, DefaultAttachmentComment, comment.Val)
}

func chain(fs ...func(string)) func(string) {
	return func(u string) {
		for _, f := range fs {
			if f != nil {
				f(u)
			}
		}
	}
}

func TestApplyFilters(t *testing.T) {
	ctx := context.Background()
	p := vacancyPage(t, "Senior QA Lead")
	require.NoError(t, newPages(p).Nav.GoToVacancies(ctx))
	for _, label := range VacancyFilterLabels {
		opener := drivertest.NewElement("-- Select --")
		opener.OnClick = func() { p.Set(firstOption, drivertest.NewElement("first")) }
		p.Set(driver.ForLabel(label, driver.SelectText), opener)
	}

	n, err := newPages(p).Vacancies.ApplyFilters(ctx, VacancyFilterLabels...)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = newPages(p).Vacancies.SelectFilterOption(ctx, "Location")
	assert.ErrorIs(t, err, driver.ErrTimeout)
	assert.Contains(t, err.Error(), `filter "Location"`)
}

func TestRowReadErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	p := vacancyPage(t, "Senior QA Lead")
	p.OnNavigate = chain(p.OnNavigate, func(string) {
		bad := drivertest.NewElement("x")
		bad.Err = errors.New("node detached")
		p.Set(tableCard, bad)
	})
	_, err := newPages(p).Vacancies.SearchVacancy(ctx, "Senior")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read row 0")
}

func TestRowsContain(t *testing.T) {
	rows := []string{"Senior QA Lead  QA Lead", "Junior Account Assistant"}
	assert.True(t, RowsContain(rows, "Senior QA Lead"))
	assert.False(t, RowsContain(rows, "senior qa lead"), "case sensitive")
	assert.False(t, RowsContain(rows, "Senior  QA"), "whitespace sensitive")
	assert.False(t, RowsContain(nil, "anything"))
	assert.True(t, RowsContain(rows, ""))
}

func TestRowsContainMatchesLinearScan(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z ]{0,12}`), 0, 6).Draw(t, "rows")
		name := rapid.StringMatching(`[a-zA-Z ]{0,4}`).Draw(t, "name")

		want := false
		for _, r := range rows {
			if strings.Contains(r, name) {
				want = true
				break
			}
		}
		if RowsContain(rows, name) != want {
			t.Fatalf("RowsContain(%q, %q) = %v, want %v", rows, name, !want, want)
		}
	})
}
