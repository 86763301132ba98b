package recruitment

import "github.com/gotrs-io/recruitment-e2e/internal/driver"

// Login page and shell.
var (
	usernameField   = driver.Name("username")
	passwordField   = driver.Name("password")
	submitButton    = driver.XPath("//button[@type='submit']")
	dashboardHeader = driver.TagWithText("h6", "Dashboard")
	recruitmentMenu = driver.TagWithText("span", "Recruitment")
)

// Shared list and form markup.
var (
	table        = driver.CSS("div.oxd-table")
	tableBody    = driver.CSS("div.oxd-table-body")
	tableCard    = driver.CSS("div.oxd-table-card")
	toast        = driver.CSS("div.oxd-toast")
	errorInputs  = driver.CSS("input.oxd-input--error")
	firstOption  = driver.XPath("//div[@role='option'][1]")
	addButton    = driver.Button("Add")
	saveButton   = driver.Button("Save")
	searchButton = driver.Button("Search")
	resetButton  = driver.Button("Reset")
	nextButton   = driver.Button("Next")
)

// Candidates.
var (
	candidatesHeader   = driver.TagWithText("h5", "Candidates")
	candidateNameInput = driver.ForLabel("Candidate Name", driver.Input)
	firstNameField     = driver.Name("firstName")
	middleNameField    = driver.Name("middleName")
	lastNameField      = driver.Name("lastName")
	profileContainer   = driver.CSS("div.orangehrm-paper-container")
	// relative to a table card; CSS so every engine can scope it
	rowTrashButton = driver.CSS("button:has(i.bi-trash)")
	confirmDelete  = driver.Button("Yes, Delete")
	fromDateInput  = driver.XPath("//input[@placeholder='From']")
	toDateInput    = driver.XPath("//input[@placeholder='To']")
)

// Vacancies.
var (
	vacanciesHeader   = driver.TagContaining("h5", "Vacancies")
	attachmentsAdd    = driver.XPath("//h6[text()='Attachments']/following::button[contains(., 'Add')][1]")
	attachmentFile    = driver.XPath("//h6[text()='Attachments']/following::input[@type='file'][1]")
	attachmentComment = driver.XPath("//h6[text()='Attachments']/following::textarea[1]")
	attachmentSave    = driver.XPath("//h6[text()='Attachments']/following::button[contains(., 'Save')][1]")
)

// optionWithText matches a dropdown entry whose text equals text.
func optionWithText(text string) driver.Locator { return driver.TagWithText("span", text) }

// optionContaining matches a dropdown entry whose text contains text.
func optionContaining(text string) driver.Locator { return driver.TagContainingText("span", text) }

// calendarDay matches a day cell in the open date picker.
func calendarDay(day string) driver.Locator { return driver.TagWithText("div", day) }
