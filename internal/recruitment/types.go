package recruitment

// Candidate is the data entered on the Add Candidate form. Empty optional
// fields are left untouched.
type Candidate struct {
	FirstName     string `yaml:"first_name" json:"first_name"`
	MiddleName    string `yaml:"middle_name" json:"middle_name"`
	LastName      string `yaml:"last_name" json:"last_name"`
	Vacancy       string `yaml:"vacancy" json:"vacancy"`
	Email         string `yaml:"email" json:"email"`
	ContactNumber string `yaml:"contact_number" json:"contact_number"`
	Keywords      string `yaml:"keywords" json:"keywords"`
	// ApplicationDay is the day-of-month cell picked in the date picker.
	ApplicationDay string `yaml:"application_day" json:"application_day"`
	Notes          string `yaml:"notes" json:"notes"`
	Consent        bool   `yaml:"consent" json:"consent"`
}

// CandidateFilter holds the candidate list filters. Empty fields are skipped.
type CandidateFilter struct {
	JobTitle      string `yaml:"job_title" json:"job_title"`
	Vacancy       string `yaml:"vacancy" json:"vacancy"`
	Status        string `yaml:"status" json:"status"`
	CandidateName string `yaml:"candidate_name" json:"candidate_name"`
	Keywords      string `yaml:"keywords" json:"keywords"`
	From          string `yaml:"from" json:"from"`
	To            string `yaml:"to" json:"to"`
	Method        string `yaml:"method" json:"method"`
}

// Vacancy is the data entered on the Add Vacancy form.
type Vacancy struct {
	Name              string `yaml:"name" json:"name"`
	JobTitle          string `yaml:"job_title" json:"job_title"`
	Description       string `yaml:"description" json:"description"`
	HiringManagerHint string `yaml:"hiring_manager_hint" json:"hiring_manager_hint"`
	Positions         string `yaml:"positions" json:"positions"`
}

// DefaultAttachmentComment is used when AddAttachment gets no comment.
const DefaultAttachmentComment = "Test attachment"

// VacancyFilterLabels are the dropdown filters on the vacancies list.
var VacancyFilterLabels = []string{"Job Title", "Vacancy", "Hiring Manager", "Status"}
