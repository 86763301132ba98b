package fakehrm

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

type Candidate struct {
	ID            int
	FirstName     string
	MiddleName    string
	LastName      string
	Email         string
	ContactNumber string
	Keywords      string
	Notes         string
	Vacancy       string
	Status        string
	Method        string
	Consent       bool
	Applied       time.Time
}

func (c Candidate) FullName() string {
	parts := []string{c.FirstName}
	if c.MiddleName != "" {
		parts = append(parts, c.MiddleName)
	}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	return strings.Join(parts, " ")
}

func (c Candidate) AppliedOn() string { return c.Applied.Format(dateLayout) }

type Vacancy struct {
	ID            int
	Name          string
	JobTitle      string
	Description   string
	HiringManager string
	Positions     int
	Active        bool
	Attachments   []Attachment
}

func (v Vacancy) StatusText() string {
	if v.Active {
		return "Active"
	}
	return "Closed"
}

type Attachment struct {
	ID          int
	FileName    string
	Size        int64
	ContentType string
	Comment     string
	Added       time.Time
}

// CandidateQuery holds the candidate list filters. Empty fields match all.
type CandidateQuery struct {
	JobTitle string
	Vacancy  string
	Manager  string
	Status   string
	Name     string
	Keywords string
	From     string
	To       string
	Method   string
}

// VacancyQuery holds the vacancy list filters. Empty fields match all.
type VacancyQuery struct {
	JobTitle string
	Name     string
	Manager  string
	Status   string
}

const dateLayout = "2006-01-02"

// Store is the in-memory state of the stub application. The browser issues
// concurrent requests, so every access goes through mu.
type Store struct {
	mu         sync.RWMutex
	nextID     int
	candidates []Candidate
	vacancies  []Vacancy
	sessions   map[string]string

	JobTitles []string
	Employees []string
	Statuses  []string
	Methods   []string
}

// NewStore returns a store seeded with the demo data set.
func NewStore() *Store {
	s := &Store{
		sessions:  map[string]string{},
		JobTitles: []string{"Account Assistant", "Chief Financial Officer", "QA Engineer", "QA Lead", "Software Engineer"},
		Employees: []string{"Odis Adalwin", "Linda Anderson", "Peter Anderson", "Russel Hamilton", "Garry White"},
		Statuses:  []string{"Application Initiated", "Shortlisted", "Interview Scheduled", "Job Offered", "Rejected", "Hired"},
		Methods:   []string{"Manual", "Online"},
	}
	for _, v := range []Vacancy{
		{Name: "Senior QA Lead", JobTitle: "QA Lead", HiringManager: "Odis Adalwin", Positions: 2, Active: true},
		{Name: "Junior Account Assistant", JobTitle: "Account Assistant", HiringManager: "Linda Anderson", Positions: 1, Active: true},
		{Name: "Software Engineer", JobTitle: "Software Engineer", HiringManager: "Russel Hamilton", Positions: 3, Active: true},
		{Name: "Payroll Administrator", JobTitle: "Chief Financial Officer", HiringManager: "Garry White", Positions: 1, Active: false},
	} {
		s.addVacancy(v)
	}
	day := func(d int) time.Time { return time.Date(2023, time.Month(1+d%12), 1+d%28, 0, 0, 0, 0, time.UTC) }
	for i, c := range []Candidate{
		{FirstName: "Peter", MiddleName: "Mac", LastName: "Anderson", Vacancy: "Senior QA Lead", Status: "Shortlisted", Keywords: "automation, selenium"},
		{FirstName: "Linda", MiddleName: "Jane", LastName: "Anderson", Vacancy: "Junior Account Assistant", Status: "Application Initiated"},
		{FirstName: "John", LastName: "Smith", Vacancy: "Software Engineer", Status: "Interview Scheduled", Keywords: "go, kubernetes"},
		{FirstName: "Maria", LastName: "Garcia", Vacancy: "Senior QA Lead", Status: "Job Offered", Keywords: "automation"},
		{FirstName: "Chen", LastName: "Wei", Vacancy: "Software Engineer", Status: "Rejected"},
		{FirstName: "Amara", LastName: "Okafor", Vacancy: "Senior QA Lead", Status: "Hired", Keywords: "manual testing"},
		{FirstName: "Sofia", LastName: "Rossi", Vacancy: "Junior Account Assistant", Status: "Shortlisted"},
		{FirstName: "Lucas", LastName: "Martin", Vacancy: "Software Engineer", Status: "Application Initiated", Keywords: "python"},
	} {
		c.Email = strings.ToLower(c.FirstName+"."+c.LastName) + "@example.com"
		c.Method = s.Methods[i%len(s.Methods)]
		c.Applied = day(i)
		s.addCandidate(c)
	}
	return s
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// Login checks credentials against want and opens a session.
func (s *Store) Login(username, password string, want Credentials) (token string, ok bool) {
	if username != want.Username || password != want.Password {
		return "", false
	}
	token = uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = username
	s.mu.Unlock()
	return token, true
}

func (s *Store) Session(token string) (user string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok = s.sessions[token]
	return user, ok
}

func (s *Store) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Store) addCandidate(c Candidate) int {
	c.ID = s.id()
	s.candidates = append(s.candidates, c)
	return c.ID
}

// AddCandidate stores c and returns its ID.
func (s *Store) AddCandidate(c Candidate) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Status == "" {
		c.Status = "Application Initiated"
	}
	if c.Method == "" {
		c.Method = "Manual"
	}
	if c.Applied.IsZero() {
		c.Applied = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return s.addCandidate(c)
}

func (s *Store) Candidate(id int) (Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return Candidate{}, ErrNotFound
}

func (s *Store) DeleteCandidate(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.candidates {
		if c.ID == id {
			s.candidates = slices.Delete(s.candidates, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

// Candidates returns the matching candidates, most recent application first.
func (s *Store) Candidates(q CandidateQuery) []Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	managers := map[string]string{}
	titles := map[string]string{}
	for _, v := range s.vacancies {
		managers[v.Name] = v.HiringManager
		titles[v.Name] = v.JobTitle
	}

	var out []Candidate
	for _, c := range s.candidates {
		switch {
		case q.JobTitle != "" && titles[c.Vacancy] != q.JobTitle,
			q.Vacancy != "" && c.Vacancy != q.Vacancy,
			q.Manager != "" && managers[c.Vacancy] != q.Manager,
			q.Status != "" && c.Status != q.Status,
			q.Method != "" && c.Method != q.Method,
			q.Name != "" && !containsFold(c.FullName(), q.Name),
			q.Keywords != "" && !containsFold(c.Keywords, q.Keywords),
			q.From != "" && c.AppliedOn() < q.From,
			q.To != "" && c.AppliedOn() > q.To:
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Applied.After(out[j].Applied) })
	return out
}

func (s *Store) addVacancy(v Vacancy) int {
	v.ID = s.id()
	s.vacancies = append(s.vacancies, v)
	return v.ID
}

func (s *Store) AddVacancy(v Vacancy) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addVacancy(v)
}

func (s *Store) Vacancy(id int) (Vacancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vacancies {
		if v.ID == id {
			v.Attachments = slices.Clone(v.Attachments)
			return v, nil
		}
	}
	return Vacancy{}, ErrNotFound
}

// UpdateVacancy replaces the editable fields of vacancy v.ID.
func (s *Store) UpdateVacancy(v Vacancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vacancies {
		if s.vacancies[i].ID == v.ID {
			v.Attachments = s.vacancies[i].Attachments
			s.vacancies[i] = v
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) AddAttachment(vacancyID int, a Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.vacancies {
		if s.vacancies[i].ID == vacancyID {
			a.ID = s.id()
			if a.Added.IsZero() {
				a.Added = time.Now().UTC()
			}
			s.vacancies[i].Attachments = append(s.vacancies[i].Attachments, a)
			return nil
		}
	}
	return ErrNotFound
}

// Vacancies returns the matching vacancies, newest first.
func (s *Store) Vacancies(q VacancyQuery) []Vacancy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Vacancy
	for i := len(s.vacancies) - 1; i >= 0; i-- {
		v := s.vacancies[i]
		switch {
		case q.JobTitle != "" && v.JobTitle != q.JobTitle,
			q.Name != "" && !strings.Contains(v.Name, q.Name),
			q.Manager != "" && v.HiringManager != q.Manager,
			q.Status != "" && v.StatusText() != q.Status:
			continue
		}
		out = append(out, v)
	}
	return out
}

// VacancyNames lists vacancy names; activeOnly drops closed ones.
func (s *Store) VacancyNames(activeOnly bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, v := range s.vacancies {
		if activeOnly && !v.Active {
			continue
		}
		out = append(out, v.Name)
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
