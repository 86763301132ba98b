// Package fixtures provides the data the recruitment scenarios type into the
// application. The defaults are embedded; RECRUIT_FIXTURES_FILE points at a
// replacement document. Every document is checked against an embedded JSON
// schema before use.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/gotrs-io/recruitment-e2e/internal/recruitment"
)

// EnvFile names the variable that overrides the embedded fixture document.
const EnvFile = "RECRUIT_FIXTURES_FILE"

//go:embed recruitment.yaml
var defaultDocument []byte

//go:embed schema.json
var schemaDocument []byte

// Data is the decoded fixture document.
type Data struct {
	Candidates Candidates `yaml:"candidates"`
	Vacancies  Vacancies  `yaml:"vacancies"`
}

type Candidates struct {
	SearchNames []string                    `yaml:"search_names"`
	ResetTerm   string                      `yaml:"reset_term"`
	New         CandidateTemplate           `yaml:"new"`
	Filter      recruitment.CandidateFilter `yaml:"filter"`
}

// CandidateTemplate is a candidate whose email is generated per run.
type CandidateTemplate struct {
	recruitment.Candidate `yaml:",inline"`
	EmailPrefix           string `yaml:"email_prefix"`
}

type Vacancies struct {
	NamePrefix        string   `yaml:"name_prefix"`
	JobTitle          string   `yaml:"job_title"`
	Description       string   `yaml:"description"`
	HiringManagerHint string   `yaml:"hiring_manager_hint"`
	Positions         string   `yaml:"positions"`
	AttachmentComment string   `yaml:"attachment_comment"`
	Filters           []string `yaml:"filters"`
}

// ValidationError lists every schema violation of a fixture document.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fixtures %s failed validation: %s", e.Source, strings.Join(e.Problems, "; "))
}

// Load returns the fixture data, reading the file named by RECRUIT_FIXTURES_FILE
// when it is set.
func Load() (*Data, error) {
	if path := os.Getenv(EnvFile); path != "" {
		return LoadFile(path)
	}
	return Parse("embedded", defaultDocument)
}

// MustLoad is Load for test setup code.
func MustLoad() *Data {
	d, err := Load()
	if err != nil {
		panic(err)
	}
	return d
}

// LoadFile reads and validates a fixture document from disk.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(path, raw)
}

// Parse validates raw against the schema and decodes it. source only labels
// errors.
func Parse(source string, raw []byte) (*Data, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures %s: %w", source, err)
	}
	if err := validate(source, doc); err != nil {
		return nil, err
	}

	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures %s: %w", source, err)
	}
	return &d, nil
}

func validate(source string, doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaDocument),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{Source: source}
	for _, e := range result.Errors() {
		verr.Problems = append(verr.Problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return verr
}

// NewCandidate returns the candidate to add, with an email unique to now.
func (d *Data) NewCandidate(now time.Time) recruitment.Candidate {
	c := d.Candidates.New.Candidate
	c.Email = UniqueEmail(d.Candidates.New.EmailPrefix, now)
	return c
}

// NewVacancy returns the vacancy to create, named uniquely for now.
func (d *Data) NewVacancy(now time.Time) recruitment.Vacancy {
	v := d.Vacancies
	return recruitment.Vacancy{
		Name:              UniqueVacancyName(v.NamePrefix, now),
		JobTitle:          v.JobTitle,
		Description:       v.Description,
		HiringManagerHint: v.HiringManagerHint,
		Positions:         v.Positions,
	}
}

// VacancyFilters returns the filter labels, falling back to every filter on
// the vacancies list.
func (d *Data) VacancyFilters() []string {
	if len(d.Vacancies.Filters) == 0 {
		return recruitment.VacancyFilterLabels
	}
	return d.Vacancies.Filters
}

// UniqueVacancyName suffixes prefix with the Unix time, e.g.
// "QA Lead Vacancy 1700000000".
func UniqueVacancyName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s %d", prefix, now.Unix())
}

// UniqueEmail builds "<prefix>_<unix>@example.com".
func UniqueEmail(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, now.Unix())
}
