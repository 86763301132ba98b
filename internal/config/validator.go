package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gotrs-io/recruitment-e2e/internal/driver"
)

var priorityPattern = regexp.MustCompile(`^p[0-9]$`)

// Validator collects every configuration problem before reporting, so a
// single run surfaces all of them.
type Validator struct {
	config   *Config
	errors   []string
	warnings []string
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{
		config:   cfg,
		errors:   []string{},
		warnings: []string{},
	}
}

// Validate returns an error listing every problem found. Warnings are
// available through Warnings afterwards.
func (v *Validator) Validate() error {
	v.validateTarget()
	v.validateBrowser()
	v.validateTimeouts()
	v.validateCredentials()
	v.validateSuite()

	if len(v.errors) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

// Warnings returns non-fatal findings of the last Validate call.
func (v *Validator) Warnings() []string { return v.warnings }

// Validate is shorthand for NewValidator(c).Validate().
func (c *Config) Validate() error { return NewValidator(c).Validate() }

func (v *Validator) validateTarget() {
	t := v.config.Target
	if t.Fake {
		return
	}
	if strings.TrimSpace(t.BaseURL) == "" {
		v.errors = append(v.errors, "target.base_url is empty")
		return
	}
	u, err := url.Parse(t.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		v.errors = append(v.errors, fmt.Sprintf("target.base_url %q is not an absolute http(s) URL", t.BaseURL))
	}
	for key, p := range map[string]string{
		"target.login_path":      t.LoginPath,
		"target.candidates_path": t.CandidatesPath,
		"target.vacancies_path":  t.VacanciesPath,
	} {
		if strings.TrimSpace(p) == "" {
			v.errors = append(v.errors, key+" is empty")
		}
	}
}

func (v *Validator) validateBrowser() {
	b := v.config.Browser
	engine, err := driver.ParseEngine(b.Engine)
	if err != nil {
		v.errors = append(v.errors, "browser.engine: "+err.Error())
		return
	}
	switch b.Name {
	case "chromium", "firefox", "webkit":
	default:
		v.errors = append(v.errors, fmt.Sprintf("browser.name %q is not one of chromium, firefox, webkit", b.Name))
	}
	if engine == driver.EngineChromedp && b.Name != "chromium" {
		v.errors = append(v.errors, fmt.Sprintf("browser.name %q is not supported by the chromedp engine", b.Name))
	}
	if b.Width <= 0 || b.Height <= 0 {
		v.errors = append(v.errors, fmt.Sprintf("browser window %dx%d must be positive", b.Width, b.Height))
	}
	if b.SlowMo < 0 {
		v.errors = append(v.errors, "browser.slow_mo must not be negative")
	}
	if b.Maximize && b.Headless {
		v.warnings = append(v.warnings, "browser.maximize has no effect in headless mode; the window size is used")
	}
}

func (v *Validator) validateTimeouts() {
	t := v.config.Timeouts
	if t.Step <= 0 {
		v.errors = append(v.errors, "timeouts.step must be positive")
	}
	if t.PollInterval <= 0 {
		v.errors = append(v.errors, "timeouts.poll_interval must be positive")
	}
	if t.Navigation <= 0 {
		v.errors = append(v.errors, "timeouts.navigation must be positive")
	}
	if t.Step > 0 && t.PollInterval >= t.Step {
		v.warnings = append(v.warnings, fmt.Sprintf("timeouts.poll_interval %s is not below timeouts.step %s", t.PollInterval, t.Step))
	}
	if b := v.config.Browser; b.SlowMo > 0 && b.SlowMo*5 > t.Step {
		v.warnings = append(v.warnings, "browser.slow_mo is large relative to timeouts.step; waits may time out")
	}
}

func (v *Validator) validateCredentials() {
	c := v.config.Credentials
	if c.Username == "" || c.Password == "" {
		v.warnings = append(v.warnings, "credentials are incomplete; login steps will time out")
	}
}

func (v *Validator) validateSuite() {
	for _, p := range v.config.Suite.Priorities {
		if !priorityPattern.MatchString(p) {
			v.errors = append(v.errors, fmt.Sprintf("suite.priorities: %q is not a priority tag like p1", p))
		}
	}
}
