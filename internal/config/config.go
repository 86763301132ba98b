package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RECRUIT_BROWSER_HEADLESS.
const EnvPrefix = "RECRUIT"

// Config represents the suite configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Target      TargetConfig      `mapstructure:"target"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Timeouts    TimeoutsConfig    `mapstructure:"timeouts"`
	Artifacts   ArtifactsConfig   `mapstructure:"artifacts"`
	Report      ReportConfig      `mapstructure:"report"`
	Suite       SuiteConfig       `mapstructure:"suite"`
	Logging     LoggingConfig     `mapstructure:"logging"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`

	settings map[string]any
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type TargetConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	LoginPath      string `mapstructure:"login_path"`
	CandidatesPath string `mapstructure:"candidates_path"`
	VacanciesPath  string `mapstructure:"vacancies_path"`
	Autodetect     bool   `mapstructure:"autodetect"`
	// Fake runs the suite against the in-process stub target.
	Fake bool `mapstructure:"fake"`
}

type CredentialsConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type BrowserConfig struct {
	Engine   string        `mapstructure:"engine"`
	Name     string        `mapstructure:"name"`
	Channel  string        `mapstructure:"channel"`
	Install  bool          `mapstructure:"install"`
	Headless bool          `mapstructure:"headless"`
	SlowMo   time.Duration `mapstructure:"slow_mo"`
	Maximize bool          `mapstructure:"maximize"`
	Width    int           `mapstructure:"width"`
	Height   int           `mapstructure:"height"`
}

type TimeoutsConfig struct {
	Step         time.Duration `mapstructure:"step"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Navigation   time.Duration `mapstructure:"navigation"`
}

type ArtifactsConfig struct {
	Dir         string `mapstructure:"dir"`
	Screenshots bool   `mapstructure:"screenshots"`
	Videos      bool   `mapstructure:"videos"`
}

type ReportConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Path        string `mapstructure:"path"`
	MetricsFile string `mapstructure:"metrics_file"`
}

type SuiteConfig struct {
	Name string `mapstructure:"name"`
	// Priorities restricts the run to tests tagged with one of these, e.g. p1.
	Priorities []string `mapstructure:"priorities"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key with its built-in value. Keys must be known
// to viper for AutomaticEnv to pick up their overrides during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "recruit-e2e")
	v.SetDefault("app.env", "local")

	v.SetDefault("target.base_url", "https://opensource-demo.orangehrmlive.com")
	v.SetDefault("target.login_path", "/web/index.php/auth/login")
	v.SetDefault("target.candidates_path", "/web/index.php/recruitment/viewCandidates")
	v.SetDefault("target.vacancies_path", "/web/index.php/recruitment/viewJobVacancy")
	v.SetDefault("target.autodetect", false)
	v.SetDefault("target.fake", false)

	v.SetDefault("credentials.username", "Admin")
	v.SetDefault("credentials.password", "admin123")

	v.SetDefault("browser.engine", "playwright")
	v.SetDefault("browser.name", "chromium")
	v.SetDefault("browser.channel", "")
	v.SetDefault("browser.install", false)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", "0s")
	v.SetDefault("browser.maximize", true)
	v.SetDefault("browser.width", 1920)
	v.SetDefault("browser.height", 1080)

	v.SetDefault("timeouts.step", "10s")
	v.SetDefault("timeouts.poll_interval", "250ms")
	v.SetDefault("timeouts.navigation", "30s")

	v.SetDefault("artifacts.dir", "./test-results")
	v.SetDefault("artifacts.screenshots", true)
	v.SetDefault("artifacts.videos", false)

	v.SetDefault("report.enabled", false)
	v.SetDefault("report.path", "./test-results/runs.db")
	v.SetDefault("report.metrics_file", "./test-results/metrics.prom")

	v.SetDefault("suite.name", "recruitment")
	v.SetDefault("suite.priorities", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load builds a fresh configuration: defaults, then the optional config file,
// then .env entries, then RECRUIT_* environment variables. An empty path
// falls back to $RECRUIT_CONFIG, then recruit-e2e.yaml in . or ./configs.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("recruit-e2e")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			// It's OK if no config file exists
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.File = v.ConfigFileUsed()
	c.settings = v.AllSettings()
	c.Suite.Priorities = normalizePriorities(c.Suite.Priorities)
	return c, nil
}

// normalizePriorities accepts both list and comma-separated forms.
func normalizePriorities(in []string) []string {
	var out []string
	for _, p := range in {
		for _, part := range strings.Split(p, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *TargetConfig) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// LoginURL returns the absolute login page URL
func (c *Config) LoginURL() string { return c.Target.url(c.Target.LoginPath) }

// CandidatesURL returns the absolute candidates list URL
func (c *Config) CandidatesURL() string { return c.Target.url(c.Target.CandidatesPath) }

// VacanciesURL returns the absolute vacancies list URL
func (c *Config) VacanciesURL() string { return c.Target.url(c.Target.VacanciesPath) }

// ScreenshotDir returns where failure screenshots are written
func (c *Config) ScreenshotDir() string { return filepath.Join(c.Artifacts.Dir, "screenshots") }

// VideoDir returns where session videos are written, or "" when disabled
func (c *Config) VideoDir() string {
	if !c.Artifacts.Videos {
		return ""
	}
	return filepath.Join(c.Artifacts.Dir, "videos")
}

// WantsPriority reports whether a test tagged tag is selected for this run.
func (c *SuiteConfig) WantsPriority(tag string) bool {
	if len(c.Priorities) == 0 {
		return true
	}
	tag = strings.ToLower(tag)
	for _, p := range c.Priorities {
		if p == tag {
			return true
		}
	}
	return false
}

// Settings returns the merged key tree as loaded, with the password masked.
// It is nil for a Config that was not built by Load.
func (c *Config) Settings() map[string]any {
	if c.settings == nil {
		return nil
	}
	out := make(map[string]any, len(c.settings))
	for k, v := range c.settings {
		out[k] = v
	}
	if creds, ok := c.settings["credentials"].(map[string]any); ok {
		masked := make(map[string]any, len(creds))
		for k, v := range creds {
			masked[k] = v
		}
		if masked["password"] != "" {
			masked["password"] = "********"
		}
		out["credentials"] = masked
	}
	return out
}
