package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no RECRUIT_* overrides
// for the keys the assertions look at.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{
		"RECRUIT_CONFIG", "RECRUIT_TARGET_BASE_URL", "RECRUIT_TARGET_FAKE",
		"RECRUIT_BROWSER_ENGINE", "RECRUIT_BROWSER_HEADLESS", "RECRUIT_TIMEOUTS_STEP",
		"RECRUIT_SUITE_PRIORITIES", "RECRUIT_CREDENTIALS_USERNAME",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://opensource-demo.orangehrmlive.com", c.Target.BaseURL)
	assert.Equal(t, "https://opensource-demo.orangehrmlive.com/web/index.php/auth/login", c.LoginURL())
	assert.Equal(t, "https://opensource-demo.orangehrmlive.com/web/index.php/recruitment/viewCandidates", c.CandidatesURL())
	assert.Equal(t, "https://opensource-demo.orangehrmlive.com/web/index.php/recruitment/viewJobVacancy", c.VacanciesURL())
	assert.Equal(t, "Admin", c.Credentials.Username)
	assert.Equal(t, "admin123", c.Credentials.Password)
	assert.Equal(t, "playwright", c.Browser.Engine)
	assert.True(t, c.Browser.Headless)
	assert.True(t, c.Browser.Maximize)
	assert.Equal(t, 10*time.Second, c.Timeouts.Step)
	assert.Equal(t, 250*time.Millisecond, c.Timeouts.PollInterval)
	assert.Equal(t, 30*time.Second, c.Timeouts.Navigation)
	assert.Empty(t, c.Suite.Priorities)
	assert.Empty(t, c.File)
	assert.Empty(t, c.VideoDir())
	assert.NoError(t, c.Validate())
}

func TestLoadFromFile(t *testing.T) {
	t.Run("Load valid YAML config file", func(t *testing.T) {
		dir := isolate(t)
		configFile := filepath.Join(dir, "suite.yaml")
		configContent := `
target:
  base_url: http://hrm.internal:8080/
browser:
  engine: chromedp
  headless: false
  slow_mo: 50ms
timeouts:
  step: 5s
suite:
  priorities: [P1, p2]
`
		require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0o644))

		c, err := Load(configFile)
		require.NoError(t, err)
		assert.Equal(t, configFile, c.File)
		assert.Equal(t, "http://hrm.internal:8080/web/index.php/auth/login", c.LoginURL())
		assert.Equal(t, "chromedp", c.Browser.Engine)
		assert.False(t, c.Browser.Headless)
		assert.Equal(t, 50*time.Millisecond, c.Browser.SlowMo)
		assert.Equal(t, 5*time.Second, c.Timeouts.Step)
		assert.Equal(t, []string{"p1", "p2"}, c.Suite.Priorities)
		// untouched keys keep their defaults
		assert.Equal(t, 30*time.Second, c.Timeouts.Navigation)
	})

	t.Run("Discovered in ./configs", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "recruit-e2e.yaml"),
			[]byte("credentials:\n  username: qa.bot\n"), 0o644))

		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "qa.bot", c.Credentials.Username)
		assert.NotEmpty(t, c.File)
	})

	t.Run("Error on non-existent file", func(t *testing.T) {
		isolate(t)
		_, err := Load("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("Error on invalid YAML", func(t *testing.T) {
		dir := isolate(t)
		configFile := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("target:\n  base_url: [this is invalid\n"), 0o644))

		_, err := Load(configFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("RECRUIT_TARGET_BASE_URL", "http://localhost:8089")
	t.Setenv("RECRUIT_BROWSER_HEADLESS", "false")
	t.Setenv("RECRUIT_TIMEOUTS_STEP", "3s")
	t.Setenv("RECRUIT_SUITE_PRIORITIES", "p1, P3")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8089/web/index.php/recruitment/viewCandidates", c.CandidatesURL())
	assert.False(t, c.Browser.Headless)
	assert.Equal(t, 3*time.Second, c.Timeouts.Step)
	assert.Equal(t, []string{"p1", "p3"}, c.Suite.Priorities)
}

func TestSettings(t *testing.T) {
	isolate(t)
	t.Setenv("RECRUIT_TIMEOUTS_STEP", "3s")

	c, err := Load("")
	require.NoError(t, err)
	s := c.Settings()
	require.NotNil(t, s)
	assert.Equal(t, "********", s["credentials"].(map[string]any)["password"])
	assert.Equal(t, "3s", s["timeouts"].(map[string]any)["step"])
	assert.Equal(t, "admin123", c.Credentials.Password, "masking must not touch the loaded config")

	assert.Nil(t, (&Config{}).Settings())
}

func TestDotEnv(t *testing.T) {
	dir := isolate(t)
	// Register restores for keys the .env file may export.
	for _, k := range []string{"RECRUIT_CREDENTIALS_PASSWORD", "RECRUIT_APP_ENV"} {
		t.Setenv(k, "placeholder")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("RECRUIT_CREDENTIALS_USERNAME", "from-env")

	content := `# local overrides
RECRUIT_CREDENTIALS_USERNAME=from-dotenv
RECRUIT_CREDENTIALS_PASSWORD="s3cret"
RECRUIT_APP_ENV=ci
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Credentials.Username, "set variables win over .env")
	assert.Equal(t, "s3cret", c.Credentials.Password)
	assert.Equal(t, "ci", c.App.Env)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestWantsPriority(t *testing.T) {
	all := SuiteConfig{}
	assert.True(t, all.WantsPriority("p3"))

	some := SuiteConfig{Priorities: []string{"p1", "p2"}}
	assert.True(t, some.WantsPriority("p1"))
	assert.True(t, some.WantsPriority("P2"))
	assert.False(t, some.WantsPriority("p3"))
}

func TestArtifactDirs(t *testing.T) {
	c := &Config{Artifacts: ArtifactsConfig{Dir: "out", Videos: true}}
	assert.Equal(t, filepath.Join("out", "screenshots"), c.ScreenshotDir())
	assert.Equal(t, filepath.Join("out", "videos"), c.VideoDir())

	c.Artifacts.Dir = "out/"
	assert.Equal(t, filepath.Join("out", "screenshots"), c.ScreenshotDir(), "trailing separator is cleaned")
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		isolate(t)
		c, err := Load("")
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown engine", func(c *Config) { c.Browser.Engine = "selenium" }, "browser.engine"},
		{"unknown browser", func(c *Config) { c.Browser.Name = "edge" }, "browser.name"},
		{"chromedp needs chromium", func(c *Config) {
			c.Browser.Engine = "chromedp"
			c.Browser.Name = "firefox"
		}, "not supported by the chromedp engine"},
		{"zero step", func(c *Config) { c.Timeouts.Step = 0 }, "timeouts.step"},
		{"negative poll", func(c *Config) { c.Timeouts.PollInterval = -time.Second }, "timeouts.poll_interval"},
		{"empty base url", func(c *Config) { c.Target.BaseURL = " " }, "target.base_url is empty"},
		{"relative base url", func(c *Config) { c.Target.BaseURL = "opensource-demo" }, "absolute http(s) URL"},
		{"bad priority", func(c *Config) { c.Suite.Priorities = []string{"high"} }, "suite.priorities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid(t)
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("fake target skips url checks", func(t *testing.T) {
		c := valid(t)
		c.Target.Fake = true
		c.Target.BaseURL = ""
		assert.NoError(t, c.Validate())
	})

	t.Run("warnings", func(t *testing.T) {
		c := valid(t)
		c.Credentials.Password = ""
		v := NewValidator(c)
		require.NoError(t, v.Validate())
		assert.Contains(t, v.Warnings(), "credentials are incomplete; login steps will time out")
	})
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/web/index.php/auth/login" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	ctx := context.Background()

	assert.True(t, Probe(ctx, srv.URL, "/web/index.php/auth/login"))
	// any HTTP answer counts
	assert.True(t, Probe(ctx, srv.URL, "/missing"))
	assert.Equal(t, srv.URL, DetectReachableBaseURL(ctx, srv.URL, "/"))

	closed := srv.URL
	srv.Close()
	assert.False(t, Probe(ctx, closed, "/"))
	assert.False(t, Probe(ctx, "::not a url", "/"))
}

func TestLocalCandidates(t *testing.T) {
	got := localCandidates("https://opensource-demo.orangehrmlive.com")
	assert.Equal(t, []string{
		"http://localhost:80", "http://localhost:8080", "http://localhost:8089",
		"http://127.0.0.1:80", "http://127.0.0.1:8080", "http://127.0.0.1:8089",
	}, got)

	assert.Empty(t, localCandidates("http://localhost:8080"))
}

func TestResolveTargetDisabled(t *testing.T) {
	c := &Config{Target: TargetConfig{BaseURL: "http://unreachable.invalid", Autodetect: false}}
	c.ResolveTarget(context.Background())
	assert.Equal(t, "http://unreachable.invalid", c.Target.BaseURL)
}
