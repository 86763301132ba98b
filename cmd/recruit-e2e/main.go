package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
	"github.com/gotrs-io/recruitment-e2e/internal/driver"
	"github.com/gotrs-io/recruitment-e2e/internal/fixtures"
	"github.com/gotrs-io/recruitment-e2e/internal/logging"
	"github.com/gotrs-io/recruitment-e2e/internal/report"
	"github.com/gotrs-io/recruitment-e2e/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "recruit-e2e",
	Short: "Recruitment E2E - browser suite companion tool",
	Long: `Recruitment E2E Command Line Interface

Companion tool for the recruitment browser suite. It checks the environment,
installs browsers, serves the offline stub target and reads the run ledger.
The suite itself runs with: go test -tags e2e ./tests/e2e/...`,
	Version:       version.Get().String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("recruit-e2e %s\n", version.Get())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, .env and
RECRUIT_* environment overrides have been applied. The password is masked.`,
	RunE: runConfig,
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, fixtures, target reachability and artifact paths",
	RunE:  runDoctor,
}

var installCmd = &cobra.Command{
	Use:   "install [browser...]",
	Short: "Install the playwright driver and browsers",
	Long: `Download the playwright driver and the named browsers. With no arguments
the browser from the configuration is installed.`,
	RunE: runInstall,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $RECRUIT_CONFIG or ./recruit-e2e.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(fakeServerCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and installs the logger it describes.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging)
	return cfg, nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg.Settings())
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if cfg.File != "" {
		fmt.Printf("# loaded from %s\n", cfg.File)
	}
	fmt.Print(string(out))
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	failed := 0
	check := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Printf("❌ %-12s %v\n", name, err)
			return
		}
		fmt.Printf("✅ %s\n", name)
	}

	v := config.NewValidator(cfg)
	check("config", v.Validate())
	for _, w := range v.Warnings() {
		fmt.Printf("⚠️  %s\n", w)
	}

	_, err = fixtures.Load()
	check("fixtures", err)

	if cfg.Target.Fake {
		fmt.Println("ℹ️  target       stub server (target.fake)")
	} else {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		reachable := config.Probe(probeCtx, cfg.Target.BaseURL, cfg.Target.LoginPath)
		cancel()
		err = nil
		if !reachable {
			err = fmt.Errorf("%s does not answer on %s", cfg.Target.BaseURL, cfg.Target.LoginPath)
		}
		check("target", err)
	}

	check("artifacts", writableDir(cfg.Artifacts.Dir))

	if cfg.Report.Enabled {
		store, err := report.Open(ctx, cfg.Report.Path)
		if err == nil {
			err = store.Close()
		}
		check("report", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("🎉 Ready to run: go test -tags e2e ./tests/e2e/...")
	return nil
}

func writableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	return errors.Join(f.Close(), os.Remove(name))
}

func runInstall(cmd *cobra.Command, args []string) error {
	browsers := args
	if len(browsers) == 0 {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		browsers = []string{cfg.Browser.Name}
	}
	fmt.Printf("📦 Installing playwright with %v...\n", browsers)
	if err := driver.InstallPlaywright(browsers...); err != nil {
		return err
	}
	fmt.Println("✅ Playwright installed")
	return nil
}

// absPath resolves p against the working directory for display.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
