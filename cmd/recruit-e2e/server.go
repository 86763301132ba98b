package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/recruitment-e2e/internal/fakehrm"
)

var fakeServerCmd = &cobra.Command{
	Use:   "fake-server",
	Short: "Serve the offline recruitment stub target",
	Long: `Serve an in-memory stand-in for the recruitment module that renders the
markup the suite relies on. Point the suite at it with
RECRUIT_TARGET_BASE_URL=http://<addr>, or set RECRUIT_TARGET_FAKE=true to have
the suite start its own.`,
	RunE: runFakeServer,
}

var (
	listenFlag   string
	pageSizeFlag int
)

func init() {
	fakeServerCmd.Flags().StringVar(&listenFlag, "listen", "127.0.0.1:8089", "Address to listen on")
	fakeServerCmd.Flags().IntVar(&pageSizeFlag, "page-size", 5, "Candidate rows per page")
}

func runFakeServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	run, err := fakehrm.Start(cmd.Context(), listenFlag, fakehrm.Options{
		Credentials: fakehrm.Credentials{
			Username: cfg.Credentials.Username,
			Password: cfg.Credentials.Password,
		},
		PageSize: pageSizeFlag,
	})
	if err != nil {
		return err
	}
	fmt.Printf("🚀 Stub target on %s%s (user %s)\n", run.URL, fakehrm.LoginPath, cfg.Credentials.Username)
	fmt.Println("   Press Ctrl+C to stop")
	return run.Wait()
}
