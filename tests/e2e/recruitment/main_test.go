//go:build e2e

// Browser scenarios for the recruitment module. Run with
//
//	go test -tags e2e ./tests/e2e/recruitment/...
//
// RECRUIT_TARGET_FAKE=true runs them against the in-process stub target.
package recruitment_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
	"github.com/gotrs-io/recruitment-e2e/internal/fakehrm"
	"github.com/gotrs-io/recruitment-e2e/internal/fixtures"
	"github.com/gotrs-io/recruitment-e2e/internal/logging"
	"github.com/gotrs-io/recruitment-e2e/internal/recruitment"
	"github.com/gotrs-io/recruitment-e2e/internal/report"
	"github.com/gotrs-io/recruitment-e2e/internal/scenario"
	"github.com/gotrs-io/recruitment-e2e/internal/session"
)

var (
	cfg  *config.Config
	data *fixtures.Data
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	c, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	logging.Setup(c.Logging)
	if err := c.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	d, err := fixtures.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	if c.Target.Fake {
		srv, err := fakehrm.Start(ctx, "127.0.0.1:0", fakehrm.Options{
			Credentials: fakehrm.Credentials{Username: c.Credentials.Username, Password: c.Credentials.Password},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 1
		}
		defer srv.Close()
		c.Target.BaseURL = srv.URL
	} else {
		c.ResolveTarget(ctx)
	}
	log.Info().Str("base_url", c.Target.BaseURL).Str("engine", c.Browser.Engine).
		Strs("priorities", c.Suite.Priorities).Msg("recruitment suite starting")

	rec, err := report.StartRecording(ctx, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	if rec != nil {
		defer scenario.SetRecorder(rec)()
		defer func() {
			if err := rec.Finish(ctx); err != nil {
				log.Error().Err(err).Msg("failed to finish run ledger")
			}
		}()
	}

	cfg, data = c, d
	return m.Run()
}

// signedIn opens a session on the login page and signs in.
func signedIn(t *testing.T) (context.Context, *recruitment.Pages) {
	t.Helper()
	s := session.Open(t, cfg)
	pages := recruitment.For(s)
	ctx := t.Context()
	require.NoError(t, pages.Auth.Login(ctx), "login")
	return ctx, pages
}

// onCandidates signs in and opens the candidates list.
func onCandidates(t *testing.T) (context.Context, *recruitment.Pages) {
	t.Helper()
	ctx, pages := signedIn(t)
	require.NoError(t, pages.Nav.GoToCandidates(ctx), "go to candidates")
	return ctx, pages
}
