//go:build e2e

package recruitment_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/recruitment-e2e/internal/fixtures"
	"github.com/gotrs-io/recruitment-e2e/internal/recruitment"
	"github.com/gotrs-io/recruitment-e2e/internal/scenario"
	"github.com/gotrs-io/recruitment-e2e/internal/session"
)

// Vacancy scenarios run against a shared public demo whose data changes
// under them, so environment failures skip instead of failing.

func TestAddVacancy(t *testing.T) {
	sc := scenario.Begin(t, cfg, "TC-REC-VAC-001", "p2")
	attachment, err := fixtures.SamplePDF(filepath.Join(cfg.Artifacts.Dir, "attachments"))
	require.NoError(t, err)

	p := recruitment.For(session.Open(t, cfg))
	ctx := t.Context()
	sc.BestEffort(p.Auth.Login(ctx), "login")
	sc.BestEffort(p.Nav.GoToVacancies(ctx), "go to vacancies")

	vac := data.NewVacancy(time.Now())
	t.Logf("creating vacancy %q", vac.Name)
	sc.BestEffort(p.Vacancies.CreateVacancy(ctx, vac), "create vacancy")

	found, err := p.Vacancies.SearchVacancy(ctx, vac.Name)
	sc.BestEffort(err, "search vacancy")
	require.True(t, found, "vacancy %q should be listed after saving", vac.Name)

	sc.BestEffort(p.Vacancies.OpenVacancy(ctx, vac.Name), "open vacancy")
	sc.BestEffort(p.Vacancies.AddAttachment(ctx, attachment, data.Vacancies.AttachmentComment), "add attachment")
}

func TestFilterVacancies(t *testing.T) {
	sc := scenario.Begin(t, cfg, "TC-REC-VAC-002", "p2")

	p := recruitment.For(session.Open(t, cfg))
	ctx := t.Context()
	sc.BestEffort(p.Auth.Login(ctx), "login")
	sc.BestEffort(p.Nav.GoToVacancies(ctx), "go to vacancies")

	n, err := p.Vacancies.ApplyFilters(ctx, data.VacancyFilters()...)
	sc.BestEffort(err, "filter vacancies")
	t.Logf("%d vacancy row(s) after filtering", n)
}
