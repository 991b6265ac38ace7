package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/app/repositories/inmem"
	"github.com/yigit/spmb/internal/pkg/metrics"
)

const testYear = "2025/2026"

func testSettings() AdmissionSettings {
	return AdmissionSettings{
		Institution:  "SMP Negeri 1 Sukamaju",
		AcademicYear: testYear,
	}.withDefaults()
}

type testEnv struct {
	candidates   *inmem.CandidateStore
	roster       *inmem.RosterStore
	drafts       *DraftStore
	placement    PlacementService
	distribution DistributionService
	candidate    CandidateService
	export       ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	settings := testSettings()
	log := zerolog.Nop()
	rec := metrics.NewNop()

	env := &testEnv{
		candidates: inmem.NewCandidateStore(),
		drafts:     NewDraftStore(settings.DraftTTL),
	}
	env.roster = inmem.NewRosterStore(env.candidates)
	env.placement = NewPlacementService(env.candidates, env.roster, settings, rec, log)
	env.distribution = NewDistributionService(env.candidates, env.placement, env.drafts, settings, rec, log)
	env.candidate = NewCandidateService(env.candidates, settings, rec, log)
	env.export = NewExportService(env.candidates, nil, settings, log)
	return env
}

// seedAccepted stores male then female accepted candidates and returns them in insertion order
func (e *testEnv) seedAccepted(t *testing.T, male, female int) []models.Candidate {
	t.Helper()
	var out []models.Candidate
	add := func(i int, g models.Gender) {
		c := &models.Candidate{
			FullName:     fmt.Sprintf("%s-%02d", g, i),
			Gender:       g,
			OriginSchool: fmt.Sprintf("SDN %d", i%3),
			Status:       models.StatusAccepted,
			AcademicYear: testYear,
		}
		require.NoError(t, e.candidates.Create(context.Background(), c))
		out = append(out, *c)
	}
	for i := 0; i < male; i++ {
		add(i, models.GenderMale)
	}
	for i := 0; i < female; i++ {
		add(i, models.GenderFemale)
	}
	return out
}

func intPtr(i int) *int { return &i }
