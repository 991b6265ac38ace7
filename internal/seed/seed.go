package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/app/services"
)

// ImportCandidatesFromCSV loads the candidates CSV at csvPath into the configured
// academic year. It only runs when the year has no candidates yet, so restarting
// the service does not duplicate the seed. An empty path or missing file is skipped.
func ImportCandidatesFromCSV(ctx context.Context, csvPath string, candidates services.CandidateService, lgr zerolog.Logger) error {
	if csvPath == "" {
		return nil
	}

	file, err := os.Open(csvPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			lgr.Warn().Str("path", csvPath).Msg("Seed CSV not found, skipping")
			return nil
		}
		return fmt.Errorf("failed to open seed CSV: %w", err)
	}
	defer file.Close()

	existing, err := candidates.ListCandidates(ctx, &dto.CandidateFilterRequest{PageSize: 1})
	if err != nil {
		return fmt.Errorf("failed to check existing candidates: %w", err)
	}
	if existing.Pagination.TotalItems > 0 {
		lgr.Info().Int64("candidates", existing.Pagination.TotalItems).Msg("Candidates already present, skipping seed")
		return nil
	}

	lgr.Info().Str("path", csvPath).Msg("Seeding candidates from CSV...")
	result, err := candidates.ImportCSV(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to import seed CSV: %w", err)
	}

	for _, f := range result.Failed {
		lgr.Warn().Int64("row", f.ID).Str("error", f.Error).Msg("Seed row rejected")
	}
	lgr.Info().
		Int("succeeded", result.SuccessCount()).
		Int("failed", result.FailureCount()).
		Msg("Candidate seed finished")
	return nil
}
