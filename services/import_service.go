package services

import (
	"context"
	"log/slog"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/models"
)

// ImportService copies a local-storage export into an account.
type ImportService struct {
	repo   *database.Repository
	logger *slog.Logger
}

func NewImportService(repo *database.Repository, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{repo: repo, logger: logger}
}

func (is *ImportService) Import(ctx context.Context, userID string, snap models.Snapshot) (*models.ImportResult, error) {
	result, err := is.repo.Import(ctx, userID, snap)
	if err != nil {
		return nil, fromDB(err, "imported data")
	}
	is.logger.Info("snapshot imported",
		"user_id", userID,
		"drones", result.Drones,
		"parts", result.Parts,
		"repairs", result.Repairs,
		"practice_days", result.PracticeDays,
	)
	return result, nil
}
