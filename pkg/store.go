package pkg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/gradequest-service/internal/config"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories/memory"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories/mongo"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories/sheets"
)

// OpenStore connects the configured gradebook backend and applies the seed
// file, when one is set and the backend accepts seeding.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.Repository, error) {
	var repo repositories.Repository
	switch cfg.StoreBackend {
	case config.StoreMemory:
		repo = memory.NewRepository(memory.NewDB())
	case config.StorePostgres:
		db, err := InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		repo = postgres.NewRepository(db)
	case config.StoreMongo:
		client, err := NewMongoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		repo = mongo.NewRepository(client, cfg.MongoDatabase)
	case config.StoreSheets:
		repo = sheets.NewRepository(cfg.SheetsAPIURL, nil)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	logger.Info("Gradebook store opened", "backend", cfg.StoreBackend)

	if cfg.SeedFile == "" {
		return repo, nil
	}
	seeder, ok := repo.Gradebook().(repositories.Seeder)
	if !ok {
		logger.Warn("Store does not support seeding, ignoring SEED_FILE", "backend", cfg.StoreBackend)
		return repo, nil
	}
	rows, err := repositories.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		repo.Close()
		return nil, err
	}
	if err := seeder.Seed(ctx, rows); err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}
	logger.Info("Seeded gradebook", "file", cfg.SeedFile, "rows", len(rows))
	return repo, nil
}
