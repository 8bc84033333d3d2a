package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/modules/ingestion"
	"github.com/yungbote/studyplanner-backend/internal/modules/planner"
	"github.com/yungbote/studyplanner-backend/internal/modules/planner/report"
	"github.com/yungbote/studyplanner-backend/internal/platform/envutil"
	"github.com/yungbote/studyplanner-backend/internal/platform/logger"
	"github.com/yungbote/studyplanner-backend/internal/platform/openai"
)

const defaultUserMessage = "I can study max 6 hours per day, I prefer studying in the mornings " +
	"and afternoons. I'd like Sundays off. I want to use spaced repetition."

func main() {
	_ = godotenv.Load()

	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), log); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	filesDir := envutil.Str("FILES_DIR", "files")
	cachePath := envutil.Str("CATALOG_CACHE_PATH", "catalog.json")
	csvPath := envutil.Str("SCHEDULE_CSV_PATH", "study_plan.csv")
	xlsxPath := envutil.Str("SCHEDULE_XLSX_PATH", "study_plan.xlsx")
	configPath := envutil.Str("PLANNER_CONFIG_PATH", "")
	userMessage := envutil.Str("USER_MESSAGE", defaultUserMessage)
	timeout := time.Duration(envutil.Int("RUN_TIMEOUT_SECONDS", 1800)) * time.Second

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := planner.DefaultConfig()
	if configPath != "" {
		loaded, err := planner.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load planner config: %w", err)
		}
		cfg = loaded
	}

	ai, err := openai.NewClient(log)
	if err != nil {
		return fmt.Errorf("init oracle client: %w", err)
	}

	catalog, err := loadOrIngest(ctx, log, ai, cachePath, filesDir, userMessage)
	if err != nil {
		return err
	}

	pipe := planner.New(log, ai, cfg)
	res, err := pipe.Run(ctx, catalog)
	if err != nil {
		return fmt.Errorf("plan schedule: %w", err)
	}

	if err := report.WriteCSV(csvPath, res.Schedule, res.Issues); err != nil {
		return err
	}
	if err := report.WriteXLSX(xlsxPath, res.Schedule, res.Issues); err != nil {
		return err
	}

	log.Info("study plan written",
		"csv", csvPath,
		"xlsx", xlsxPath,
		"summary", report.Summary(res.Schedule, res.Issues),
		"attempts", res.Attempts,
		"clean", res.Clean)
	for _, issue := range res.Errors() {
		log.Warn("unresolved validation error", "issue", issue.Message)
	}
	return nil
}

// loadOrIngest reuses a previous run's catalog cache when present so
// repeated planning runs skip the document parsing entirely.
func loadOrIngest(ctx context.Context, log *logger.Logger, ai openai.Client, cachePath, filesDir, userMessage string) (domain.CourseCatalog, error) {
	if cachePath != "" {
		catalog, err := domain.LoadCatalog(cachePath)
		if err == nil {
			log.Info("loaded catalog cache", "path", cachePath, "courses", len(catalog.Courses))
			return catalog, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("catalog cache unreadable, re-ingesting", "path", cachePath, "error", err)
		}
	}

	catalog, err := ingestion.New(log, ai).Run(ctx, filesDir, userMessage)
	if err != nil {
		return domain.CourseCatalog{}, fmt.Errorf("ingest course documents: %w", err)
	}
	if cachePath != "" {
		if err := catalog.Save(cachePath); err != nil {
			log.Warn("could not write catalog cache", "path", cachePath, "error", err)
		}
	}
	return catalog, nil
}
