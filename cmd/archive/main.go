package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"englishexplorer/internal/config"
	"englishexplorer/internal/database"
	"englishexplorer/internal/logger"
	"englishexplorer/internal/models"
	"englishexplorer/internal/repository"

	"go.uber.org/zap"
)

// exportFile is the document written by the export command
type exportFile struct {
	ExportedAt time.Time                `json:"exported_at"`
	Kind       string                   `json:"kind,omitempty"`
	Items      []models.ArchivedContent `json:"items"`
}

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOutput := exportCmd.String("output", "", "Output file path (default: archive_YYYYMMDD_HHMMSS.json)")
	exportKind := exportCmd.String("kind", "", "Only export one kind: STORY, ORDERING or GAPFILL")
	exportLimit := exportCmd.Int("limit", 1000, "Maximum number of items to export")

	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel, "console"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Get().Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Get().Fatal("failed to run migrations", zap.Error(err))
	}

	repo := repository.NewContentRepository(db)

	switch os.Args[1] {
	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		if err := handleExport(repo, *exportOutput, *exportKind, *exportLimit); err != nil {
			logger.Get().Fatal("export failed", zap.Error(err))
		}

	case "stats":
		_ = statsCmd.Parse(os.Args[2:])
		if err := handleStats(repo); err != nil {
			logger.Get().Fatal("stats failed", zap.Error(err))
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(repo *repository.ContentRepository, outputPath, kind string, limit int) error {
	if outputPath == "" {
		outputPath = fmt.Sprintf("archive_%s.json", time.Now().Format("20060102_150405"))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	items, err := repo.ListArchived(kind, limit)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exportFile{ExportedAt: time.Now().UTC(), Kind: kind, Items: items}); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	logger.Info("export complete", zap.String("output", outputPath), zap.Int("items", len(items)))
	return nil
}

func handleStats(repo *repository.ContentRepository) error {
	stats, err := repo.FetchStats()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tSUCCESSES\tFAILURES\tAVG MS")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\n", s.Kind, s.Successes, s.Failures, s.AvgDurationMs)
	}
	return w.Flush()
}

func printUsage() {
	fmt.Println("English Explorer Content Archive Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  archive export [options]    Export archived stories and rounds to JSON")
	fmt.Println("  archive stats               Show generation success rates per kind")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: archive_YYYYMMDD_HHMMSS.json)")
	fmt.Println("  -kind <kind>      Only export STORY, ORDERING or GAPFILL")
	fmt.Println("  -limit <n>        Maximum number of items (default: 1000)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE         Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH         SQLite database path (default: ./explorer.db)")
	fmt.Println("  DATABASE_URL    PostgreSQL or MySQL connection URL")
}
