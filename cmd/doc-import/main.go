// cmd/doc-import - Imports achievement documents exported by older clients
//
// Each file in the directory is named <userID>.json and holds one document
// in any format DecodeDocument understands. Documents are stored in the
// current format and the user's leaderboard rows are recomputed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	_ "time/tzdata"

	"discjourney/catalog"
	"discjourney/config"
	"discjourney/database"
	"discjourney/models"
	"discjourney/progression"
	"discjourney/services"
	"discjourney/utils"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	config.LoadDotEnv()

	dir := flag.String("dir", "./documents", "directory of <userID>.json documents")
	sqlitePath := flag.String("sqlite", "", "import into this SQLite file instead of DATABASE_URL")
	catalogPath := flag.String("catalog", os.Getenv("CATALOG_PATH"), "catalog file (default: the embedded catalog)")
	tz := flag.String("tz", os.Getenv("REFERENCE_TZ"), "reference time zone for period keys")
	flag.Parse()

	log, err := utils.NewLogger(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cat, issues, err := catalog.Load(catalog.Options{
		Path:          *catalogPath,
		ExtraDisabled: catalog.ParseDisabledList(os.Getenv("DISABLED_ACHIEVEMENTS")),
	})
	for _, issue := range issues {
		log.Warn("catalog issue", zap.String("issue", issue.String()))
	}
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}

	clock, err := progression.NewZoneClock(*tz)
	if err != nil {
		log.Fatal("bad reference zone", zap.Error(err))
	}

	var db *gorm.DB
	if *sqlitePath != "" {
		db, err = database.OpenDialector(sqlite.Open(*sqlitePath), database.Options{}, log)
	} else {
		db, err = database.Open(config.DatabaseDSN(), database.Options{}, log)
	}
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = database.CloseDB() }()

	store := services.NewAchievementStore(db, services.NewClubService(db), log)
	stats, err := importDir(context.Background(), db, store, cat, clock, *dir, log)
	if err != nil {
		log.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("✓ Imported %d documents (%d skipped, %d coercion warnings)\n", stats.Imported, stats.Skipped, stats.Warnings)
	if stats.Skipped > 0 {
		os.Exit(1)
	}
}

type importStats struct {
	Imported int
	Skipped  int
	Warnings int
}

// importDir stores every <userID>.json document in dir. Files that are not
// named after a user id, or whose user does not exist, are skipped.
func importDir(ctx context.Context, db *gorm.DB, store *services.AchievementStore, cat *progression.Catalog, clock progression.Clock, dir string, log *zap.Logger) (importStats, error) {
	var stats importStats

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		return stats, fmt.Errorf("no .json documents found in %s", dir)
	}

	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".json")
		userID, err := strconv.ParseUint(name, 10, 64)
		if err != nil || userID == 0 {
			log.Warn("skipping file not named after a user id", zap.String("file", f))
			stats.Skipped++
			continue
		}

		var known int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&known).Error; err != nil {
			return stats, err
		}
		if known == 0 {
			log.Warn("skipping document for unknown user", zap.String("file", f))
			stats.Skipped++
			continue
		}

		raw, err := os.ReadFile(f)
		if err != nil {
			return stats, err
		}

		snap, warnings := progression.DecodeDocument(raw)
		for _, w := range warnings {
			log.Warn("document coerced", zap.String("file", f), zap.String("warning", w))
		}
		stats.Warnings += len(warnings)

		snap = progression.MergeWithCatalog(cat, snap)
		summary := progression.Summarize(cat, snap, clock.Now())
		if err := store.Save(ctx, uint(userID), snap, summary); err != nil {
			return stats, fmt.Errorf("%s: %w", f, err)
		}
		stats.Imported++
		log.Info("imported document",
			zap.Uint64("user_id", userID),
			zap.Int("all_time_points", summary.Totals.AllTime))
	}
	return stats, nil
}
