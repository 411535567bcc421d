package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/inkwell-cms/inkwell-backend/internal/config"
	"github.com/inkwell-cms/inkwell-backend/internal/migration"
	"github.com/inkwell-cms/inkwell-backend/internal/service"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.dev.yaml", "config file path")
	target := flag.String("target", "all", "migration target: all, schema, taxonomy, rebuild, verify")
	dryRun := flag.Bool("dry-run", false, "show what would be migrated without executing")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if loaded := config.LoadDotEnv(); len(loaded) == 0 {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if *dryRun {
		runDryRun(db)
		return
	}

	start := time.Now()
	switch *target {
	case "schema":
		run(migration.RunSchema(db), "schema")
	case "taxonomy":
		runSchemaThen(db, runTaxonomy)
	case "rebuild":
		run(db.Transaction(service.RebuildTree), "rebuild")
	case "verify":
		run(migration.VerifyTaxonomy(db), "verify")
	case "all":
		runSchemaThen(db, runTaxonomy)
		run(migration.VerifyTaxonomy(db), "verify")
	default:
		log.Printf("[migrate] Unknown target: %s", *target)
		os.Exit(2)
	}
	log.Printf("[migrate] Completed in %v", time.Since(start))
}

func run(err error, label string) {
	if err != nil {
		log.Printf("[migrate] FAILED %s: %v", label, err)
		os.Exit(1)
	}
}

func runSchemaThen(db *gorm.DB, next func(db *gorm.DB)) {
	run(migration.RunSchema(db), "schema")
	next(db)
}

func runTaxonomy(db *gorm.DB) {
	report, err := migration.MigrateTaxonomy(db)
	if err != nil {
		log.Printf("[migrate] FAILED taxonomy: %v", err)
		os.Exit(1)
	}
	log.Printf("[migrate] Taxonomy report: %s", report)
	if report.RelationsOrphan > 0 || report.CategoriesOrphan > 0 {
		log.Printf("[migrate] WARNING: %d orphan categories, %d orphan relations need review",
			report.CategoriesOrphan, report.RelationsOrphan)
	}
}

// runDryRun reports legacy row counts without writing anything.
func runDryRun(db *gorm.DB) {
	counts := map[string]string{
		"tags":             "legacy tags",
		"categories":       "legacy categories",
		"article_tag":      "article-tag relations",
		"article_category": "article-category relations",
		"taxonomy_nodes":   "already-migrated nodes",
	}
	for table, label := range counts {
		var n int64
		if err := db.Table(table).Count(&n).Error; err != nil {
			log.Printf("[dry-run] %s: unavailable (%v)", label, err)
			continue
		}
		log.Printf("[dry-run] %s: %d rows", label, n)
	}
}
