package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/movilstore/catalog-backend/config"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	"github.com/movilstore/catalog-backend/internal/app/service"
	"github.com/movilstore/catalog-backend/internal/db"
	"github.com/movilstore/catalog-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

func main() {
	assumeYes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-y] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{
		Level:       "warn",
		Format:      "console",
		EnableColor: true,
	})

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	wb, err := readWorkbook(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Category rows: %d, attribute rows: %d\n", len(wb.Categories), len(wb.Attributes))

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := run(cfg, wb); err != nil {
		log.Fatal("Import stopped: ", err)
	}
}

func run(cfg *config.Config, wb *workbook) error {
	if err := db.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	policy, err := service.ParseDeletePolicy(cfg.Catalog.DeletePolicy)
	if err != nil {
		return err
	}

	categories := service.NewCategoryService(repository.NewCategoryRepository(db.GetDB(), nil), policy)
	attributes := service.NewAttributeService(repository.NewAttributeRepository(db.GetDB(), nil), policy)

	summary, err := importWorkbook(context.Background(), wb, categories, attributes)

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Categories created: %d\n", summary.Categories)
	fmt.Printf("  Subcategories created: %d\n", summary.Subcategories)
	fmt.Printf("  Attribute groups created: %d\n", summary.AttributeGroups)
	fmt.Printf("  Attributes created: %d\n", summary.Attributes)
	fmt.Printf("  Existing rows skipped: %d\n", summary.Skipped)

	return err
}
