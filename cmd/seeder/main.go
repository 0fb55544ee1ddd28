package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/locvowork/ltxbench/internal/bootstrap"
	"github.com/locvowork/ltxbench/internal/database"
	"github.com/locvowork/ltxbench/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	catalogPath := flag.String("catalog", "", "Catalog YAML file (default: embedded catalog)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt of clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("LTX Bench library seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		log.Fatal(err)
	}
	defer app.Close()

	var indexer database.MetricIndexer
	if app.SearchClient != nil {
		indexer = app.SearchClient
	}
	seeder := database.NewDataSeeder(app.DB, indexer)

	// Execute action
	switch *action {
	case "seed":
		catalog, err := loadCatalog(*catalogPath)
		if err != nil {
			log.Fatalf("Loading catalog failed: %v", err)
		}
		if err := seeder.SeedCatalog(ctx, catalog); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}

	case "clear":
		performClear(ctx, seeder, *yes)

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		flag.PrintDefaults()
		os.Exit(2)
	}

	fmt.Println("Done!")
}

func loadCatalog(path string) (*database.Catalog, error) {
	if path == "" {
		return database.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return database.ParseCatalog(data)
}

func performClear(ctx context.Context, seeder *database.DataSeeder, yes bool) {
	if !yes {
		fmt.Println("This will delete the whole metric library, organizations and projects!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}
	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("Clear failed: %v", err)
	}
}
