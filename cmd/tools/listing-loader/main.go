// cmd/tools/listing-loader/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"nomad-directory/internal/common/config"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/datasource"
	"nomad-directory/internal/models"
)

func main() {
	loadCmd := flag.NewFlagSet("load", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Load command flags
	configPath := loadCmd.String("config", "configs/config.yaml", "Path to config file")
	loadFixture := loadCmd.String("fixture", "fixtures/listings.json", "Path to listings fixture")
	driver := loadCmd.String("driver", "", "Override data_source.driver (postgres, elasticsearch, mongodb)")
	timeout := loadCmd.Duration("timeout", 2*time.Minute, "Overall timeout for the load")

	// Validate command flags
	validateFixture := validateCmd.String("fixture", "fixtures/listings.json", "Path to listings fixture")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "load":
		loadCmd.Parse(os.Args[2:])
		n, err := load(*configPath, *loadFixture, *driver, *timeout)
		if err != nil {
			fmt.Printf("Error loading listings: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d listings.\n", n)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		listings, err := readFixture(*validateFixture)
		if err != nil {
			fmt.Printf("Fixture validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Fixture validation passed. Found %d listings.\n", len(listings))

	case "help":
		fallthrough
	default:
		help()
	}
}

func readFixture(path string) ([]models.Listing, error) {
	listings, err := datasource.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("fixture %s contains no listings", path)
	}
	if err := models.ValidateListings(listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func load(configPath, fixturePath, driver string, timeout time.Duration) (int, error) {
	if driver != "" {
		os.Setenv("DATA_SOURCE_DRIVER", driver)
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return 0, err
	}
	if cfg.DataSource.Driver == config.DriverMemory {
		return 0, fmt.Errorf("driver %q has nothing to load into; pass -driver", cfg.DataSource.Driver)
	}

	listings, err := readFixture(fixturePath)
	if err != nil {
		return 0, err
	}

	zapLog, err := logger.New(logger.Options{Level: cfg.Logging.Level, Format: "console"})
	if err != nil {
		return 0, err
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// The cache only fronts reads.
	cfg.DataSource.Cache.Enabled = false
	source, err := datasource.New(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	if err := source.Ping(ctx); err != nil {
		return 0, fmt.Errorf("%s unreachable: %w", source.Name(), err)
	}

	writer, ok := source.(datasource.Writer)
	if !ok {
		return 0, fmt.Errorf("driver %q does not support writes", source.Name())
	}
	if preparer, ok := source.(datasource.SchemaPreparer); ok {
		if err := preparer.EnsureSchema(ctx); err != nil {
			return 0, err
		}
	}
	return writer.UpsertListings(ctx, listings)
}

func help() {
	fmt.Print(`
Usage: listing-loader <command> [flags]

Commands:
  load      Validate a fixture and upsert it into the configured store
  validate  Validate a fixture file without touching any store
  help      Show this help message

Examples:
  listing-loader validate -fixture fixtures/listings.json
  listing-loader load -config configs/config.yaml -driver elasticsearch
  listing-loader load -driver postgres -fixture fixtures/listings.json

Use 'listing-loader <command> -h' for more information about a command.
` + "\n")
}
