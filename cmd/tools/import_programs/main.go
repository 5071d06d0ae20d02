package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ffx-assist/program-finder/internal/db"
)

// importFile is the YAML document shape for bulk catalog loads.
type importFile struct {
	Programs []db.ImportProgram `yaml:"programs"`
}

func main() {
	path := flag.String("file", "", "path to a YAML file of programs")
	flag.Parse()
	if *path == "" {
		log.Fatal("usage: import_programs -file programs.yaml")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *path, err)
	}

	var doc importFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Fatalf("Failed to parse %s: %v", *path, err)
	}
	if len(doc.Programs) == 0 {
		log.Fatal("No programs found in file")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := db.NewStore(pool)
	result, err := store.ImportPrograms(ctx, doc.Programs)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import complete: %d created, %d updated, %d errors",
		len(result.Created), len(result.Updated), len(result.Errors))
	for _, e := range result.Errors {
		log.Printf("  error: %s", e)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
