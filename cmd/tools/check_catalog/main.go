package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ffx-assist/program-finder/internal/catalog"
	"github.com/ffx-assist/program-finder/internal/db"
	"github.com/ffx-assist/program-finder/internal/eligibility"
)

// Prints the live catalog as the engine sees it: one row per active
// program with its criteria counts and current seasonal state.
func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	programs, err := store.ListPrograms(ctx, "en", true)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	reg, err := catalog.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load question registry: %v", err)
	}

	now := time.Now()
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Slug", "Name", "Geo", "Ages", "Housing", "Needs", "Benchmark", "Windows", "Open Now"})

	for _, p := range programs {
		benchmark := "-"
		if p.IncomeBenchmark != nil {
			benchmark = p.IncomeBenchmark.Code
		}
		openNow := "yes"
		if !eligibility.InSeason(p.SeasonalWindows, now) {
			openNow = "no"
		}
		t.AppendRow(table.Row{
			p.Slug, p.Name,
			len(p.Geographies), len(p.AgeGroups), len(p.HousingTypes), len(p.NeedTypes),
			benchmark, len(p.SeasonalWindows), openNow,
		})
	}
	t.Render()

	log.Printf("%d active programs, %d questions (registry %s)",
		len(programs), len(reg.Questions), reg.Version)
}
