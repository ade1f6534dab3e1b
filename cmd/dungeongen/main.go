package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/config"
	"github.com/lawnchairsociety/dungeonforge/internal/generator"
	"github.com/lawnchairsociety/dungeonforge/internal/grammar"
	"github.com/lawnchairsociety/dungeonforge/internal/layout"
	"github.com/lawnchairsociety/dungeonforge/internal/logger"
	"github.com/lawnchairsociety/dungeonforge/internal/store"
)

func main() {
	configFile := flag.String("config", "data/dungeongen.yaml", "Path to generator config YAML file")
	seed := flag.Uint64("seed", 0, "Master seed (default: config seed, or random based on current time)")
	catalogFile := flag.String("catalog", "", "Blueprint catalog YAML (default: config path, or the built-in catalog)")
	outFile := flag.String("out", "", "Write the level layout YAML to this path")
	count := flag.Int("count", 1, "Number of consecutive seeds to generate")
	record := flag.Bool("record", false, "Record each run in the seed corpus")
	verify := flag.Bool("verify", false, "Regenerate every recorded seed and report drift, then exit")
	dbFile := flag.String("db", "", "SQLite corpus path (overrides the config store)")
	showMap := flag.Bool("map", false, "Print the rendered level")
	flag.Parse()

	// The logging section lives in the generator config file
	logConfig, _ := logger.LoadConfig(*configFile)
	if err := logger.Initialize(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fatal("Error loading config: %v", err)
	}
	if *catalogFile != "" {
		cfg.CatalogPath = *catalogFile
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *outFile != "" {
		cfg.Output.LayoutPath = *outFile
	}

	catalog, err := blueprint.LoadOrDefault(cfg.CatalogPath)
	if err != nil {
		fatal("Error loading blueprint catalog: %v", err)
	}
	rules, err := grammar.DefaultRuleSet()
	if err != nil {
		fatal("Error building rule set: %v", err)
	}
	opts := cfg.Options()

	regenerate := func(s uint64) store.Run {
		_, run := store.RunContext(generator.NewContext(s, catalog, rules, opts))
		return run
	}

	var corpus *store.Store
	if *record || *verify {
		storeCfg := store.FromGeneratorConfig(cfg.Store)
		if *dbFile != "" {
			storeCfg = store.DefaultConfig(*dbFile)
		}
		corpus, err = store.OpenWithConfig(storeCfg)
		if err != nil {
			fatal("Error opening seed corpus: %v", err)
		}
		defer corpus.Close()
	}

	if *verify {
		drifts, err := corpus.VerifyCorpus(regenerate)
		if err != nil {
			fatal("Error verifying corpus: %v", err)
		}
		for _, d := range drifts {
			fmt.Printf("seed %d: recorded %s %s/%s, now %s %s/%s\n", d.Want.Seed,
				d.Want.Status, generator.Short(d.Want.Mission), generator.Short(d.Want.Dungeon),
				d.Got.Status, generator.Short(d.Got.Mission), generator.Short(d.Got.Dungeon))
		}
		if len(drifts) > 0 {
			logger.Close()
			os.Exit(1)
		}
		fmt.Println("Corpus reproduces.")
		return
	}

	failures := 0
	for i := 0; i < *count; i++ {
		runSeed := cfg.Seed
		if runSeed != 0 {
			runSeed += uint64(i)
		}

		// The context resolves seed 0 so failures are recorded under the real seed
		res, run := store.RunContext(generator.NewContext(runSeed, catalog, rules, opts))
		if corpus != nil {
			if err := corpus.Record(run); err != nil {
				logger.Error("Failed to record run", "seed", run.Seed, "error", err)
			}
		}
		if res == nil {
			failures++
			fmt.Fprintf(os.Stderr, "Error: %s\n", run.Error)
			continue
		}

		logger.Report("Level generated",
			"seed", res.Seed,
			"fingerprint", res.Fingerprint.String(),
			"rooms", res.Dungeon.Len(),
			"mission_nodes", res.Mission.Len(),
			"warnings", len(res.Warnings))
		fmt.Printf("seed %d: %s (%d rooms, %d passes, %d attempts, %s)\n",
			res.Seed, res.Fingerprint, res.Dungeon.Len(), res.Passes, res.Attempts, res.Elapsed)

		if path := cfg.Output.LayoutPath; path != "" && *count == 1 {
			if err := layout.Save(path, res); err != nil {
				fatal("Error writing layout: %v", err)
			}
			fmt.Printf("Layout written to %s\n", path)
		}

		if *showMap {
			level, err := layout.FromResult(res).Build(catalog)
			if err != nil {
				fatal("Error rebuilding level: %v", err)
			}
			for _, line := range level.Render() {
				fmt.Println(line)
			}
			for _, line := range level.Summary() {
				fmt.Println(line)
			}
		}
	}

	if failures > 0 {
		logger.Close()
		os.Exit(1)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	logger.Close()
	os.Exit(1)
}
