package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/layout"
)

func main() {
	inputFile := flag.String("input", "data/level.yaml", "Path to level layout YAML file")
	catalogFile := flag.String("catalog", "", "Blueprint catalog the level was generated with (default: built-in)")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	showRooms := flag.Bool("rooms", true, "Show room details")
	flag.Parse()

	if !layout.FileExists(*inputFile) {
		fmt.Fprintf(os.Stderr, "Error: level file not found: %s\n", *inputFile)
		os.Exit(1)
	}

	data, err := layout.Load(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading level: %v\n", err)
		os.Exit(1)
	}

	catalog, err := blueprint.LoadOrDefault(*catalogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	level, err := data.Build(catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rebuilding level: %v\n", err)
		os.Exit(1)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("Dungeon Map (Seed: %d, Rooms: %d)\n", data.Seed, len(data.Rooms)))
	output.WriteString(fmt.Sprintf("Fingerprint: %s\n", data.Fingerprint))
	output.WriteString(fmt.Sprintf("Generated: %s\n", data.SavedAt.Format("2006-01-02 15:04:05")))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, line := range level.Render() {
		output.WriteString(line + "\n")
	}

	if *showRooms {
		output.WriteString("\nRoom Details:\n")
		for _, line := range level.Summary() {
			output.WriteString("  " + line + "\n")
		}
	}

	if *showLegend {
		output.WriteString("\n" + layout.Legend())
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}
