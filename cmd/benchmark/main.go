// ABOUTME: Command-line benchmark runner for retrieval quality tests
// ABOUTME: Indexes fixture documents, scores answers, and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/documentgpt/docchat/benchmarks/retrieval"
	"github.com/joho/godotenv"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run one scenario by ID. If empty, runs all scenarios.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required for benchmarks")
	}

	fmt.Println("========================================")
	fmt.Println("DocChat Retrieval Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner, err := retrieval.NewRunner(*verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}

	ctx := context.Background()
	var results []retrieval.Result

	if *scenarioID == "" {
		results, err = runner.RunAll(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		scenario, ok := retrieval.ScenarioByID(*scenarioID)
		if !ok {
			log.Fatalf("Unknown scenario ID: %s", *scenarioID)
		}

		result, err := runner.RunScenario(ctx, scenario)
		if err != nil {
			log.Fatalf("Scenario failed: %v", err)
		}
		results = []retrieval.Result{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.ScenarioID, result.ScenarioName)
		fmt.Printf("  Faithfulness:   %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Citations:      %.2f\n", result.CitationScore)
		fmt.Printf("  Overall:        %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Scenarios: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
