// Package main searches terrain noise parameters with CMA-ES for dunes that
// match a target fill and roughness and do not avalanche once the falling
// step starts.
//
// Usage: go run ./cmd/terraintune -output out/ [-fill 0.15 -roughness 1.2]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/sandfall/config"
)

// evalRow is one line of optimize_log.csv.
type evalRow struct {
	Eval       int     `csv:"eval"`
	Fitness    float64 `csv:"fitness"`
	Fill       float64 `csv:"fill"`
	Roughness  float64 `csv:"roughness"`
	Avalanche  float64 `csv:"avalanche"`
	BaseHeight float64 `csv:"base_height"`
	Amplitude  float64 `csv:"amplitude"`
	Scale      float64 `csv:"scale"`
	Alpha      float64 `csv:"alpha"`
	Beta       float64 `csv:"beta"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	fill := flag.Float64("fill", 0.15, "Target fraction of cells seeded")
	rough := flag.Float64("roughness", 1.0, "Target std dev of column height steps, in cells")
	settle := flag.Int("settle-ticks", 120, "Falling ticks used to measure avalanching")
	seeds := flag.Int("seeds", 3, "Number of terrain seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if *outputDir == "" {
		slog.Error("-output is required")
		os.Exit(1)
	}
	if err := run(*configPath, *outputDir, Targets{Fill: *fill, Roughness: *rough, SettleTicks: *settle},
		*seeds, *maxEvals, *population); err != nil {
		slog.Error("terraintune failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, targets Targets, numSeeds, maxEvals, population int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	params := NewParamVector()

	evalSeeds := make([]int64, numSeeds)
	for i := range evalSeeds {
		evalSeeds[i] = cfg.Terrain.Seed + int64(i*1000)
	}

	evaluator := NewFitnessEvaluator(params, cfg.Terrain, cfg.Derived.WorldW, cfg.Derived.WorldH, reg, evalSeeds, targets)

	dim := params.Dim()
	initX := params.Normalize(params.Extract(cfg.Terrain))

	popSize := population
	if popSize == 0 {
		popSize = 4 + 3*dim/2
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // Sequential; seeds already run in parallel
	}

	logFile, err := os.Create(filepath.Join(outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	headerWritten := false

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
			}

			m := evaluator.LastMetrics()
			row := []evalRow{{
				Eval: evalCount, Fitness: fitness,
				Fill: m.Fill, Roughness: m.Roughness, Avalanche: m.Avalanche,
				BaseHeight: raw[0], Amplitude: raw[1], Scale: raw[2], Alpha: raw[3], Beta: raw[4],
			}}
			var werr error
			if headerWritten {
				werr = gocsv.MarshalWithoutHeaders(row, logFile)
			} else {
				werr = gocsv.Marshal(row, logFile)
				headerWritten = true
			}
			if werr != nil {
				slog.Error("writing eval log", "error", werr)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: fill=%.3f rough=%.2f avalanche=%.3f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, maxEvals, m.Fill, m.Roughness, m.Avalanche, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES with %d parameters, population=%d, max_evals=%d, seeds=%d\n",
		dim, popSize, maxEvals, numSeeds)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n\nBest parameters:\n", bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	cfg.Terrain = params.Apply(cfg.Terrain, bestParams)
	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := cfg.WriteYAML(configOutPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	return nil
}
