package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/particles"
	"github.com/pthm-cable/sandfall/systems"
)

// Targets describe the terrain being searched for.
type Targets struct {
	Fill      float64 // Fraction of cells seeded
	Roughness float64 // Std dev of height steps between neighboring columns, in cells
	// SettleTicks is how long the falling step runs on fresh terrain to
	// measure avalanching.
	SettleTicks int
}

// Metrics are the measured properties of one seeded terrain.
type Metrics struct {
	Fill      float64
	Roughness float64
	Avalanche float64 // Moves per seeded particle while settling
}

// Fitness component weights.
const (
	fillWeight      = 1.0
	roughnessWeight = 1.0
	avalancheWeight = 2.0
)

// FitnessEvaluator seeds terrains and scores them against targets.
type FitnessEvaluator struct {
	params  *ParamVector
	base    config.TerrainConfig
	width   int
	height  int
	reg     *elements.Registry
	seeds   []int64
	targets Targets

	mu          sync.Mutex
	lastMetrics Metrics
}

// NewFitnessEvaluator creates a new evaluator over a width x height world.
func NewFitnessEvaluator(params *ParamVector, base config.TerrainConfig, width, height int,
	reg *elements.Registry, seeds []int64, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:  params,
		base:    base,
		width:   width,
		height:  height,
		reg:     reg,
		seeds:   seeds,
		targets: targets,
	}
}

// LastMetrics returns the seed-averaged metrics of the most recent Evaluate call.
func (fe *FitnessEvaluator) LastMetrics() Metrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Each seed gets its own world so seeds run in parallel.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	terrain := fe.params.Apply(fe.base, x)

	results := make([]Metrics, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			t := terrain
			t.Seed = s
			results[idx] = fe.measure(t, s)
		}(i, seed)
	}
	wg.Wait()

	var avg Metrics
	for _, m := range results {
		avg.Fill += m.Fill
		avg.Roughness += m.Roughness
		avg.Avalanche += m.Avalanche
	}
	n := float64(len(results))
	avg.Fill /= n
	avg.Roughness /= n
	avg.Avalanche /= n

	fe.mu.Lock()
	fe.lastMetrics = avg
	fe.mu.Unlock()

	return fe.computeFitness(avg)
}

// measure seeds one terrain and lets it settle.
func (fe *FitnessEvaluator) measure(t config.TerrainConfig, seed int64) Metrics {
	profile := systems.TerrainProfile(t, fe.width, fe.height)
	m := Metrics{Roughness: roughness(profile)}

	w := particles.New(fe.width, fe.height, fe.reg, fe.width*fe.height/4)
	seeded, err := systems.SeedTerrain(w, t)
	if err != nil || seeded == 0 {
		return m
	}
	m.Fill = float64(seeded) / float64(fe.width*fe.height)

	step := systems.NewFalling(seed)
	moves := 0
	for range fe.targets.SettleTicks {
		moves += step.Step(w)
	}
	m.Avalanche = float64(moves) / float64(seeded)
	return m
}

// computeFitness sums squared relative errors against the targets plus the
// avalanche penalty.
func (fe *FitnessEvaluator) computeFitness(m Metrics) float64 {
	fillErr := relErr(m.Fill, fe.targets.Fill)
	roughErr := relErr(m.Roughness, fe.targets.Roughness)
	return fillWeight*fillErr*fillErr + roughnessWeight*roughErr*roughErr + avalancheWeight*m.Avalanche
}

// roughness is the standard deviation of height steps between neighboring
// columns.
func roughness(profile []int) float64 {
	if len(profile) < 2 {
		return 0
	}
	steps := make([]float64, len(profile)-1)
	for i := range steps {
		steps[i] = float64(profile[i+1] - profile[i])
	}
	return stat.StdDev(steps, nil)
}

func relErr(got, want float64) float64 {
	return (got - want) / math.Max(math.Abs(want), 1e-3)
}
