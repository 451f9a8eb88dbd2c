package systems

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/particles"
)

// TerrainProfile returns the dune height in cells for each of width columns.
// Heights follow base + amplitude*noise, where noise is 1D Perlin sampled at
// x*scale, and are clamped to [0, height].
func TerrainProfile(cfg config.TerrainConfig, width, height int) []int {
	octaves := cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}
	noise := perlin.NewPerlin(cfg.Alpha, cfg.Beta, octaves, cfg.Seed)

	profile := make([]int, width)
	for x := range profile {
		n := noise.Noise1D(float64(x) * cfg.Scale)
		h := (cfg.BaseHeight + cfg.Amplitude*n) * float64(height)
		profile[x] = min(max(int(math.Round(h)), 0), height)
	}
	return profile
}

// SeedTerrain fills each column of w from y = 0 up to its TerrainProfile
// height with cfg.Element. Occupied cells are left alone. It returns the
// number of particles created.
func SeedTerrain(w *particles.System, cfg config.TerrainConfig) (int, error) {
	kind, ok := w.Elements().KindByName(cfg.Element)
	if !ok {
		return 0, fmt.Errorf("terrain element %q not registered", cfg.Element)
	}

	created := 0
	mode := particles.DrawMode(kind)
	for x, top := range TerrainProfile(cfg, w.Width(), w.Height()) {
		for y := 0; y < top; y++ {
			out, err := w.DrawPoint(x, y, mode)
			if err != nil {
				return created, err
			}
			if out == particles.Created {
				created++
			}
		}
	}
	return created, nil
}
