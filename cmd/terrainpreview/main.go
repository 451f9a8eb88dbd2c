// Terrain preview tool - interactive dune tuning with sliders.
//
// Usage: go run ./cmd/terrainpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sandfall/config"
	"github.com/pthm-cable/sandfall/particles"
	"github.com/pthm-cable/sandfall/renderer"
	"github.com/pthm-cable/sandfall/systems"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 640
	previewH     = 360
	panelWidth   = windowWidth - previewW - 30
)

// slider describes one tunable terrain parameter.
type slider struct {
	label    string
	min, max float32
	format   string
	get      func(*config.TerrainConfig) float32
	set      func(*config.TerrainConfig, float32)
}

var sliders = []slider{
	{
		label: "Base height (fraction of world)", min: 0, max: 0.8, format: "%.2f",
		get: func(t *config.TerrainConfig) float32 { return float32(t.BaseHeight) },
		set: func(t *config.TerrainConfig, v float32) { t.BaseHeight = float64(v) },
	},
	{
		label: "Amplitude (fraction of world)", min: 0, max: 0.5, format: "%.2f",
		get: func(t *config.TerrainConfig) float32 { return float32(t.Amplitude) },
		set: func(t *config.TerrainConfig, v float32) { t.Amplitude = float64(v) },
	},
	{
		label: "Scale (noise frequency per cell)", min: 0.001, max: 0.1, format: "%.3f",
		get: func(t *config.TerrainConfig) float32 { return float32(t.Scale) },
		set: func(t *config.TerrainConfig, v float32) { t.Scale = float64(v) },
	},
	{
		label: "Alpha (persistence)", min: 1, max: 4, format: "%.2f",
		get: func(t *config.TerrainConfig) float32 { return float32(t.Alpha) },
		set: func(t *config.TerrainConfig, v float32) { t.Alpha = float64(v) },
	},
	{
		label: "Beta (lacunarity)", min: 1, max: 4, format: "%.2f",
		get: func(t *config.TerrainConfig) float32 { return float32(t.Beta) },
		set: func(t *config.TerrainConfig, v float32) { t.Beta = float64(v) },
	},
	{
		label: "Octaves", min: 1, max: 8, format: "%.0f",
		get: func(t *config.TerrainConfig) float32 { return float32(t.Octaves) },
		set: func(t *config.TerrainConfig, v float32) { t.Octaves = int32(v) },
	},
	{
		label: "Seed", min: 0, max: 99999, format: "%.0f",
		get: func(t *config.TerrainConfig) float32 { return float32(t.Seed) },
		set: func(t *config.TerrainConfig, v float32) { t.Seed = int64(v) },
	},
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	reg, err := cfg.Registry()
	if err != nil {
		slog.Error("invalid elements", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Terrain Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := cfg.Terrain
	params := cfg.Terrain

	w, h := cfg.Derived.WorldW, cfg.Derived.WorldH
	world := particles.New(w, h, reg, w*h/4)
	px := renderer.NewPixels(w, h)
	r := renderer.Renderer{Empty: cfg.Derived.EmptyColor, FlipY: cfg.Render.FlipY}

	img := rl.GenImageColor(w, h, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(texture, rl.FilterPoint)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	needsRegen := true
	created := 0

	for !rl.WindowShouldClose() {
		if needsRegen {
			world.Clear()
			created, err = systems.SeedTerrain(world, params)
			if err != nil {
				slog.Error("seeding terrain", "error", err)
			}
			r.Render(world, px)
			rl.UpdateTexture(texture, px.Pix)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawRectangle(10, 10, previewW, previewH, rl.Color{R: 20, G: 24, B: 30, A: 255})
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(w), Height: float32(h)},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		fill := float64(created) / float64(w*h)
		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("World: %dx%d  Particles: %d  Fill: %.1f%%", w, h, created, fill*100), 15, statsY, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Terrain Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			cur := s.get(&params)
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != cur {
				s.set(&params, next)
				needsRegen = true
			}
			panelY += 35
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			needsRegen = true
		}
		panelY += 55

		snippet := terrainYAML(params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for line := range strings.SplitSeq(strings.TrimSpace(snippet), "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
}

// terrainYAML renders t as a config snippet.
func terrainYAML(t config.TerrainConfig) string {
	out, err := yaml.Marshal(map[string]config.TerrainConfig{"terrain": t})
	if err != nil {
		return err.Error()
	}
	return string(out)
}
