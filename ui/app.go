package ui

import (
	"log/slog"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/brush"
	"github.com/pthm-cable/sandfall/camera"
	"github.com/pthm-cable/sandfall/game"
	"github.com/pthm-cable/sandfall/renderer"
)

// App is the raylib frontend around a Game. The raylib window must exist
// before NewApp is called.
type App struct {
	game *game.Game
	cam  *camera.Camera

	px  *renderer.Pixels
	tex GridTexture

	overlays   *Overlays
	hud        *HUD
	help       *HelpPanel
	brushPanel *BrushPanel
	stats      *StatsPanel
	perf       *PerfPanel
	inspector  *Inspector

	screenWidth, screenHeight float32

	painting  bool
	lastPaint brush.Point
}

// NewApp wires the panels and camera to g.
func NewApp(g *game.Game) *App {
	cfg := g.Config()
	w, h := g.World().Width(), g.World().Height()
	sw, sh := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())

	a := &App{
		game:         g,
		cam:          camera.New(sw, sh, float32(w), float32(h), float32(cfg.Screen.CellSize)),
		px:           renderer.NewPixels(w, h),
		overlays:     NewOverlays(),
		hud:          NewHUD(),
		help:         NewHelpPanel(10, 0, 200),
		brushPanel:   NewBrushPanel(g.World().Elements(), cfg.Brush.MinRadius, cfg.Brush.MaxRadius, 10, 100, 200),
		stats:        NewStatsPanel(0, 10),
		perf:         NewPerfPanel(0, 0),
		inspector:    NewInspector(0, 0),
		screenWidth:  sw,
		screenHeight: sh,
	}
	a.tex.Init(w, h)
	return a
}

// Update handles input for this frame, advances the game and uploads the
// rendered grid.
func (a *App) Update(now time.Time) {
	a.handleInput(now)
	a.game.Frame(now, a.px)
	a.tex.Upload(a.px)
}

// handleInput processes keyboard and mouse input.
func (a *App) handleInput(now time.Time) {
	a.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	a.overlays.HandleKeys()

	if rl.IsKeyPressed(rl.KeySpace) {
		a.game.SetRunning(!a.game.Running(), now)
	}
	if rl.IsKeyPressed(rl.KeyN) && !a.game.Running() {
		a.game.StepOnce()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		a.game.SetEraser(!a.game.Erasing())
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.game.Clear()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.game.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}

	// Number keys pick elements in panel order
	for i, k := range a.brushPanel.Kinds() {
		if i >= 9 {
			break
		}
		if rl.IsKeyPressed(rl.KeyOne + int32(i)) {
			if err := a.game.SelectKind(k); err != nil {
				slog.Warn("element not selectable", "kind", k, "error", err)
			}
		}
	}

	step := a.game.Config().Brush.Step
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		a.game.AdjustRadius(-step)
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		a.game.AdjustRadius(step)
	}

	a.handleCameraInput(step)
	a.handlePointer()
}

// handleResize checks for window resize and propagates new dimensions.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == a.screenWidth && h == a.screenHeight {
		return
	}
	a.screenWidth = w
	a.screenHeight = h
	a.cam.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (a *App) handleCameraInput(radiusStep float64) {
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		a.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		a.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		a.cam.Pan(0, -panSpeed)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) || rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		a.cam.Pan(-d.X, -d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
			a.game.AdjustRadius(float64(wheel) * radiusStep)
		} else {
			mouse := rl.GetMousePosition()
			a.cam.ZoomAt(1+wheel*0.1, mouse.X, mouse.Y)
		}
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		a.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		a.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		a.cam.Reset()
	}
}

// handlePointer turns left-button gestures over the world into pointer events.
func (a *App) handlePointer() {
	mouse := rl.GetMousePosition()
	p := a.worldPoint(mouse)

	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		if a.brushPanel.Contains(mouse) {
			return
		}
		a.painting = true
		a.lastPaint = p
		a.game.PointerDown(p)

	case a.painting && rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		a.painting = false
		a.game.PointerUp(p)

	case a.painting && p != a.lastPaint:
		a.lastPaint = p
		a.game.PointerMove(p)
	}
}

// worldPoint maps a screen position to the cell under it.
func (a *App) worldPoint(v rl.Vector2) brush.Point {
	wx, wy := a.cam.ScreenToWorld(v.X, v.Y)
	return brush.Point{X: math.Floor(float64(wx)), Y: math.Floor(float64(wy))}
}

// Draw renders the world and the UI.
func (a *App) Draw(now time.Time) {
	a.game.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	a.tex.Draw(a.cam)
	x, y, w, h := a.cam.WorldRect()
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, 1, rl.DarkGray)

	if a.overlays.Enabled(OverlayGridLines) {
		a.drawGridLines()
	}

	mouse := rl.GetMousePosition()
	if a.overlays.Enabled(OverlayBrushOutline) && !a.brushPanel.Contains(mouse) {
		radius := float32(a.game.Brush().Radius) * a.cam.Scale()
		color := rl.White
		if a.game.Erasing() {
			color = rl.Red
		}
		rl.DrawCircleLinesV(mouse, radius, color)
	}

	a.drawUI(now, mouse)

	rl.EndDrawing()
}

// drawGridLines outlines visible cells once they are large enough to see.
func (a *App) drawGridLines() {
	if a.cam.Scale() < 6 {
		return
	}
	color := rl.Color{R: 255, G: 255, B: 255, A: 24}
	minX, minY, maxX, maxY := a.cam.VisibleCells()
	for cx := minX; cx <= maxX+1; cx++ {
		sx0, sy0 := a.cam.WorldToScreen(float32(cx), float32(minY))
		sx1, sy1 := a.cam.WorldToScreen(float32(cx), float32(maxY+1))
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, color)
	}
	for cy := minY; cy <= maxY+1; cy++ {
		sx0, sy0 := a.cam.WorldToScreen(float32(minX), float32(cy))
		sx1, sy1 := a.cam.WorldToScreen(float32(maxX+1), float32(cy))
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, color)
	}
}

// drawUI renders the HUD and the enabled panels.
func (a *App) drawUI(now time.Time, mouse rl.Vector2) {
	world := a.game.World()
	b := a.game.Brush()
	cursor := a.worldPoint(mouse)
	cx, cy := int(cursor.X), int(cursor.Y)

	label := "eraser"
	brushColor := rl.Blank
	if !b.Mode.IsErase() {
		e := world.Elements().Get(b.Mode.Kind())
		label = e.Name
		brushColor = e.Color.RGBA8()
	}

	a.hud.Draw(HUDData{
		Title:       "Sandfall",
		Particles:   world.Len(),
		Tick:        a.game.Tick(),
		FPS:         rl.GetFPS(),
		Running:     a.game.Running(),
		BrushLabel:  label,
		BrushRadius: b.Radius,
		BrushColor:  brushColor,
		CursorX:     cx,
		CursorY:     cy,
		CursorValid: world.InBounds(cx, cy),
	})
	a.hud.DrawLegend(int32(a.screenHeight), legend(bindings))

	a.brushPanel.Draw(a.game, now)

	if a.overlays.Enabled(OverlayHelp) {
		bottom := a.brushPanel.Bounds()
		a.help.SetPosition(10, int32(bottom.Y+bottom.Height)+10)
		a.help.Draw(a.overlays)
	}

	// Right column
	px := int32(a.screenWidth) - 240
	py := int32(10)
	if a.overlays.Enabled(OverlayStats) {
		a.stats.SetPosition(px, py)
		py = a.stats.Draw(a.game.LastWindow()) + 10
	}
	if a.overlays.Enabled(OverlayPerf) {
		a.perf.SetPosition(px, py)
		py = a.perf.Draw(a.game.Perf()) + 10
	}
	if a.overlays.Enabled(OverlayInspector) {
		if info, ok := InspectCell(world, cx, cy); ok {
			a.inspector.SetPosition(px, py)
			a.inspector.Draw(info)
		}
	}
}

// Unload frees GPU resources.
func (a *App) Unload() {
	a.tex.Unload()
}
