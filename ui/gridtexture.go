package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sandfall/camera"
	"github.com/pthm-cable/sandfall/renderer"
)

// GridTexture holds the grid image on the GPU and draws it through the camera.
type GridTexture struct {
	tex         rl.Texture2D
	texW, texH  int
	initialized bool
}

// Init creates the texture (must be called after raylib window is created).
func (g *GridTexture) Init(gridW, gridH int) {
	if g.initialized {
		return
	}
	g.texW = gridW
	g.texH = gridH

	img := rl.GenImageColor(gridW, gridH, rl.Blank)
	g.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(g.tex, rl.FilterPoint)
	rl.UnloadImage(img)

	g.initialized = true
}

// Upload copies px to the GPU.
func (g *GridTexture) Upload(px *renderer.Pixels) {
	if !g.initialized {
		g.Init(px.Width, px.Height)
	}
	if px.Width != g.texW || px.Height != g.texH {
		return
	}
	rl.UpdateTexture(g.tex, px.Pix)
}

// Draw renders the grid where cam places it on screen.
func (g *GridTexture) Draw(cam *camera.Camera) {
	if !g.initialized {
		return
	}
	x, y, w, h := cam.WorldRect()
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(g.texW), Height: float32(g.texH)}
	dstRect := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
	rl.DrawTexturePro(g.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (g *GridTexture) Unload() {
	if !g.initialized {
		return
	}
	rl.UnloadTexture(g.tex)
	g.initialized = false
}
