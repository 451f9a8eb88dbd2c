// Package renderer maps the particle grid to an RGBA pixel buffer that any
// frontend can upload.
package renderer

import (
	"image/color"

	"github.com/pthm-cable/sandfall/elements"
	"github.com/pthm-cable/sandfall/particles"
)

// Pixels is an RGBA8 image with one pixel per grid cell, rows top to bottom.
type Pixels struct {
	Width, Height int
	Pix           []color.RGBA
}

// NewPixels allocates a transparent width x height image.
func NewPixels(width, height int) *Pixels {
	return &Pixels{
		Width:  width,
		Height: height,
		Pix:    make([]color.RGBA, width*height),
	}
}

// Index returns the offset of pixel (x, y) in Pix.
func (p *Pixels) Index(x, y int) int {
	return y*p.Width + x
}

// Set writes pixel (x, y).
func (p *Pixels) Set(x, y int, c color.RGBA) {
	p.Pix[p.Index(x, y)] = c
}

// At reads pixel (x, y).
func (p *Pixels) At(x, y int) color.RGBA {
	return p.Pix[p.Index(x, y)]
}

// Bytes writes the image as packed RGBA bytes into dst, growing it if
// needed, and returns it.
func (p *Pixels) Bytes(dst []byte) []byte {
	n := 4 * len(p.Pix)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, c := range p.Pix {
		dst[4*i] = c.R
		dst[4*i+1] = c.G
		dst[4*i+2] = c.B
		dst[4*i+3] = c.A
	}
	return dst
}

// Renderer colors each cell by its particle's element, or Empty for
// unclaimed cells.
type Renderer struct {
	Empty elements.Color
	// FlipY puts world row 0 at the bottom of the image.
	FlipY bool
}

// Render draws w into dst, which must match the grid size.
func (r *Renderer) Render(w *particles.System, dst *Pixels) {
	if dst.Width != w.Width() || dst.Height != w.Height() {
		panic("renderer: pixel buffer does not match grid size")
	}

	reg := w.Elements()
	empty := r.Empty.RGBA8()
	width, height := w.Width(), w.Height()

	for i, h := range w.Cells() {
		x, y := i%width, i/width
		if r.FlipY {
			y = height - 1 - y
		}

		c := empty
		if !h.IsZero() {
			if p, ok := w.Particle(h); ok {
				c = reg.Get(p.Kind).Color.RGBA8()
			}
		}
		dst.Pix[y*width+x] = c
	}
}
