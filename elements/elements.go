// Package elements defines particle kinds and the static per-kind attributes
// shared by every particle of that kind.
package elements

import (
	"fmt"
	"image/color"
	"iter"
)

// Catalog selects which element list a Kind indexes into.
type Catalog uint8

const (
	CatalogBase   Catalog = iota // Built-in elements, fixed at construction
	CatalogCustom                // User-defined elements, appendable
)

// String returns the catalog name.
func (c Catalog) String() string {
	switch c {
	case CatalogBase:
		return "base"
	case CatalogCustom:
		return "custom"
	default:
		return fmt.Sprintf("catalog(%d)", uint8(c))
	}
}

// Kind identifies an element by catalog and index.
// The zero Kind is Base(0).
type Kind struct {
	Catalog Catalog
	Index   uint16
}

// Base returns the kind of the i-th built-in element.
func Base(i uint16) Kind { return Kind{Catalog: CatalogBase, Index: i} }

// Custom returns the kind of the i-th user-defined element.
func Custom(i uint16) Kind { return Kind{Catalog: CatalogCustom, Index: i} }

// String renders the kind as "catalog:index".
func (k Kind) String() string {
	return fmt.Sprintf("%s:%d", k.Catalog, k.Index)
}

// Built-in element kinds in DefaultRegistry.
var (
	Sand  = Base(0)
	Water = Base(1)
	Stone = Base(2)
)

// Color is a display color with each channel in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Transparent is fully transparent black.
var Transparent = Color{}

// NewColor validates and returns an RGBA color.
func NewColor(r, g, b, a float32) (Color, error) {
	for _, v := range [4]float32{r, g, b, a} {
		if !(v >= 0 && v <= 1) {
			return Color{}, fmt.Errorf("color channel %v outside [0, 1]", v)
		}
	}
	return Color{R: r, G: g, B: b, A: a}, nil
}

// NewRGB validates and returns an opaque color.
func NewRGB(r, g, b float32) (Color, error) {
	return NewColor(r, g, b, 1)
}

// MustRGBA is like NewColor but panics on an invalid channel.
func MustRGBA(r, g, b, a float32) Color {
	c, err := NewColor(r, g, b, a)
	if err != nil {
		panic(fmt.Sprintf("elements: %v", err))
	}
	return c
}

// Valid reports whether every channel lies in [0, 1].
func (c Color) Valid() bool {
	_, err := NewColor(c.R, c.G, c.B, c.A)
	return err == nil
}

// RGBA8 converts to 8-bit channels, truncating 255*c.
func (c Color) RGBA8() color.RGBA {
	return color.RGBA{
		R: uint8(255 * c.R),
		G: uint8(255 * c.G),
		B: uint8(255 * c.B),
		A: uint8(255 * c.A),
	}
}

// Element describes one kind of matter.
type Element struct {
	Name  string
	Color Color

	// Gravity scales downward acceleration; 0 means the element never falls.
	Gravity float64
	// Density decides displacement: a falling particle swaps with a fluid of
	// lower density below it.
	Density float64
	// Flow is how many cells a fluid may spread sideways per tick; 0 for solids.
	Flow int
}

// IsFluid reports whether the element spreads sideways.
func (e *Element) IsFluid() bool { return e.Flow > 0 }

// IsStatic reports whether the element never moves.
func (e *Element) IsStatic() bool { return e.Gravity == 0 }

// Registry maps kinds to elements. Base elements are fixed at construction;
// custom elements are appended with Register. Elements are never modified
// once registered.
type Registry struct {
	base   []Element
	custom []Element
	byName map[string]Kind
}

// NewRegistry creates a registry whose base catalog is base.
func NewRegistry(base []Element) *Registry {
	r := &Registry{
		base:   make([]Element, len(base)),
		byName: make(map[string]Kind, len(base)),
	}
	copy(r.base, base)
	for i, e := range r.base {
		r.byName[e.Name] = Base(uint16(i))
	}
	return r
}

// DefaultElements returns the built-in catalog: sand, water and stone.
func DefaultElements() []Element {
	return []Element{
		{Name: "sand", Color: MustRGBA(0.86, 0.75, 0.45, 1), Gravity: 1, Density: 1.6},
		{Name: "water", Color: MustRGBA(0.2, 0.45, 0.9, 0.85), Gravity: 1, Density: 1.0, Flow: 4},
		{Name: "stone", Color: MustRGBA(0.45, 0.45, 0.5, 1), Gravity: 0, Density: 2.6},
	}
}

// DefaultRegistry returns a registry over DefaultElements.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultElements())
}

// Get returns the element for k. Asking for an unregistered kind is a caller
// bug and panics; no default element is substituted.
func (r *Registry) Get(k Kind) *Element {
	e, ok := r.Lookup(k)
	if !ok {
		panic(fmt.Sprintf("elements: no element registered for kind %v", k))
	}
	return e
}

// Lookup returns the element for k, reporting false if none is registered.
func (r *Registry) Lookup(k Kind) (*Element, bool) {
	var list []Element
	switch k.Catalog {
	case CatalogBase:
		list = r.base
	case CatalogCustom:
		list = r.custom
	default:
		return nil, false
	}
	if int(k.Index) >= len(list) {
		return nil, false
	}
	return &list[k.Index], true
}

// Register appends e to the custom catalog and returns its kind.
func (r *Registry) Register(e Element) (Kind, error) {
	if e.Name == "" {
		return Kind{}, fmt.Errorf("registering element: empty name")
	}
	if _, exists := r.byName[e.Name]; exists {
		return Kind{}, fmt.Errorf("registering element %q: name already registered", e.Name)
	}
	if !e.Color.Valid() {
		return Kind{}, fmt.Errorf("registering element %q: color %v outside [0, 1]", e.Name, e.Color)
	}
	if len(r.custom) >= 1<<16 {
		return Kind{}, fmt.Errorf("registering element %q: custom catalog full", e.Name)
	}

	// Copy-on-append so pointers handed out by Get stay valid.
	custom := make([]Element, len(r.custom), len(r.custom)+1)
	copy(custom, r.custom)
	r.custom = append(custom, e)

	k := Custom(uint16(len(r.custom) - 1))
	r.byName[e.Name] = k
	return k, nil
}

// KindByName returns the kind registered under name.
func (r *Registry) KindByName(name string) (Kind, bool) {
	k, ok := r.byName[name]
	return k, ok
}

// Len returns the total number of registered elements.
func (r *Registry) Len() int {
	return len(r.base) + len(r.custom)
}

// All yields every registered element, base catalog first.
func (r *Registry) All() iter.Seq2[Kind, *Element] {
	return func(yield func(Kind, *Element) bool) {
		for i := range r.base {
			if !yield(Base(uint16(i)), &r.base[i]) {
				return
			}
		}
		for i := range r.custom {
			if !yield(Custom(uint16(i)), &r.custom[i]) {
				return
			}
		}
	}
}
