package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 320, 180, 4)

	if cam.X != 160 || cam.Y != 90 {
		t.Errorf("expected camera at (160, 90), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if cam.Scale() != 4 {
		t.Errorf("Scale() = %f, want 4", cam.Scale())
	}
}

func TestYAxisFlipped(t *testing.T) {
	cam := New(1280, 720, 320, 180, 4)

	// World origin is the bottom-left corner of the screen.
	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 0) || !near(sy, 720) {
		t.Errorf("world origin at screen (%f, %f), want (0, 720)", sx, sy)
	}
	wx, wy := cam.ScreenToWorld(0, 0)
	if !near(wx, 0) || !near(wy, 180) {
		t.Errorf("screen origin at world (%f, %f), want (0, 180)", wx, wy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 640, 360, 4)
	cam.SetZoom(2)
	cam.Pan(300, -120)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}
	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)", tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampedToWorld(t *testing.T) {
	cam := New(800, 600, 400, 300, 4) // world 1600x1200 px at zoom 1

	cam.Pan(-10000, 10000)
	// Half the viewport in cells is (100, 75).
	if !near(cam.X, 100) || !near(cam.Y, 75) {
		t.Errorf("camera at (%f, %f), want clamped to (100, 75)", cam.X, cam.Y)
	}
	x, y, _, _ := cam.WorldRect()
	if !near(x, 0) {
		t.Errorf("grid left edge at %f, want 0", x)
	}
	if !near(y+cam.WorldH*cam.Scale(), 600) {
		t.Errorf("grid bottom edge at %f, want 600", y+cam.WorldH*cam.Scale())
	}
}

func TestSmallWorldCentered(t *testing.T) {
	cam := New(800, 600, 50, 40, 4) // 200x160 px, smaller than the screen

	cam.Pan(123, 456)
	if cam.X != 25 || cam.Y != 20 {
		t.Errorf("camera at (%f, %f), want centered (25, 20)", cam.X, cam.Y)
	}
	if cam.MinZoom != 1 {
		t.Errorf("MinZoom = %f, want 1", cam.MinZoom)
	}
}

func TestZoomClamped(t *testing.T) {
	cam := New(1280, 720, 640, 360, 4)

	cam.ZoomBy(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("zoom = %f, want max %f", cam.Zoom, cam.MaxZoom)
	}
	cam.ZoomBy(0.0001)
	if !near(cam.Zoom, 0.5) {
		t.Errorf("zoom = %f, want min 0.5 (whole grid on screen)", cam.Zoom)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(1280, 720, 640, 360, 4)
	cam.SetZoom(1)

	wx, wy := cam.ScreenToWorld(700, 400)
	cam.ZoomAt(2, 700, 400)
	sx, sy := cam.WorldToScreen(wx, wy)
	if !near(sx, 700) || !near(sy, 400) {
		t.Errorf("point moved to (%f, %f) after ZoomAt", sx, sy)
	}
}

func TestVisibleCells(t *testing.T) {
	cam := New(400, 300, 400, 300, 4)

	minX, minY, maxX, maxY := cam.VisibleCells()
	// 100x75 cells visible around (200, 150).
	if minX != 150 || maxX != 250 || minY != 112 || maxY != 187 {
		t.Errorf("VisibleCells() = %d,%d..%d,%d", minX, minY, maxX, maxY)
	}

	cam.ZoomBy(0.0001)
	minX, minY, maxX, maxY = cam.VisibleCells()
	if minX != 0 || minY != 0 || maxX != 399 || maxY != 299 {
		t.Errorf("zoomed out VisibleCells() = %d,%d..%d,%d", minX, minY, maxX, maxY)
	}
}

func TestResize(t *testing.T) {
	cam := New(1280, 720, 640, 360, 4)
	cam.Resize(2560, 1440)
	if cam.MinZoom != 1 {
		t.Errorf("MinZoom = %f, want 1", cam.MinZoom)
	}
	if cam.Zoom < cam.MinZoom {
		t.Errorf("zoom %f below min %f", cam.Zoom, cam.MinZoom)
	}
}
