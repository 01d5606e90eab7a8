package interact

import (
	"testing"

	"gioui.org/f32"
	"gioui.org/io/pointer"
)

func TestCameraRoundTrip(t *testing.T) {
	c := &Camera{OffsetX: 10, OffsetY: -5, Zoom: 2}
	sx, sy := c.WorldToScreen(25, 40)
	if sx != 60 || sy != 75 {
		t.Fatalf("WorldToScreen = (%v, %v), want (60, 75)", sx, sy)
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	if wx != 25 || wy != 40 {
		t.Fatalf("ScreenToWorld = (%v, %v), want (25, 40)", wx, wy)
	}
}

func TestCameraZoomKeepsPointFixed(t *testing.T) {
	c := NewCamera()
	before, _ := c.ScreenToWorld(200, 100)
	c.ZoomBy(2, 200, 100)
	after, _ := c.ScreenToWorld(200, 100)
	if before != after {
		t.Errorf("world point moved from %v to %v", before, after)
	}
	c.ZoomBy(1000, 0, 0)
	if c.Zoom != maxZoom {
		t.Errorf("Zoom = %v, want clamp at %v", c.Zoom, float32(maxZoom))
	}
}

func TestCameraFitOnce(t *testing.T) {
	c := NewCamera()
	c.FitOnce(500, 250, 1000, 1000, 0)
	if c.Zoom != 2 {
		t.Fatalf("Zoom = %v, want 2", c.Zoom)
	}
	if c.OffsetX != 0 || c.OffsetY != 250 {
		t.Errorf("Offset = (%v, %v), want (0, 250)", c.OffsetX, c.OffsetY)
	}

	c.FitOnce(100, 100, 1000, 1000, 0)
	if c.Zoom != 2 {
		t.Errorf("second FitOnce changed zoom to %v", c.Zoom)
	}
	c.Reset()
	c.FitOnce(100, 100, 1000, 1000, 0)
	if c.Zoom != maxZoom {
		t.Errorf("Zoom after Reset = %v, want %v", c.Zoom, float32(maxZoom))
	}
}

func TestCameraDrag(t *testing.T) {
	c := NewCamera()
	c.HandleEvent(pointer.Event{Kind: pointer.Press, Position: f32.Pt(10, 10)})
	c.HandleEvent(pointer.Event{Kind: pointer.Drag, Position: f32.Pt(30, 5)})
	c.HandleEvent(pointer.Event{Kind: pointer.Release, Position: f32.Pt(30, 5)})
	c.HandleEvent(pointer.Event{Kind: pointer.Drag, Position: f32.Pt(100, 100)})
	if c.OffsetX != 20 || c.OffsetY != -5 {
		t.Errorf("Offset = (%v, %v), want (20, -5)", c.OffsetX, c.OffsetY)
	}
}
