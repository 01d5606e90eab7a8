// Package interact handles pan and zoom of the port view.
package interact

import (
	"gioui.org/io/pointer"
)

const (
	minZoom    = 0.1
	maxZoom    = 10
	zoomFactor = 1.1
)

// Camera maps world coordinates (pixels at zoom 1) to the screen.
type Camera struct {
	OffsetX float32 // Pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // 1.0 = 100%

	dragging bool
	lastX    float32
	lastY    float32
	fitted   bool
}

// NewCamera creates a camera that fits the port on first layout.
func NewCamera() *Camera {
	return &Camera{Zoom: 1.0}
}

// Reset makes the next layout refit the view.
func (c *Camera) Reset() {
	c.fitted = false
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = float32(worldY)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((screenY - c.OffsetY) / c.Zoom)
	return
}

// HandleEvent pans on drag and zooms on scroll around the pointer.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		c.dragging = true
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.OffsetX += ev.Position.X - c.lastX
			c.OffsetY += ev.Position.Y - c.lastY
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Release, pointer.Cancel:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/zoomFactor, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(zoomFactor, ev.Position.X, ev.Position.Y)
		}
	}
}

// ZoomBy zooms by a factor, keeping the world point under (centerX, centerY) fixed.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)
	newX, newY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newX
	c.OffsetY += centerY - newY
}

// FitOnce fits the world bounds into the screen unless already fitted
// since the last Reset.
func (c *Camera) FitOnce(worldW, worldH float64, screenW, screenH, margin float32) {
	if c.fitted || worldW <= 0 || worldH <= 0 || screenW <= 2*margin || screenH <= 2*margin {
		return
	}
	zoomX := (screenW - 2*margin) / float32(worldW)
	zoomY := (screenH - 2*margin) / float32(worldH)
	c.Zoom = clampZoom(min(zoomX, zoomY))
	c.OffsetX = screenW/2 - float32(worldW/2)*c.Zoom
	c.OffsetY = screenH/2 - float32(worldH/2)*c.Zoom
	c.fitted = true
}

func clampZoom(z float32) float32 {
	return max(minZoom, min(maxZoom, z))
}
