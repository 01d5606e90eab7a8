// Package widgets provides Gio UI widgets for the port viewer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/vis/draw"
	"github.com/elektrokombinacija/agv-port/internal/vis/interact"
	"github.com/elektrokombinacija/agv-port/internal/vis/state"
)

// Workspace is the main port view.
type Workspace struct {
	camera  *interact.Camera
	hovered core.Cell
	hover   bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(camera *interact.Camera) *Workspace {
	return &Workspace{camera: camera}
}

// Hovered returns the cell under the pointer, if any.
func (w *Workspace) Hovered() (core.Cell, bool) {
	return w.hovered, w.hover
}

// Layout renders the port.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme, v state.View) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	worldW, worldH := draw.WorldSize(v.Terrain)
	w.camera.FitOnce(worldW, worldH, float32(bounds.X), float32(bounds.Y), 40)

	w.handlePointerEvents(gtx, v.Terrain)

	draw.DrawTerrain(gtx, v.Terrain, w.camera)
	if w.hover {
		draw.DrawCell(gtx, w.hovered, w.camera, draw.ColorCellHover, 1)
	}
	draw.DrawAGVs(gtx, th, v.AGVs, w.camera)
	draw.DrawConflicts(gtx, v.Conflicts, v.Elapsed, w.camera)

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context, terrain core.Grid) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll | pointer.Move | pointer.Leave,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)

		switch pe.Kind {
		case pointer.Move, pointer.Drag:
			c := draw.CellAt(w.camera, pe.Position.X, pe.Position.Y)
			w.hovered, w.hover = c, terrain.InBounds(c)
		case pointer.Leave:
			w.hover = false
		}
	}
}
