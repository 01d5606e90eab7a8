package draw

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/vis/interact"
	"github.com/elektrokombinacija/agv-port/internal/vis/state"
)

var palette = []color.NRGBA{
	{R: 100, G: 200, B: 255, A: 255},
	{R: 255, G: 150, B: 100, A: 255},
	{R: 200, G: 100, B: 255, A: 255},
	{R: 120, G: 230, B: 120, A: 255},
	{R: 255, G: 220, B: 90, A: 255},
	{R: 255, G: 110, B: 170, A: 255},
	{R: 90, G: 220, B: 210, A: 255},
	{R: 180, G: 180, B: 255, A: 255},
}

// ColorLoading tints an AGV while it shifts a container.
var ColorLoading = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// AGVColor returns the stable color of an agent.
func AGVColor(id core.AgentID) color.NRGBA {
	return palette[(int(id)-1+len(palette))%len(palette)]
}

// DrawAGV draws an agent on its cell, plus a ghost on the cell it is entering.
func DrawAGV(gtx layout.Context, th *material.Theme, a state.AGV, camera *interact.Camera) {
	col := AGVColor(a.ID)

	if a.Moving {
		ghost := col
		ghost.A = 90
		DrawCell(gtx, a.Next, camera, ghost, CellSize*0.2)
	}

	body := col
	if a.Finished {
		body.A = 120
	}
	DrawCell(gtx, a.Cell, camera, body, CellSize*0.15)
	if a.Loading {
		DrawCell(gtx, a.Cell, camera, ColorLoading, CellSize*0.38)
	}

	x, y := CellCenter(a.Cell)
	sx, sy := camera.WorldToScreen(x-CellSize*0.15, y-CellSize*0.25)
	drawLabel(gtx, th, sx, sy, fmt.Sprintf("%d", a.ID), color.NRGBA{R: 20, G: 20, B: 25, A: 255}, 14*camera.Zoom)
}

// DrawAGVs draws every agent, paths first so bodies stay on top.
func DrawAGVs(gtx layout.Context, th *material.Theme, agvs []state.AGV, camera *interact.Camera) {
	for _, a := range agvs {
		if a.Finished || len(a.Path) == 0 {
			continue
		}
		col := AGVColor(a.ID)
		col.A = 110
		DrawPath(gtx, RemainingPath(a.Path, a.Cell), camera, col, 3)
		DrawTarget(gtx, a.Target, camera, col)
	}
	for _, a := range agvs {
		DrawAGV(gtx, th, a, camera)
	}
}

func drawLabel(gtx layout.Context, th *material.Theme, x, y float32, txt string, col color.NRGBA, size float32) {
	if size < 6 {
		return
	}
	defer op.Offset(image.Pt(int(x), int(y))).Push(gtx.Ops).Pop()
	gtx.Constraints.Min = image.Point{}
	l := material.Label(th, unit.Sp(size), txt)
	l.Color = col
	l.Layout(gtx)
}
