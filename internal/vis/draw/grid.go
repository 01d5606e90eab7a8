// Package draw renders the port, its AGVs and their paths with Gio ops.
package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/vis/interact"
)

// CellSize is the side of one grid cell in world units.
const CellSize = 50.0

// Grid colors
var (
	ColorCellFree    = color.NRGBA{R: 45, G: 50, B: 56, A: 255}
	ColorCellBlocked = color.NRGBA{R: 90, G: 80, B: 70, A: 255}
	ColorCellHover   = color.NRGBA{R: 255, G: 255, B: 255, A: 30}
)

// WorldSize returns the extent of a grid in world units.
func WorldSize(g core.Grid) (w, h float64) {
	return float64(g.Cols) * CellSize, float64(g.Rows) * CellSize
}

// CellCenter returns the world position of a cell's center.
func CellCenter(c core.Cell) (x, y float64) {
	return (float64(c.Col) + 0.5) * CellSize, (float64(c.Row) + 0.5) * CellSize
}

// CellAt returns the cell under a screen point.
func CellAt(camera *interact.Camera, screenX, screenY float32) core.Cell {
	wx, wy := camera.ScreenToWorld(screenX, screenY)
	return core.C(int(math.Floor(wy/CellSize)), int(math.Floor(wx/CellSize)))
}

// DrawTerrain draws every cell, free or blocked.
func DrawTerrain(gtx layout.Context, g core.Grid, camera *interact.Camera) {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			cell := core.C(r, c)
			col := ColorCellFree
			if g.IsBlocked(cell) {
				col = ColorCellBlocked
			}
			DrawCell(gtx, cell, camera, col, 1)
		}
	}
}

// DrawCell fills a cell, shrunk by inset world units on each side.
func DrawCell(gtx layout.Context, c core.Cell, camera *interact.Camera, col color.NRGBA, inset float64) {
	x0, y0 := camera.WorldToScreen(float64(c.Col)*CellSize+inset, float64(c.Row)*CellSize+inset)
	x1, y1 := camera.WorldToScreen(float64(c.Col+1)*CellSize-inset, float64(c.Row+1)*CellSize-inset)
	drawRect(gtx, x0, y0, x1, y1, col)
}

func drawRect(gtx layout.Context, x0, y0, x1, y1 float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x0, y0))
	path.LineTo(f32.Pt(x1, y0))
	path.LineTo(f32.Pt(x1, y1))
	path.LineTo(f32.Pt(x0, y1))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx+radius, cy))

	segments := 16
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		path.LineTo(f32.Pt(cx+radius*float32(math.Cos(angle)), cy+radius*float32(math.Sin(angle))))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawCircleOutline draws a ring of the given stroke width.
func DrawCircleOutline(gtx layout.Context, cx, cy, radius float32, col color.NRGBA, width float32) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx+radius, cy))

	segments := 24
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		path.LineTo(f32.Pt(cx+radius*float32(math.Cos(angle)), cy+radius*float32(math.Sin(angle))))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: path.End(), Width: width}.Op())
}
