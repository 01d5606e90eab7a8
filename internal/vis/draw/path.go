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

// RemainingPath returns the part of p still ahead of an agent standing on
// at, or all of p when at is not on it.
func RemainingPath(p core.Path, at core.Cell) core.Path {
	if i := p.IndexOf(at); i >= 0 {
		return p[i:]
	}
	return p
}

// DrawPath draws a path through cell centers with direction arrows.
func DrawPath(gtx layout.Context, p core.Path, camera *interact.Camera, col color.NRGBA, width float32) {
	if len(p) < 2 {
		return
	}

	w := width * camera.Zoom
	for i := 0; i < len(p)-1; i++ {
		ax, ay := CellCenter(p[i])
		bx, by := CellCenter(p[i+1])
		x1, y1 := camera.WorldToScreen(ax, ay)
		x2, y2 := camera.WorldToScreen(bx, by)
		drawLine(gtx, x1, y1, x2, y2, w, col)

		d := p[i+1].Sub(p[i])
		length := math.Hypot(float64(d.Col), float64(d.Row))
		drawArrow(gtx, (ax+bx)/2, (ay+by)/2, float64(d.Col)/length, float64(d.Row)/length, camera, col)
	}
}

// DrawTarget marks the cell an agent is heading to.
func DrawTarget(gtx layout.Context, c core.Cell, camera *interact.Camera, col color.NRGBA) {
	x, y := CellCenter(c)
	sx, sy := camera.WorldToScreen(x, y)
	DrawCircleOutline(gtx, sx, sy, float32(CellSize*0.3)*camera.Zoom, col, 2*camera.Zoom)
}

func drawArrow(gtx layout.Context, x, y, dirX, dirY float64, camera *interact.Camera, col color.NRGBA) {
	screenX, screenY := camera.WorldToScreen(x, y)
	size := float32(6) * camera.Zoom

	tipX := screenX + float32(dirX)*size
	tipY := screenY + float32(dirY)*size

	perpX := -float32(dirY) * size * 0.5
	perpY := float32(dirX) * size * 0.5

	baseX := screenX - float32(dirX)*size*0.3
	baseY := screenY - float32(dirY)*size*0.3

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(tipX, tipY))
	path.LineTo(f32.Pt(baseX+perpX, baseY+perpY))
	path.LineTo(f32.Pt(baseX-perpX, baseY-perpY))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
