package draw

import (
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/agv-port/internal/vis/interact"
	"github.com/elektrokombinacija/agv-port/internal/vis/state"
)

// ColorConflict marks refused steps.
var ColorConflict = color.NRGBA{R: 255, G: 80, B: 80, A: 220}

// DrawConflicts draws each recent conflict as a ring on the blocked cell and
// a bar along the refused step, fading out over state.ConflictTTL.
func DrawConflicts(gtx layout.Context, marks []state.ConflictMark, now float64, camera *interact.Camera) {
	for _, m := range marks {
		fade := 1 - (now-m.Elapsed)/state.ConflictTTL
		if fade <= 0 {
			continue
		}
		if fade > 1 {
			fade = 1
		}
		col := ColorConflict
		col.A = uint8(float64(col.A) * fade)

		fx, fy := CellCenter(m.From)
		tx, ty := CellCenter(m.To)
		x1, y1 := camera.WorldToScreen(fx, fy)
		x2, y2 := camera.WorldToScreen(tx, ty)

		drawLine(gtx, x1, y1, x2, y2, 4*camera.Zoom, col)
		DrawCircleOutline(gtx, x2, y2, float32(CellSize*0.4)*camera.Zoom, col, 3*camera.Zoom)
		drawConflictX(gtx, x2, y2, float32(CellSize*0.2)*camera.Zoom, col)
	}
}

func drawConflictX(gtx layout.Context, cx, cy, size float32, col color.NRGBA) {
	drawLine(gtx, cx-size, cy-size, cx+size, cy+size, 2, col)
	drawLine(gtx, cx-size, cy+size, cx+size, cy-size, 2, col)
}
