package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/agv-port/internal/vis/draw"
	"github.com/elektrokombinacija/agv-port/internal/vis/state"
)

// Timeline shows overall progress and the event log of the run.
type Timeline struct {
	list widget.List
}

// NewTimeline creates a new timeline widget.
func NewTimeline() *Timeline {
	t := &Timeline{}
	t.list.Axis = layout.Vertical
	t.list.ScrollToEnd = true
	return t
}

// Layout renders the progress track above the newest log entries.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme, v state.View) layout.Dimensions {
	width := gtx.Dp(unit.Dp(320))
	gtx.Constraints.Min.X = width
	gtx.Constraints.Max.X = width

	rect := image.Rect(0, 0, width, gtx.Constraints.Max.Y)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.layoutProgress(gtx, v.Progress())
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return material.List(th, &t.list).Layout(gtx, len(v.Log), func(gtx layout.Context, i int) layout.Dimensions {
					e := v.Log[i]
					col := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
					prefix := "      "
					if e.Agent != 0 {
						col = draw.AGVColor(e.Agent)
						prefix = fmt.Sprintf("AGV %d ", e.Agent)
					}
					l := material.Label(th, 12, fmt.Sprintf("%7.2f  %s%s", e.Elapsed, prefix, e.Text))
					l.Color = col
					return l.Layout(gtx)
				})
			})
		}),
	)
}

func (t *Timeline) layoutProgress(gtx layout.Context, progress float64) layout.Dimensions {
	height := gtx.Dp(unit.Dp(24))
	margin := gtx.Dp(unit.Dp(10))
	trackY := height / 2
	trackHeight := 6
	trackWidth := gtx.Constraints.Max.X - 2*margin

	trackRect := image.Rect(margin, trackY-trackHeight/2, margin+trackWidth, trackY+trackHeight/2)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(trackRect).Op())

	fillWidth := int(float64(trackWidth) * progress)
	if fillWidth > 0 {
		fillRect := image.Rect(margin, trackY-trackHeight/2, margin+fillWidth, trackY+trackHeight/2)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255}, clip.Rect(fillRect).Op())
	}
	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
}
