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

	"github.com/elektrokombinacija/agv-port/internal/vis/interact"
	"github.com/elektrokombinacija/agv-port/internal/vis/state"
)

var (
	colorText    = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	colorMuted   = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	colorError   = color.NRGBA{R: 255, G: 110, B: 110, A: 255}
	colorSuccess = color.NRGBA{R: 120, G: 220, B: 140, A: 255}
)

// Toolbar shows run status and playback controls.
type Toolbar struct {
	playback  *state.Playback
	camera    *interact.Camera
	workspace *Workspace

	pauseBtn widget.Clickable
	fitBtn   widget.Clickable
}

// NewToolbar creates a new toolbar.
func NewToolbar(pb *state.Playback, camera *interact.Camera, ws *Workspace) *Toolbar {
	return &Toolbar{playback: pb, camera: camera, workspace: ws}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme, v state.View) layout.Dimensions {
	height := gtx.Dp(unit.Dp(44))

	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(rect).Op())

	t.handleClicks(gtx)

	gtx.Constraints.Max.Y = height
	layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				label := "||"
				if t.playback.Paused() {
					label = ">"
				}
				return t.button(gtx, th, &t.pauseBtn, label)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.button(gtx, th, &t.fitBtn, "Fit")
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.text(gtx, th, fmt.Sprintf("t = %.1f", v.Elapsed), colorText)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.text(gtx, th, fmt.Sprintf("loads %d/%d", v.Loads, v.TotalLoads), colorText)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.text(gtx, th, v.Consistency, colorMuted)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				c, ok := t.workspace.Hovered()
				if !ok {
					return layout.Dimensions{}
				}
				return t.text(gtx, th, c.String(), colorMuted)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{}
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				switch {
				case v.Err != nil:
					return t.text(gtx, th, v.Err.Error(), colorError)
				case v.Done:
					return t.text(gtx, th, "done", colorSuccess)
				case t.playback.Paused():
					return t.text(gtx, th, "paused", colorMuted)
				}
				return t.text(gtx, th, shortID(v.RunID), colorMuted)
			}),
		)
	})
	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (t *Toolbar) text(gtx layout.Context, th *material.Theme, s string, col color.NRGBA) layout.Dimensions {
	l := material.Label(th, 13, s)
	l.Color = col
	return l.Layout(gtx)
}

func (t *Toolbar) layoutSeparator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		rect := image.Rect(0, 0, 1, 24)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(rect).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) button(gtx layout.Context, th *material.Theme, btn *widget.Clickable, text string) layout.Dimensions {
	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	if btn.Hovered() {
		bg = color.NRGBA{R: 70, G: 73, B: 80, A: 255}
	}

	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min = image.Point{X: 36, Y: 28}
				rect := image.Rect(0, 0, gtx.Constraints.Min.X, gtx.Constraints.Min.Y)
				paint.FillShape(gtx.Ops, bg, clip.Rect(rect).Op())
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					label := material.Label(th, 12, text)
					label.Color = colorText
					return label.Layout(gtx)
				})
			},
		)
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	for t.pauseBtn.Clicked(gtx) {
		t.playback.TogglePlay()
	}
	for t.fitBtn.Clicked(gtx) {
		t.camera.Reset()
	}
}
