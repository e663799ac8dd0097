package main

import (
	"image/color"

	"github.com/milk9111/musicbox/common"
	"github.com/milk9111/musicbox/ecs"
	"github.com/milk9111/musicbox/ecs/system"
	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// jukebox holds the widgets refreshed every frame.
type jukebox struct {
	status *widget.Text
}

func (j *jukebox) refresh(status string) {
	if j == nil || j.status == nil {
		return
	}
	j.status.Label = status
}

// NewJukeboxUI builds a panel on the right edge with a play and a queue
// button per cue, plus a stop button. Buttons only post music requests;
// the music system applies them on the next world update.
func NewJukeboxUI(w *ecs.World, cues []string) (*ebitenui.UI, *jukebox) {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	playImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x2e, G: 0x5e, B: 0x3a, A: 255})
	queueImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	stopImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x6e, G: 0x24, B: 0x24, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}

	title := widget.NewText(
		widget.TextOpts.Text("Jukebox", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
	status := widget.NewText(
		widget.TextOpts.Text("", &face, color.NRGBA{R: 0xb0, G: 0xd0, B: 0xff, A: 0xff}),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 20, Right: 20}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/3, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionEnd, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(status)

	for _, name := range cues {
		cue := name
		row := widget.NewContainer(
			widget.ContainerOpts.Layout(widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(6),
			)),
		)
		row.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: playImg, Pressed: playImg}),
			widget.ButtonOpts.Text("Play "+cue, &face, btnTextColor),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				system.RequestMusic(w, cue)
			}),
		))
		row.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: queueImg, Pressed: queueImg}),
			widget.ButtonOpts.Text("Queue", &face, btnTextColor),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				system.QueueMusic(w, cue)
			}),
		))
		panel.AddChild(row)
	}

	stopBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: stopImg, Pressed: stopImg}),
		widget.ButtonOpts.Text("Stop", &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			system.StopMusic(w)
		}),
	)
	panel.AddChild(stopBtn)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}, &jukebox{status: status}
}
