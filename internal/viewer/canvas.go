package viewer

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/matzehuels/pinwheel/pkg/render/sink"
	"github.com/matzehuels/pinwheel/pkg/scene"
)

var (
	backgroundColor = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	outlineColor    = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	lastColor       = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
)

// minLabelSize is the smallest on-screen box that gets a label.
const minLabelSize = 28

// SceneCanvas draws a scene scaled to fit the widget. Tapping it calls
// OnTapped.
type SceneCanvas struct {
	widget.BaseWidget

	OnTapped func()

	mu     sync.Mutex
	scene  scene.Scene
	margin float32
}

// NewSceneCanvas returns an empty canvas.
func NewSceneCanvas() *SceneCanvas {
	c := &SceneCanvas{margin: 16}
	c.ExtendBaseWidget(c)
	return c
}

// SetScene replaces the drawn scene. It must be called on the UI goroutine.
func (c *SceneCanvas) SetScene(s scene.Scene) {
	c.mu.Lock()
	c.scene = s.Normalized()
	c.mu.Unlock()
	c.Refresh()
}

// Scene returns the drawn scene, normalized to the origin.
func (c *SceneCanvas) Scene() scene.Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene
}

func (c *SceneCanvas) Tapped(*fyne.PointEvent) {
	if c.OnTapped != nil {
		c.OnTapped()
	}
}

func (c *SceneCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &sceneRenderer{c: c}
	r.rebuild(c.Size())
	return r
}

type sceneRenderer struct {
	c       *SceneCanvas
	objects []fyne.CanvasObject
}

// fit returns the scale and offset that centre a w x h scene inside size
// with margin on every side.
func fit(w, h float64, size fyne.Size, margin float32) (scale float32, off fyne.Position) {
	availW := size.Width - 2*margin
	availH := size.Height - 2*margin
	if w <= 0 || h <= 0 || availW <= 0 || availH <= 0 {
		return 0, fyne.NewPos(margin, margin)
	}
	scale = min(availW/float32(w), availH/float32(h))
	off = fyne.NewPos(
		margin+(availW-float32(w)*scale)/2,
		margin+(availH-float32(h)*scale)/2,
	)
	return scale, off
}

func (r *sceneRenderer) rebuild(size fyne.Size) {
	s := r.c.Scene()

	bg := canvas.NewRectangle(backgroundColor)
	bg.Resize(size)
	r.objects = []fyne.CanvasObject{bg}

	scale, off := fit(s.Width(), s.Height(), size, r.c.margin)
	if scale == 0 {
		return
	}
	last := len(s.Blocks) - 1
	for i, b := range s.Blocks {
		pos := fyne.NewPos(off.X+float32(b.X)*scale, off.Y+float32(b.Y)*scale)
		dim := fyne.NewSize(float32(b.Width)*scale, float32(b.Height)*scale)

		rect := canvas.NewRectangle(sink.DefaultPalette(b.Index))
		rect.StrokeColor = outlineColor
		rect.StrokeWidth = 1
		if i == last {
			rect.StrokeColor = lastColor
			rect.StrokeWidth = 3
		}
		rect.Resize(dim)
		rect.Move(pos)
		r.objects = append(r.objects, rect)

		if dim.Width >= minLabelSize && dim.Height >= minLabelSize/2 {
			text := canvas.NewText(b.DisplayLabel(), outlineColor)
			text.TextSize = min(12, dim.Height/2)
			text.Alignment = fyne.TextAlignCenter
			text.Resize(fyne.NewSize(dim.Width, text.MinSize().Height))
			text.Move(fyne.NewPos(pos.X, pos.Y+(dim.Height-text.MinSize().Height)/2))
			r.objects = append(r.objects, text)
		}
	}
}

func (r *sceneRenderer) Layout(size fyne.Size)        { r.rebuild(size) }
func (r *sceneRenderer) Refresh()                     { r.rebuild(r.c.Size()); canvas.Refresh(r.c) }
func (r *sceneRenderer) Destroy()                     {}
func (r *sceneRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *sceneRenderer) MinSize() fyne.Size           { return fyne.NewSize(320, 240) }
