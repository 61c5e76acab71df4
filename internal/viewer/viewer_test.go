package viewer

import (
	"context"
	"io"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pio "github.com/matzehuels/pinwheel/pkg/io"
	"github.com/matzehuels/pinwheel/pkg/source"
	"github.com/matzehuels/pinwheel/pkg/spiral"
)

func TestFit(t *testing.T) {
	scale, off := fit(200, 100, fyne.NewSize(420, 420), 10)
	assert.Equal(t, float32(2), scale)
	assert.Equal(t, fyne.NewPos(10, 110), off)

	scale, _ = fit(0, 0, fyne.NewSize(100, 100), 10)
	assert.Zero(t, scale, "empty scene has no scale")
}

func TestSceneCanvasDrawsBlocks(t *testing.T) {
	test.NewTempApp(t)

	p := source.PlayItems([]pio.Item{
		{Label: "hub", Width: 100, Height: 100},
		{Label: "a", Width: 50, Height: 50},
	}, spiral.DefaultOptions(), spiral.Right)
	for range 2 {
		_, err := p.Step(context.Background())
		require.NoError(t, err)
	}

	c := NewSceneCanvas()
	c.Resize(fyne.NewSize(400, 300))
	c.SetScene(p.Scene())

	var rects, texts int
	for _, o := range test.WidgetRenderer(c).Objects() {
		switch o.(type) {
		case *canvas.Rectangle:
			rects++
		case *canvas.Text:
			texts++
		}
	}
	assert.Equal(t, 3, rects, "background plus one rectangle per block")
	assert.Equal(t, 2, texts, "both blocks are large enough for a label")
}

func TestViewerClickPlaces(t *testing.T) {
	app := test.NewTempApp(t)
	p := source.PlayItems([]pio.Item{{Width: 10, Height: 10}}, spiral.DefaultOptions(), spiral.Right)
	v := New(app, p, 0, log.New(io.Discard))

	v.step(context.Background())
	assert.Len(t, v.canvas.Scene().Blocks, 1)

	v.step(context.Background())
	assert.True(t, p.Done())
	assert.Contains(t, v.status.Text, "source exhausted")

	v.togglePause()
	assert.True(t, v.paused.Load())
	assert.Equal(t, "Resume", v.pauseBtn.Text)
}
