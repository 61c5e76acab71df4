// Package viewer is the desktop window behind pinwheel-view: a canvas that
// places one box per tick from a source, plus one more on every click.
package viewer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinwheel/pkg/scene"
	"github.com/matzehuels/pinwheel/pkg/source"
)

// DefaultInterval is the time between automatic placements.
const DefaultInterval = 500 * time.Millisecond

// Viewer owns the window and the placement loop.
type Viewer struct {
	player   *source.Player
	interval time.Duration
	logger   *log.Logger

	window   fyne.Window
	canvas   *SceneCanvas
	status   *widget.Label
	pauseBtn *widget.Button

	paused atomic.Bool
	// OnSave, when set, receives the scene when the window closes.
	OnSave func(scene.Scene) error
}

// New builds the window. Nothing is placed until Run.
func New(app fyne.App, player *source.Player, interval time.Duration, logger *log.Logger) *Viewer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	v := &Viewer{
		player:   player,
		interval: interval,
		logger:   logger,
		window:   app.NewWindow("pinwheel"),
		canvas:   NewSceneCanvas(),
		status:   widget.NewLabel("click to place a box"),
	}

	v.pauseBtn = widget.NewButton("Pause", v.togglePause)
	stepBtn := widget.NewButton("Step", func() { go v.step(context.Background()) })
	toolbar := container.NewHBox(v.pauseBtn, stepBtn, v.status)

	v.canvas.OnTapped = func() { go v.step(context.Background()) }
	v.window.SetContent(container.NewBorder(toolbar, nil, nil, nil, v.canvas))
	v.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeySpace:
			v.togglePause()
		case fyne.KeyN, fyne.KeyReturn:
			go v.step(context.Background())
		case fyne.KeyQ, fyne.KeyEscape:
			v.window.Close()
		}
	})
	v.window.Resize(fyne.NewSize(900, 700))
	return v
}

func (v *Viewer) togglePause() {
	paused := !v.paused.Load()
	v.paused.Store(paused)
	if paused {
		v.pauseBtn.SetText("Resume")
	} else {
		v.pauseBtn.SetText("Pause")
	}
}

// step places one box and refreshes the window.
func (v *Viewer) step(ctx context.Context) {
	st, err := v.player.Step(ctx)
	var msg string
	switch {
	case err != nil:
		v.logger.Error("placement failed", "error", err)
		msg = "error: " + err.Error()
		v.paused.Store(true)
	case st.Done:
		msg = "source exhausted"
	case st.Skipped != nil:
		msg = fmt.Sprintf("skipped %gx%g: no free side", st.Skipped.Width, st.Skipped.Height)
		v.logger.Warn("box unplaceable", "input", st.Skipped.Input)
	default:
		b := st.Block
		msg = fmt.Sprintf("#%d %gx%g placed %s", b.Index, b.Width, b.Height, b.Direction)
		v.logger.Debug("placed box", "index", b.Index, "x", b.X, "y", b.Y, "dir", b.Direction)
	}

	s := v.player.Scene()
	st2 := s.Stats()
	fyne.Do(func() {
		v.canvas.SetScene(s)
		v.status.SetText(fmt.Sprintf("%s  ·  %d placed, %d skipped, %gx%g", msg, st2.Blocks, st2.Skipped, st2.Width, st2.Height))
	})
}

// loop places one box per interval until ctx ends or the source runs out.
func (v *Viewer) loop(ctx context.Context) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if v.paused.Load() {
				continue
			}
			if v.player.Done() {
				return
			}
			v.step(ctx)
		}
	}
}

// Run shows the window and blocks until it is closed or ctx ends.
func (v *Viewer) Run(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go v.loop(loopCtx)

	closed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(v.window.Close)
		case <-closed:
		}
	}()

	v.window.ShowAndRun()
	close(closed)
	cancel()

	if v.OnSave != nil {
		return v.OnSave(v.player.Scene())
	}
	return nil
}
